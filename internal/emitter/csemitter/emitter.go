// Package csemitter renders a spec.Model as C# source: data-structure
// declarations for the component schemas followed by static client classes
// holding one method stub per endpoint.
package csemitter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MinikPLayer/OpenApiCsGenerator/internal/naming"
	"github.com/MinikPLayer/OpenApiCsGenerator/internal/pathtree"
	"github.com/MinikPLayer/OpenApiCsGenerator/internal/schema"
	genspec "github.com/MinikPLayer/OpenApiCsGenerator/internal/spec"
)

// Defaults for Options fields left empty.
const (
	DefaultClientPrefix = "Api"
	DefaultClientHelper = "Api"
	DefaultRootSegment  = "api"
)

// Options controls how the C# emitter renders and where it writes.
type Options struct {
	TypesNamespace string // namespace wrapping the data structures; empty emits none
	ClientPrefix   string // client class name prefix, joined to the segment with '_'
	ClientHelper   string // static class the generated calls go through
	RootSegment    string // top segment whose children become client classes
	OutFile        string // optional; when empty nothing is written
	Force          bool   // overwrite an existing OutFile
	DryRun         bool   // don't write, only plan
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.ClientPrefix) == "" {
		o.ClientPrefix = DefaultClientPrefix
	}
	if strings.TrimSpace(o.ClientHelper) == "" {
		o.ClientHelper = DefaultClientHelper
	}
	if strings.TrimSpace(o.RootSegment) == "" {
		o.RootSegment = DefaultRootSegment
	}
	return o
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	Path string
	Size int
	Mode os.FileMode
}

// Result holds the generated code and, when OutFile is set, the planned write.
type Result struct {
	Code    string
	Planned []PlannedFile
}

// Emit renders both passes and concatenates them. With OutFile set the code
// is also written there atomically, unless DryRun is set.
func Emit(ctx context.Context, m *genspec.Model, opts Options) (*Result, error) {
	if m == nil || m.Paths == nil {
		return nil, fmt.Errorf("csemitter: nil model")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	var parts []string
	if m.Types != nil && m.Types.Len() > 0 {
		types, err := EmitTypes(m.Types, opts)
		if err != nil {
			return nil, err
		}
		parts = append(parts, types)
	}
	clients, err := EmitClients(m.Paths, opts)
	if err != nil {
		return nil, err
	}
	if clients != "" {
		parts = append(parts, clients)
	}
	res := &Result{Code: strings.Join(parts, "\n")}

	if strings.TrimSpace(opts.OutFile) == "" {
		return res, nil
	}
	abs, err := filepath.Abs(opts.OutFile)
	if err != nil {
		return nil, fmt.Errorf("csemitter: resolve output file: %w", err)
	}
	if err := validateOutputFile(abs, opts.Force); err != nil {
		return nil, err
	}
	res.Planned = []PlannedFile{{Path: abs, Size: len(res.Code), Mode: 0o644}}
	if opts.DryRun {
		return res, nil
	}
	if err := writeFileAtomic(abs, []byte(res.Code), 0o644); err != nil {
		return nil, fmt.Errorf("csemitter: write file %s: %w", abs, err)
	}
	return res, nil
}

// EmitTypes renders the data-structure pass: every enum component, then every
// object component, in document order.
func EmitTypes(t *schema.Table, opts Options) (string, error) {
	data := typesData{Namespace: strings.TrimSpace(opts.TypesNamespace)}
	if data.Namespace != "" {
		data.Depth = 1
	}
	for name, lits := range t.Enums() {
		e := enumData{Name: name}
		for _, l := range lits {
			m := enumMember{
				Name:    naming.Identifier(name + l.Text),
				Value:   l.Text,
				Numeric: l.Numeric && isInteger(l.Text),
			}
			if !m.Numeric {
				m.Value = strconv.Quote(l.Text)
			}
			e.Members = append(e.Members, m)
		}
		data.Enums = append(data.Enums, e)
	}
	for name, fields := range t.Structs() {
		s := structData{Name: name}
		for _, f := range fields {
			s.Fields = append(s.Fields, fieldData{Name: naming.FirstLetterToUpper(f.Name), Type: f.Type})
		}
		data.Structs = append(data.Structs, s)
	}
	if len(data.Enums) == 0 && len(data.Structs) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	if err := typesTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("csemitter: render types: %w", err)
	}
	return buf.String(), nil
}

// EmitClients renders the client-stub pass. The subtree under RootSegment is
// used when present, the whole tree otherwise. Every direct child becomes a
// class holding the endpoints of its subtree in walk order.
func EmitClients(root *pathtree.Node, opts Options) (string, error) {
	opts = opts.withDefaults()
	base := ClientRoot(root, opts.RootSegment)
	var data clientsData
	for _, child := range base.Children {
		c := containerData{Name: opts.ClientPrefix + "_" + child.Name}
		for _, ep := range child.Endpoints() {
			c.Methods = append(c.Methods, Method(ep, opts))
		}
		data.Containers = append(data.Containers, c)
	}
	if len(data.Containers) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	if err := clientsTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("csemitter: render clients: %w", err)
	}
	return buf.String(), nil
}

// ClientRoot returns the node client classes are generated from.
func ClientRoot(root *pathtree.Node, segment string) *pathtree.Node {
	if segment != "" {
		if n := root.LookupPath(segment); n != nil {
			return n
		}
	}
	return root
}

// Method renders the one-line method stub for an endpoint node.
func Method(n *pathtree.Node, opts Options) string {
	opts = opts.withDefaults()
	body, hasBody := n.Body()

	var args, call []string
	for _, p := range n.Parameters {
		if p.IsBody() {
			continue
		}
		args = append(args, p.Type+" "+p.Name)
		call = append(call, fmt.Sprintf("%q.ToApiParam(%s)", p.Name, p.Name))
	}

	generics := n.ReturnType
	head := []string{strconv.Quote(n.Path)}
	if hasBody {
		args = append(args, body.Type+" "+body.Name)
		generics += ", " + body.Type
		head = append(head, body.Name)
	}

	return fmt.Sprintf("public static async Task<ApiResult<%s>> %s(%s) => await %s.%s<%s>(%s);",
		n.ReturnType,
		naming.SnakeToPascal(n.Name),
		strings.Join(args, ", "),
		opts.ClientHelper,
		n.Type,
		generics,
		strings.Join(append(head, call...), ", "),
	)
}

// Label names a node in a tree listing: endpoints by their method stub,
// grouping nodes by their segment.
func Label(opts Options) func(*pathtree.Node) string {
	return func(n *pathtree.Node) string {
		if !n.IsEndpoint {
			return n.Name
		}
		return Method(n, opts)
	}
}

func isInteger(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func validateOutputFile(abs string, force bool) error {
	stat, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access output file %q: %w", abs, err)
	}
	if stat.IsDir() {
		return fmt.Errorf("output path %q is a directory", abs)
	}
	if !force {
		return fmt.Errorf("output file %q already exists (use --force to overwrite)", abs)
	}
	return nil
}

// writeFileAtomic writes content to a temp file next to path and renames it
// into place.
func writeFileAtomic(path string, content []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure target directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-csemitter-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if tmp != nil {
			tmp.Close()
		}
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return fmt.Errorf("set file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	tmp = nil
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("atomic rename %s to %s: %w", tmpPath, path, err)
	}
	success = true
	return nil
}
