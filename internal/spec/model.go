package spec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/MinikPLayer/OpenApiCsGenerator/internal/jsonnode"
	"github.com/MinikPLayer/OpenApiCsGenerator/internal/pathtree"
	"github.com/MinikPLayer/OpenApiCsGenerator/internal/schema"
)

// Model is what the emitters consume: the component schemas and the path
// tree built from a document.
type Model struct {
	Types *schema.Table
	Paths *pathtree.Node
}

// BuildOption configures how the Model is built from a document.
type BuildOption func(*buildConfig)

type buildConfig struct {
	namespace   string
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[string]struct{}
	pathRes     []*regexp.Regexp
	logger      *slog.Logger
}

// WithNamespace sets the namespace component references are qualified with.
// An empty namespace leaves references unqualified.
func WithNamespace(ns string) BuildOption {
	return func(c *buildConfig) { c.namespace = strings.TrimSpace(ns) }
}

// WithIncludeTags keeps only operations that have at least one of the given tags.
func WithIncludeTags(tags []string) BuildOption {
	return func(c *buildConfig) {
		c.includeTags = addTags(c.includeTags, tags)
	}
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) BuildOption {
	return func(c *buildConfig) {
		c.excludeTags = addTags(c.excludeTags, tags)
	}
}

func addTags(set map[string]struct{}, tags []string) map[string]struct{} {
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(tags))
		}
		set[t] = struct{}{}
	}
	return set
}

// WithMethods keeps only operations declared under one of the given verbs
// (get, post, delete). Matching is case-insensitive.
func WithMethods(methods []string) BuildOption {
	return func(c *buildConfig) {
		for _, m := range methods {
			m = strings.ToLower(strings.TrimSpace(m))
			if m == "" {
				continue
			}
			if c.methods == nil {
				c.methods = make(map[string]struct{}, len(methods))
			}
			c.methods[m] = struct{}{}
		}
	}
}

// WithPathPatterns keeps only operations whose path matches at least one of
// the provided regular expressions. Invalid patterns never match.
func WithPathPatterns(patterns []string) BuildOption {
	return func(c *buildConfig) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				re = regexp.MustCompile("a^$")
			}
			c.pathRes = append(c.pathRes, re)
		}
	}
}

// WithLogger sets the logger build progress is reported to.
func WithLogger(l *slog.Logger) BuildOption {
	return func(c *buildConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ValidatePathPatterns reports the first pattern that does not compile.
func ValidatePathPatterns(patterns []string) error {
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid path pattern %q: %w", p, err)
		}
	}
	return nil
}

// BuildModel turns a parsed document into a Model. Component schemas are read
// from components.schemas, or from definitions for Swagger 2.0 documents.
// Every path item is parsed in full before it is inserted; any decode or
// operation failure aborts the build with a *SpecError pointing at the
// offending fragment.
func BuildModel(ctx context.Context, doc *Document, opts ...BuildOption) (*Model, error) {
	if doc == nil || doc.Root == nil {
		return nil, errors.New("nil document")
	}
	cfg := &buildConfig{namespace: schema.DefaultNamespace, logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}
	dec := schema.NewDecoder(cfg.namespace)

	schemas, base := componentSchemas(doc.Root)
	types, err := schema.BuildTable(schemas, dec)
	if err != nil {
		return nil, modelError(doc, err, base...)
	}

	paths := doc.Root.Get("paths")
	if paths == nil || paths.Kind != jsonnode.Object {
		return nil, &SpecError{Code: ParseError, Message: "document declares no paths object", Location: doc.Location, JSONPointer: jsonnode.Pointer("paths")}
	}

	root := pathtree.NewRoot()
	kept := 0
	for _, item := range paths.Members {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		op, err := pathtree.ParseOperation(item.Value, dec)
		if err != nil {
			return nil, modelError(doc, err, "paths", item.Name)
		}
		if !cfg.allow(item.Name, op) {
			cfg.logger.Debug("operation filtered out", "path", item.Name, "verb", op.Type.Verb())
			continue
		}
		root.Insert(item.Name, op)
		kept++
		cfg.logger.Debug("operation inserted", "path", item.Name, "type", op.Type.String(), "endpoint", op.Endpoint)
	}

	cfg.logger.Info("model built",
		"location", doc.Location,
		"paths", len(paths.Members),
		"inserted", kept,
		"types", types.Len(),
	)
	return &Model{Types: types, Paths: root}, nil
}

// componentSchemas returns the component schema map and the reference tokens
// it sits under.
func componentSchemas(root *jsonnode.Node) (*jsonnode.Node, []string) {
	if s := root.Get("components").Get("schemas"); s != nil {
		return s, []string{"components", "schemas"}
	}
	if s := root.Get("definitions"); s != nil {
		return s, []string{"definitions"}
	}
	return nil, []string{"components", "schemas"}
}

func (c *buildConfig) allow(path string, op *pathtree.Operation) bool {
	if len(c.methods) > 0 {
		if _, ok := c.methods[op.Type.Verb()]; !ok {
			return false
		}
	}
	if len(c.pathRes) > 0 {
		matched := false
		for _, re := range c.pathRes {
			if re.MatchString(path) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return allowByTags(op.Tags, c)
}

func allowByTags(tags []string, cfg *buildConfig) bool {
	if len(cfg.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := cfg.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := cfg.excludeTags[t]; blocked {
			return false
		}
	}
	return true
}

// modelError wraps a core failure into a SpecError whose pointer is base
// followed by the path the failure carries.
func modelError(doc *Document, err error, base ...string) error {
	var (
		de   *schema.DecodeError
		oe   *pathtree.OperationError
		code ErrorCode
		rel  []string
	)
	switch {
	case errors.As(err, &de):
		code, rel = MalformedSchemaFragment, de.Path
	case errors.As(err, &oe):
		code, rel = MalformedOperation, oe.Path
	default:
		return err
	}
	tokens := append(append([]string(nil), base...), rel...)
	pointer := jsonnode.Pointer(tokens...)
	return &SpecError{
		Code:        code,
		Message:     fmt.Sprintf("%s: %v", pointer, err),
		Location:    doc.Location,
		JSONPointer: pointer,
		Cause:       err,
	}
}
