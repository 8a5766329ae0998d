package pathtree

import (
	"strconv"

	"github.com/MinikPLayer/OpenApiCsGenerator/internal/jsonnode"
	"github.com/MinikPLayer/OpenApiCsGenerator/internal/schema"
)

var verbs = map[string]ApiType{
	"get":    Get,
	"post":   Post,
	"delete": Delete,
}

// path item members that describe the path rather than an operation
var pathItemInfo = map[string]bool{
	"summary":     true,
	"description": true,
	"servers":     true,
}

// ParseOperation extracts the single operation declared by a path item such
// as {"get": {...}}. Path-level parameters are placed before the
// operation's own. The verb kind is decided after the whole operation has
// been scanned: a post that carries a request body becomes PostWithBody.
func ParseOperation(item *jsonnode.Node, dec schema.Decoder) (*Operation, error) {
	if item == nil || item.Kind != jsonnode.Object {
		return nil, &OperationError{Reason: ErrNoOperation}
	}

	var (
		verb       string
		opNode     *jsonnode.Node
		pathParams *jsonnode.Node
	)
	for _, m := range item.Members {
		if m.Name == "parameters" {
			pathParams = m.Value
			continue
		}
		if pathItemInfo[m.Name] {
			continue
		}
		if _, ok := verbs[m.Name]; !ok {
			return nil, &OperationError{Reason: ErrUnknownVerb, Verb: m.Name, Path: []string{m.Name}}
		}
		if opNode != nil {
			return nil, &OperationError{Reason: ErrMultipleOperations, Verb: m.Name, Path: []string{m.Name}}
		}
		verb, opNode = m.Name, m.Value
	}
	if opNode == nil {
		return nil, &OperationError{Reason: ErrNoOperation}
	}

	op := &Operation{Type: verbs[verb], ReturnType: DefaultReturnType}
	if opNode.IsEmpty() {
		return op, nil
	}
	op.Endpoint = true

	s := scan{dec: dec, verb: verb, declared: verbs[verb]}
	if pathParams != nil {
		if err := s.parameters(pathParams, []string{"parameters"}); err != nil {
			return nil, err
		}
	}
	if opNode.Kind == jsonnode.Object {
		for _, m := range opNode.Members {
			if m.Value.IsNull() {
				continue
			}
			var err error
			at := []string{verb, m.Name}
			switch m.Name {
			case "responses":
				err = s.responses(m.Value, at)
			case "parameters":
				err = s.parameters(m.Value, at)
			case "requestBody":
				err = s.requestBody(m.Value, at)
			case "tags":
				s.tags(m.Value)
			}
			if err != nil {
				return nil, err
			}
		}
	}

	op.Parameters = s.params
	op.Tags = s.tagList
	if s.returnType != "" {
		op.ReturnType = s.returnType
	}
	if s.hasBody {
		body := NewParameter(BodyParamName)
		body.Location = BodyLocation
		body.Type = s.bodyType
		op.Parameters = append(op.Parameters, body)
		op.Type = PostWithBody
	}
	return op, nil
}

// scan accumulates what one operation object declares.
type scan struct {
	dec      schema.Decoder
	verb     string
	declared ApiType

	params     []Parameter
	tagList    []string
	returnType string
	hasBody    bool
	bodyType   string
}

func (s *scan) responses(n *jsonnode.Node, at []string) error {
	success := n.Get("200")
	if success == nil {
		return nil
	}
	sch, path := success.Locate("schema")
	if sch == nil {
		return nil
	}
	typ, err := s.dec.Decode(sch)
	if err != nil {
		return schema.WithPrefix(err, join(join(at, "200"), path...)...)
	}
	s.returnType = typ
	return nil
}

func (s *scan) parameters(n *jsonnode.Node, at []string) error {
	if n.Kind != jsonnode.Array {
		return nil
	}
	for i, entry := range n.Items {
		if entry == nil || entry.Kind != jsonnode.Object {
			continue
		}
		entryAt := join(at, strconv.Itoa(i))
		p := NewParameter(entry.Get("name").Text())
		if in := entry.Get("in").Text(); in != "" {
			p.Location = in
		}
		if style := entry.Get("style").Text(); style != "" {
			p.Style = style
		}

		fragment, fragmentAt := entry.Get("schema"), join(entryAt, "schema")
		if fragment == nil && entry.Has("type") {
			// Swagger 2.0 declares non-body parameter types inline
			fragment, fragmentAt = entry, entryAt
		}

		if p.IsBody() {
			if fragment == nil {
				continue
			}
			if err := s.body(fragment, fragmentAt); err != nil {
				return err
			}
			continue
		}

		if fragment != nil {
			typ, err := s.dec.Decode(fragment)
			if err != nil {
				return schema.WithPrefix(err, fragmentAt...)
			}
			p.Type = typ
		}
		s.params = append(s.params, p)
	}
	return nil
}

func (s *scan) requestBody(n *jsonnode.Node, at []string) error {
	if s.declared != Post {
		return &OperationError{Reason: ErrBodyNotAllowed, Verb: s.verb, Path: at}
	}
	content := n.Get("content")
	if content == nil {
		return nil
	}
	sch, path := content.Locate("schema")
	if sch == nil {
		return nil
	}
	return s.body(sch, join(at, append([]string{"content"}, path...)...))
}

func (s *scan) body(fragment *jsonnode.Node, at []string) error {
	if s.declared != Post {
		return &OperationError{Reason: ErrBodyNotAllowed, Verb: s.verb, Path: at}
	}
	if s.hasBody {
		return nil
	}
	typ, err := s.dec.Decode(fragment)
	if err != nil {
		return schema.WithPrefix(err, at...)
	}
	s.hasBody, s.bodyType = true, typ
	return nil
}

func (s *scan) tags(n *jsonnode.Node) {
	if n.Kind != jsonnode.Array {
		return
	}
	for _, t := range n.Items {
		if t.IsScalar() {
			s.tagList = append(s.tagList, t.Text())
		}
	}
}

func join(base []string, more ...string) []string {
	out := make([]string, 0, len(base)+len(more))
	out = append(out, base...)
	return append(out, more...)
}
