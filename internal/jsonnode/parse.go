package jsonnode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json/jsontext"
	"gopkg.in/yaml.v3"
)

// maxDepth bounds nesting so hostile documents cannot exhaust the stack.
const maxDepth = 512

// Parse decodes a JSON or YAML document into a Node. Input whose first
// non-blank byte opens a JSON object or array is read as JSON; anything else
// is read as YAML.
func Parse(data []byte) (*Node, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if len(trimmed) == 0 {
		return nil, errors.New("jsonnode: empty document")
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return ParseJSON(trimmed)
	}
	return ParseYAML(trimmed)
}

// ParseJSON decodes a single JSON value.
func ParseJSON(data []byte) (*Node, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data))
	n, err := readValue(dec, 0)
	if err != nil {
		return nil, fmt.Errorf("jsonnode: parse json: %w", err)
	}
	if _, err := dec.ReadToken(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, fmt.Errorf("jsonnode: parse json: %w", err)
	}
	return n, nil
}

func readValue(dec *jsontext.Decoder, depth int) (*Node, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("nesting deeper than %d", maxDepth)
	}
	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}
	switch tok.Kind() {
	case 'n':
		return NewNull(), nil
	case 't', 'f':
		return NewBool(tok.Bool()), nil
	case '"':
		return NewString(tok.String()), nil
	case '0':
		return NewNumber(tok.String()), nil
	case '{':
		obj := &Node{Kind: Object}
		for dec.PeekKind() != '}' {
			nameTok, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			// the token is only valid until the next decoder call
			name := nameTok.String()
			val, err := readValue(dec, depth+1)
			if err != nil {
				return nil, err
			}
			obj.Members = append(obj.Members, Member{Name: name, Value: val})
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := &Node{Kind: Array}
		for dec.PeekKind() != ']' {
			val, err := readValue(dec, depth+1)
			if err != nil {
				return nil, err
			}
			arr.Items = append(arr.Items, val)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

// ParseYAML decodes the first document of a YAML stream.
func ParseYAML(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("jsonnode: parse yaml: %w", err)
	}
	if doc.Kind == 0 {
		return nil, errors.New("jsonnode: empty document")
	}
	n, err := (&yamlReader{}).node(&doc, 0)
	if err != nil {
		return nil, fmt.Errorf("jsonnode: parse yaml: %w", err)
	}
	return n, nil
}

// yamlReader converts a yaml.Node tree, expanding aliases. It keeps the same
// alias budget yaml.v3 applies when decoding into Go values, so nested
// anchors cannot blow up into an exponential number of nodes.
type yamlReader struct {
	decoded    int
	aliased    int
	aliasDepth int
}

// ErrAliasExpansion is returned when alias expansion produces too many nodes
// relative to the document.
var ErrAliasExpansion = errors.New("document contains excessive aliasing")

func allowedAliasRatio(decoded int) float64 {
	switch {
	case decoded <= 400000:
		return 0.99
	case decoded >= 4000000:
		return 0.10
	default:
		return 0.99 - 0.89*(float64(decoded-400000)/3600000)
	}
}

func (r *yamlReader) count() error {
	r.decoded++
	if r.aliasDepth > 0 {
		r.aliased++
	}
	if r.aliased > 100 && r.decoded > 1000 && float64(r.aliased)/float64(r.decoded) > allowedAliasRatio(r.decoded) {
		return ErrAliasExpansion
	}
	return nil
}

func (r *yamlReader) node(y *yaml.Node, depth int) (*Node, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("nesting deeper than %d", maxDepth)
	}
	if y.Kind != yaml.DocumentNode && y.Kind != yaml.AliasNode {
		if err := r.count(); err != nil {
			return nil, err
		}
	}
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return NewNull(), nil
		}
		return r.node(y.Content[0], depth)
	case yaml.AliasNode:
		if y.Alias == nil {
			return NewNull(), nil
		}
		r.aliasDepth++
		n, err := r.node(y.Alias, depth+1)
		r.aliasDepth--
		return n, err
	case yaml.MappingNode:
		obj := &Node{Kind: Object, Members: make([]Member, 0, len(y.Content)/2)}
		for i := 0; i+1 < len(y.Content); i += 2 {
			key, val := y.Content[i], y.Content[i+1]
			if key.ShortTag() == "!!merge" {
				merged, err := r.node(val, depth+1)
				if err != nil {
					return nil, err
				}
				if merged.Kind == Object {
					obj.Members = append(obj.Members, merged.Members...)
				}
				continue
			}
			v, err := r.node(val, depth+1)
			if err != nil {
				return nil, err
			}
			obj.Members = append(obj.Members, Member{Name: key.Value, Value: v})
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := &Node{Kind: Array, Items: make([]*Node, 0, len(y.Content))}
		for _, c := range y.Content {
			v, err := r.node(c, depth+1)
			if err != nil {
				return nil, err
			}
			arr.Items = append(arr.Items, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		switch y.ShortTag() {
		case "!!null":
			return NewNull(), nil
		case "!!bool":
			var b bool
			if err := y.Decode(&b); err != nil {
				return nil, err
			}
			return NewBool(b), nil
		case "!!int", "!!float":
			return NewNumber(y.Value), nil
		default:
			return NewString(y.Value), nil
		}
	default:
		return nil, fmt.Errorf("unsupported yaml node kind %d", y.Kind)
	}
}
