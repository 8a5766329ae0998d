package pathtree

import "fmt"

// ApiType is the call kind of an endpoint. PostWithBody is never declared by
// a document; it is derived for post operations that carry a request body.
type ApiType int

const (
	Get ApiType = iota
	Post
	PostWithBody
	Delete
)

func (t ApiType) String() string {
	switch t {
	case Get:
		return "Get"
	case Post:
		return "Post"
	case PostWithBody:
		return "PostWithBody"
	case Delete:
		return "Delete"
	default:
		return fmt.Sprintf("ApiType(%d)", int(t))
	}
}

// Verb returns the lower-case document key the kind is declared under.
func (t ApiType) Verb() string {
	switch t {
	case Get:
		return "get"
	case Post, PostWithBody:
		return "post"
	case Delete:
		return "delete"
	default:
		return ""
	}
}

// Parameter defaults.
const (
	DefaultLocation   = "query"
	DefaultStyle      = "form"
	DefaultType       = "void"
	DefaultReturnType = "object"

	BodyLocation  = "body"
	BodyParamName = "content"
)

// Parameter is one argument of an endpoint.
type Parameter struct {
	Name     string
	Location string
	Style    string
	Type     string
}

// NewParameter returns a Parameter called name with the documented defaults.
func NewParameter(name string) Parameter {
	return Parameter{Name: name, Location: DefaultLocation, Style: DefaultStyle, Type: DefaultType}
}

// IsBody reports whether p is carried as the request payload.
func (p Parameter) IsBody() bool { return p.Location == BodyLocation }

// Operation is the data extracted from one path item. It is computed in full
// before it is attached to a tree node.
type Operation struct {
	Type       ApiType
	Endpoint   bool
	ReturnType string
	Parameters []Parameter
	Tags       []string
}
