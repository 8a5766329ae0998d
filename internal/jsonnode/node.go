// Package jsonnode is a small, read-only JSON value tree that keeps object
// members in document order.
package jsonnode

import (
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Node.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Object
	Array
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Object:
		return "object"
	case Array:
		return "array"
	default:
		return "unknown"
	}
}

// Member is one name/value pair of an object.
type Member struct {
	Name  string
	Value *Node
}

// Node is a parsed JSON value. Scalars keep their textual form in Scalar;
// objects keep members in the order they were declared.
type Node struct {
	Kind    Kind
	Scalar  string
	Members []Member
	Items   []*Node
}

func NewNull() *Node              { return &Node{Kind: Null} }
func NewString(s string) *Node    { return &Node{Kind: String, Scalar: s} }
func NewNumber(text string) *Node { return &Node{Kind: Number, Scalar: text} }

func NewBool(b bool) *Node {
	if b {
		return &Node{Kind: Bool, Scalar: "true"}
	}
	return &Node{Kind: Bool, Scalar: "false"}
}

// NewObject builds an object node from members, keeping their order.
func NewObject(members ...Member) *Node {
	return &Node{Kind: Object, Members: members}
}

// NewArray builds an array node.
func NewArray(items ...*Node) *Node {
	return &Node{Kind: Array, Items: items}
}

// IsNull reports whether n is absent or a JSON null.
func (n *Node) IsNull() bool { return n == nil || n.Kind == Null }

// IsScalar reports whether n is a string, number or boolean.
func (n *Node) IsScalar() bool {
	return n != nil && (n.Kind == String || n.Kind == Number || n.Kind == Bool)
}

// IsEmpty reports whether n is null or a container without children.
func (n *Node) IsEmpty() bool {
	if n.IsNull() {
		return true
	}
	switch n.Kind {
	case Object:
		return len(n.Members) == 0
	case Array:
		return len(n.Items) == 0
	}
	return false
}

// Get returns the value of the object member called name, or nil.
func (n *Node) Get(name string) *Node {
	if n == nil || n.Kind != Object {
		return nil
	}
	for _, m := range n.Members {
		if m.Name == name {
			return m.Value
		}
	}
	return nil
}

// Has reports whether the object declares a member called name.
func (n *Node) Has(name string) bool {
	if n == nil || n.Kind != Object {
		return false
	}
	for _, m := range n.Members {
		if m.Name == name {
			return true
		}
	}
	return false
}

// Text returns the textual form of a scalar and "" for anything else.
func (n *Node) Text() string {
	if !n.IsScalar() {
		return ""
	}
	return n.Scalar
}

// Find returns the value of the first member called name met during a
// depth-first, pre-order walk below n. Own members are met first only when
// they precede nested ones in document order; use Lookup for own-member
// precedence.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(m Member) bool {
		if m.Name == name {
			found = m.Value
			return false
		}
		return true
	})
	return found
}

// Lookup returns the own member called name when present, and otherwise
// falls back to Find.
func (n *Node) Lookup(name string) *Node {
	if n.Has(name) {
		return n.Get(name)
	}
	return n.Find(name)
}

// Locate is Lookup that also reports the reference tokens leading from n to
// the returned value. It returns nil, nil when no member called name exists.
func (n *Node) Locate(name string) (*Node, []string) {
	if n.Has(name) {
		return n.Get(name), []string{name}
	}
	return n.locate(name, nil)
}

func (n *Node) locate(name string, prefix []string) (*Node, []string) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case Object:
		for _, m := range n.Members {
			path := append(append([]string(nil), prefix...), m.Name)
			if m.Name == name {
				return m.Value, path
			}
			if v, p := m.Value.locate(name, path); v != nil {
				return v, p
			}
		}
	case Array:
		for i, it := range n.Items {
			path := append(append([]string(nil), prefix...), strconv.Itoa(i))
			if v, p := it.locate(name, path); v != nil {
				return v, p
			}
		}
	}
	return nil, nil
}

// FirstValue returns n itself when it is a scalar or null, and otherwise the
// first scalar or null found below it in document order.
func (n *Node) FirstValue() *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case Object:
		for _, m := range n.Members {
			if v := m.Value.FirstValue(); v != nil {
				return v
			}
		}
		return nil
	case Array:
		for _, it := range n.Items {
			if v := it.FirstValue(); v != nil {
				return v
			}
		}
		return nil
	default:
		return n
	}
}

// Walk visits every object member below n depth-first in document order: a
// member is visited before the members nested inside its value. Array
// elements are descended into without producing a visit of their own.
// Returning false from visit stops the walk.
func (n *Node) Walk(visit func(Member) bool) {
	n.walk(visit)
}

func (n *Node) walk(visit func(Member) bool) bool {
	if n == nil {
		return true
	}
	switch n.Kind {
	case Object:
		for _, m := range n.Members {
			if !visit(m) {
				return false
			}
			if !m.Value.walk(visit) {
				return false
			}
		}
	case Array:
		for _, it := range n.Items {
			if !it.walk(visit) {
				return false
			}
		}
	}
	return true
}

// EscapePointerToken escapes a reference token for use in a JSON Pointer.
func EscapePointerToken(tok string) string {
	tok = strings.ReplaceAll(tok, "~", "~0")
	return strings.ReplaceAll(tok, "/", "~1")
}

// Pointer joins reference tokens into a "#/"-rooted JSON Pointer.
func Pointer(tokens ...string) string {
	var b strings.Builder
	b.WriteString("#")
	for _, t := range tokens {
		b.WriteString("/")
		b.WriteString(EscapePointerToken(t))
	}
	return b.String()
}
