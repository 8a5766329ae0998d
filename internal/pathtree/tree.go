// Package pathtree groups the operations of an OpenAPI document into a tree
// keyed by URL path segment.
package pathtree

import (
	"fmt"
	"strings"
)

// RootName names the node that Build and NewRoot create.
const RootName = "root"

// Node is one path segment. A node groups the segments below it and may at
// the same time be an endpoint when a declared path ends on it.
type Node struct {
	Name string
	// Path is the full path that first created the node; it is the route
	// used when the node later becomes an endpoint.
	Path string

	IsEndpoint bool
	Type       ApiType
	ReturnType string
	Parameters []Parameter

	Children []*Node
}

// NewNode returns a detached node carrying the operation defaults.
func NewNode(name, path string) *Node {
	return &Node{Name: name, Path: path, Type: Get, ReturnType: DefaultReturnType}
}

// NewRoot returns an empty tree.
func NewRoot() *Node { return NewNode(RootName, "") }

// SplitPath trims leading slashes and splits a path template on '/'.
func SplitPath(path string) (trimmed string, segments []string) {
	trimmed = strings.TrimLeft(path, "/")
	return trimmed, strings.Split(trimmed, "/")
}

// Insert adds the operation declared for path, creating the nodes for any
// segment not seen before.
func (n *Node) Insert(path string, op *Operation) {
	trimmed, segments := SplitPath(path)
	n.InsertSegments(segments, trimmed, op)
}

// InsertSegments walks segments from n, creating missing children in
// first-seen order, and attaches op to the node the segments end on.
// fullPath is recorded on every node this call creates.
func (n *Node) InsertSegments(segments []string, fullPath string, op *Operation) {
	cur := n
	for _, seg := range segments {
		next := cur.Child(seg)
		if next == nil {
			next = NewNode(seg, fullPath)
			cur.Children = append(cur.Children, next)
		}
		cur = next
	}
	cur.Attach(op)
}

// Attach records op on n. Parameters accumulate across calls. An operation
// without a body only records its verb, and never on a node that already
// is an endpoint.
func (n *Node) Attach(op *Operation) {
	if op == nil {
		return
	}
	if !op.Endpoint {
		if !n.IsEndpoint {
			n.Type = op.Type
		}
		return
	}
	n.Type = op.Type
	n.IsEndpoint = true
	n.ReturnType = op.ReturnType
	n.Parameters = append(n.Parameters, op.Parameters...)
}

// Child returns the direct child called name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Lookup descends one segment at a time and returns the node the segments
// end on, or nil when a segment does not resolve. No segments yields n.
func (n *Node) Lookup(segments []string) *Node {
	cur := n
	for _, seg := range segments {
		if cur = cur.Child(seg); cur == nil {
			return nil
		}
	}
	return cur
}

// LookupPath is Lookup on a '/'-separated path.
func (n *Node) LookupPath(path string) *Node {
	_, segments := SplitPath(path)
	return n.Lookup(segments)
}

// Walk visits n and its descendants depth-first, pre-order, children in
// insertion order. depth is 0 for n. Returning false skips the subtree below
// the visited node.
func (n *Node) Walk(visit func(node *Node, depth int) bool) {
	n.walk(visit, 0)
}

func (n *Node) walk(visit func(*Node, int) bool, depth int) {
	if !visit(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(visit, depth+1)
	}
}

// Endpoints returns the endpoint nodes of the subtree rooted at n in Walk
// order, n included.
func (n *Node) Endpoints() []*Node {
	var out []*Node
	n.Walk(func(node *Node, _ int) bool {
		if node.IsEndpoint {
			out = append(out, node)
		}
		return true
	})
	return out
}

// Body returns the body parameter of the endpoint, if any.
func (n *Node) Body() (Parameter, bool) {
	for _, p := range n.Parameters {
		if p.IsBody() {
			return p, true
		}
	}
	return Parameter{}, false
}

// String labels the node for tree listings.
func (n *Node) String() string {
	if !n.IsEndpoint {
		return n.Name
	}
	args := make([]string, 0, len(n.Parameters))
	for _, p := range n.Parameters {
		args = append(args, fmt.Sprintf("%s %s", p.Type, p.Name))
	}
	return fmt.Sprintf("%s [%s %s] (%s) -> %s", n.Name, n.Type, n.Path, strings.Join(args, ", "), n.ReturnType)
}

// Print renders the subtree as an indented list, two spaces per level. label
// defaults to Node.String.
func (n *Node) Print(label func(*Node) string) string {
	if label == nil {
		label = (*Node).String
	}
	var b strings.Builder
	n.Walk(func(node *Node, depth int) bool {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString("- ")
		b.WriteString(label(node))
		b.WriteString("\n")
		return true
	})
	return b.String()
}
