// Package schema turns OpenAPI schema fragments into target type names and
// collects the component schemas that the data-structure pass renders.
package schema

import (
	"fmt"
	"strings"

	"github.com/MinikPLayer/OpenApiCsGenerator/internal/jsonnode"
)

// DefaultNamespace qualifies component type names when no other namespace is
// configured.
const DefaultNamespace = "ApiTypes"

// maxItemsDepth bounds items-of-items recursion.
const maxItemsDepth = 64

// Decoder maps a schema fragment to a type name. The zero value qualifies
// component references without a namespace.
type Decoder struct {
	Namespace string
}

// NewDecoder returns a Decoder qualifying references with namespace.
func NewDecoder(namespace string) Decoder {
	return Decoder{Namespace: namespace}
}

// Decode returns the type name for fragment.
//
// A member of the fragment itself always wins; when the fragment does not
// declare a member, the first one found depth-first below it is used. Only
// items and $ref are followed; references are named, never resolved.
func (d Decoder) Decode(fragment *jsonnode.Node) (string, error) {
	return d.decode(fragment, nil)
}

func (d Decoder) decode(n *jsonnode.Node, at []string) (string, error) {
	if len(at) > maxItemsDepth {
		return "", decodeErr(ErrNoTypeInformation, "", at)
	}

	array := false
	if typ, path := n.Locate("type"); typ != nil {
		name, err := valueText(typ, ErrTypeWithoutValue, join(at, path))
		if err != nil {
			return "", err
		}
		switch name {
		case "integer":
			return d.integer(n, at)
		case "boolean":
			return "bool", nil
		case "string":
			return d.str(n, at)
		case "array":
			array = true
		default:
			return name, nil
		}
	}

	inner, err := d.element(n, at)
	if err != nil {
		return "", err
	}
	if array {
		return "List<" + inner + ">", nil
	}
	return inner, nil
}

func (d Decoder) integer(n *jsonnode.Node, at []string) (string, error) {
	format, path := n.Locate("format")
	if format == nil {
		return "int", nil
	}
	name, err := valueText(format, ErrFormatWithoutValue, join(at, path))
	if err != nil {
		return "", err
	}
	switch name {
	case "int32":
		return "int", nil
	case "int64":
		return "long", nil
	default:
		return "", decodeErr(ErrUnknownFormat, name, join(at, path))
	}
}

func (d Decoder) str(n *jsonnode.Node, at []string) (string, error) {
	format, path := n.Locate("format")
	if format == nil {
		return "string", nil
	}
	name, err := valueText(format, ErrFormatWithoutValue, join(at, path))
	if err != nil {
		return "", err
	}
	if name == "date-time" {
		return "DateTime", nil
	}
	return name, nil
}

// element resolves the custom or item type of n: $ref wins over items.
func (d Decoder) element(n *jsonnode.Node, at []string) (string, error) {
	if n.Has("$ref") {
		return d.reference(n.Get("$ref"), join(at, []string{"$ref"}))
	}
	if n.Has("items") {
		return d.decode(n.Get("items"), join(at, []string{"items"}))
	}
	if ref, path := n.Locate("$ref"); ref != nil {
		return d.reference(ref, join(at, path))
	}
	if items, path := n.Locate("items"); items != nil {
		return d.decode(items, join(at, path))
	}
	return "", decodeErr(ErrNoTypeInformation, "", at)
}

func (d Decoder) reference(ref *jsonnode.Node, at []string) (string, error) {
	target, err := valueText(ref, ErrNoTypeInformation, at)
	if err != nil {
		return "", err
	}
	return d.Qualify(RefName(target)), nil
}

// Qualify prefixes a component type name with the decoder's namespace.
func (d Decoder) Qualify(name string) string {
	if d.Namespace == "" {
		return name
	}
	return fmt.Sprintf("%s.%s", d.Namespace, name)
}

// RefName returns the last '/'-separated segment of a reference string.
func RefName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func valueText(n *jsonnode.Node, missing error, at []string) (string, error) {
	v := n.FirstValue()
	if v.IsNull() {
		return "", decodeErr(missing, "", at)
	}
	return v.Text(), nil
}

func join(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
