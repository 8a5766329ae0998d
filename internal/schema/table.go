package schema

import (
	"iter"

	"github.com/speakeasy-api/openapi/sequencedmap"

	"github.com/MinikPLayer/OpenApiCsGenerator/internal/jsonnode"
)

// Field is one property of an object component. Name is the property name as
// declared; Type is its decoded type name.
type Field struct {
	Name string
	Type string
}

// Literal is one enum value. Text is its textual form and Numeric reports
// whether the source value was a JSON number.
type Literal struct {
	Text    string
	Numeric bool
}

// Table holds the component schemas in document order: object components by
// their fields and enum components by their literals.
type Table struct {
	structs *sequencedmap.Map[string, []Field]
	enums   *sequencedmap.Map[string, []Literal]
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		structs: sequencedmap.New[string, []Field](),
		enums:   sequencedmap.New[string, []Literal](),
	}
}

// BuildTable collects every component in schemas (the value of
// components.schemas or a Swagger 2.0 definitions map). A component with an
// enum array is recorded as an enum; one with properties is recorded as a
// struct; a component may be both. Decode failures are returned with the
// component name and property as path prefix.
func BuildTable(schemas *jsonnode.Node, dec Decoder) (*Table, error) {
	t := NewTable()
	if schemas == nil || schemas.Kind != jsonnode.Object {
		return t, nil
	}
	for _, comp := range schemas.Members {
		if enum := comp.Value.Get("enum"); enum != nil && enum.Kind == jsonnode.Array {
			t.SetEnum(comp.Name, literals(enum))
		}
		props := comp.Value.Get("properties")
		if props == nil || props.Kind != jsonnode.Object {
			continue
		}
		fields := make([]Field, 0, len(props.Members))
		for _, p := range props.Members {
			typ, err := dec.Decode(p.Value)
			if err != nil {
				return nil, WithPrefix(err, comp.Name, "properties", p.Name)
			}
			fields = append(fields, Field{Name: p.Name, Type: typ})
		}
		t.SetStruct(comp.Name, fields)
	}
	return t, nil
}

func literals(enum *jsonnode.Node) []Literal {
	out := make([]Literal, 0, len(enum.Items))
	for _, it := range enum.Items {
		// null marks a nullable enum and has no member of its own
		if !it.IsScalar() {
			continue
		}
		out = append(out, Literal{Text: it.Text(), Numeric: it.Kind == jsonnode.Number})
	}
	return out
}

// SetStruct records (or replaces) an object component.
func (t *Table) SetStruct(name string, fields []Field) { t.structs.Set(name, fields) }

// SetEnum records (or replaces) an enum component.
func (t *Table) SetEnum(name string, values []Literal) { t.enums.Set(name, values) }

// Struct returns the fields of the object component called name.
func (t *Table) Struct(name string) ([]Field, bool) { return t.structs.Get(name) }

// Enum returns the literals of the enum component called name.
func (t *Table) Enum(name string) ([]Literal, bool) { return t.enums.Get(name) }

// Structs iterates object components in document order.
func (t *Table) Structs() iter.Seq2[string, []Field] { return t.structs.All() }

// Enums iterates enum components in document order.
func (t *Table) Enums() iter.Seq2[string, []Literal] { return t.enums.All() }

// Len returns the number of recorded components, counting a component that is
// both an enum and a struct twice.
func (t *Table) Len() int { return t.structs.Len() + t.enums.Len() }
