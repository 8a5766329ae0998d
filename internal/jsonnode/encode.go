package jsonnode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-json-experiment/json/jsontext"
)

// Encode writes n as compact JSON. Numbers that are not valid JSON numbers
// (YAML allows forms such as 0x1F or .inf) are written as strings.
func (n *Node) Encode(w io.Writer) error {
	enc := jsontext.NewEncoder(w, jsontext.AllowDuplicateNames(true))
	return n.encode(enc)
}

// MarshalJSON implements json.Marshaler.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.Encode(&buf); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (n *Node) encode(enc *jsontext.Encoder) error {
	if n == nil {
		return enc.WriteToken(jsontext.Null)
	}
	switch n.Kind {
	case Null:
		return enc.WriteToken(jsontext.Null)
	case Bool:
		return enc.WriteToken(jsontext.Bool(n.Scalar == "true"))
	case String:
		return enc.WriteToken(jsontext.String(n.Scalar))
	case Number:
		if v := jsontext.Value(n.Scalar); v.IsValid() {
			return enc.WriteValue(v)
		}
		return enc.WriteToken(jsontext.String(n.Scalar))
	case Object:
		if err := enc.WriteToken(jsontext.BeginObject); err != nil {
			return err
		}
		for _, m := range n.Members {
			if err := enc.WriteToken(jsontext.String(m.Name)); err != nil {
				return err
			}
			if err := m.Value.encode(enc); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndObject)
	case Array:
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
		for _, it := range n.Items {
			if err := it.encode(enc); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndArray)
	default:
		return fmt.Errorf("jsonnode: cannot encode kind %v", n.Kind)
	}
}
