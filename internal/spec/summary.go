package spec

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
)

// Summary describes a document at a glance.
type Summary struct {
	SpecVersion string // value of the openapi or swagger member
	Title       string
	Version     string
	PathCount   int
	SchemaCount int
}

// String renders the summary the way the tree command prints it.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "OpenApi version: %s\n", s.SpecVersion)
	fmt.Fprintf(&b, "Title: %s\n", s.Title)
	if s.Version != "" {
		fmt.Fprintf(&b, "Version: %s\n", s.Version)
	}
	fmt.Fprintf(&b, "Paths: %d, Schemas: %d\n", s.PathCount, s.SchemaCount)
	return b.String()
}

// Summarize reads the document metadata through kin-openapi. Swagger 2.0
// documents are converted to OpenAPI 3 first. When kin-openapi cannot read
// the document, the summary is filled from the raw tree and the error is
// returned alongside it; callers treat that as a warning.
func Summarize(ctx context.Context, doc *Document) (Summary, error) {
	fallback := rawSummary(doc)
	if doc == nil || doc.Root == nil {
		return fallback, fmt.Errorf("nil document")
	}
	data, err := doc.Root.MarshalJSON()
	if err != nil {
		return fallback, err
	}

	var v3 *openapi3.T
	switch doc.Version {
	case 2:
		var v2 openapi2.T
		if err := json.Unmarshal(data, &v2); err != nil {
			return fallback, fmt.Errorf("decode swagger 2.0: %w", err)
		}
		v3, err = openapi2conv.ToV3(&v2)
		if err != nil {
			return fallback, fmt.Errorf("convert swagger 2.0: %w", err)
		}
	default:
		loader := openapi3.NewLoader()
		loader.Context = ctx
		v3, err = loader.LoadFromData(data)
		if err != nil {
			return fallback, fmt.Errorf("load openapi: %w", err)
		}
	}

	s := Summary{SpecVersion: fallback.SpecVersion}
	if v3.Info != nil {
		s.Title = strings.TrimSpace(v3.Info.Title)
		s.Version = strings.TrimSpace(v3.Info.Version)
	}
	s.PathCount = len(v3.Paths)
	if v3.Components != nil {
		s.SchemaCount = len(v3.Components.Schemas)
	}
	return s, nil
}

func rawSummary(doc *Document) Summary {
	var s Summary
	if doc == nil || doc.Root == nil {
		return s
	}
	root := doc.Root
	s.SpecVersion = root.Get("openapi").Text()
	if s.SpecVersion == "" {
		s.SpecVersion = root.Get("swagger").Text()
	}
	info := root.Get("info")
	s.Title = strings.TrimSpace(info.Get("title").Text())
	s.Version = strings.TrimSpace(info.Get("version").Text())
	if paths := root.Get("paths"); paths != nil {
		s.PathCount = len(paths.Members)
	}
	if schemas, _ := componentSchemas(root); schemas != nil {
		s.SchemaCount = len(schemas.Members)
	}
	return s
}
