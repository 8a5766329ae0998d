package spec

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MinikPLayer/OpenApiCsGenerator/internal/pathtree"
	"github.com/MinikPLayer/OpenApiCsGenerator/internal/schema"
)

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse([]byte(strings.TrimSpace(src)+"\n"), "test.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestBuildModel_Petstore(t *testing.T) {
	t.Parallel()
	doc := mustParse(t, petstoreYAML)

	m, err := BuildModel(context.Background(), doc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	fields, ok := m.Types.Struct("Pet")
	if !ok {
		t.Fatalf("expected Pet struct")
	}
	want := []schema.Field{{Name: "id", Type: "long"}, {Name: "name", Type: "string"}}
	if len(fields) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(fields))
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("field %d: expected %+v, got %+v", i, want[i], fields[i])
		}
	}

	node := m.Paths.LookupPath("/api/pets")
	if node == nil || !node.IsEndpoint {
		t.Fatalf("expected endpoint at api/pets, got %+v", node)
	}
	if node.Type != pathtree.Get {
		t.Fatalf("expected Get, got %v", node.Type)
	}
	if node.ReturnType != "List<ApiTypes.Pet>" {
		t.Fatalf("unexpected return type %q", node.ReturnType)
	}
	if node.Path != "api/pets" {
		t.Fatalf("unexpected path %q", node.Path)
	}
}

func TestBuildModel_Namespace(t *testing.T) {
	t.Parallel()
	doc := mustParse(t, petstoreYAML)

	m, err := BuildModel(context.Background(), doc, WithNamespace(""))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := m.Paths.LookupPath("api/pets").ReturnType; got != "List<Pet>" {
		t.Fatalf("expected unqualified type, got %q", got)
	}
}

func TestBuildModel_SwaggerDefinitions(t *testing.T) {
	t.Parallel()
	doc := mustParse(t, `
swagger: "2.0"
info:
  title: Legacy
  version: "1"
paths:
  /api/pets:
    post:
      parameters:
        - name: pet
          in: body
          schema:
            $ref: '#/definitions/Pet'
        - name: dryRun
          in: query
          type: boolean
definitions:
  Pet:
    properties:
      tag:
        type: string
`)
	m, err := BuildModel(context.Background(), doc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := m.Types.Struct("Pet"); !ok {
		t.Fatalf("expected Pet from definitions")
	}
	node := m.Paths.LookupPath("api/pets")
	if node.Type != pathtree.PostWithBody {
		t.Fatalf("expected PostWithBody, got %v", node.Type)
	}
	if len(node.Parameters) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(node.Parameters))
	}
	if p := node.Parameters[0]; p.Name != "dryRun" || p.Type != "bool" {
		t.Fatalf("unexpected first parameter %+v", p)
	}
	body, ok := node.Body()
	if !ok || body.Name != "content" || body.Type != "ApiTypes.Pet" {
		t.Fatalf("unexpected body %+v", body)
	}
}

const filterYAML = `
openapi: 3.0.0
info: {title: F, version: "1"}
paths:
  /api/pets:
    get:
      tags: [pets]
  /api/pets/{id}:
    delete:
      tags: [pets, admin]
  /api/users:
    get:
      tags: [users]
`

func TestBuildModel_Filters(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		opts []BuildOption
		want []string
	}{
		{name: "none", want: []string{"api/pets", "api/pets/{id}", "api/users"}},
		{name: "include", opts: []BuildOption{WithIncludeTags([]string{"pets"})}, want: []string{"api/pets", "api/pets/{id}"}},
		{name: "exclude", opts: []BuildOption{WithExcludeTags([]string{"admin"})}, want: []string{"api/pets", "api/users"}},
		{name: "methods", opts: []BuildOption{WithMethods([]string{"DELETE"})}, want: []string{"api/pets/{id}"}},
		{name: "paths", opts: []BuildOption{WithPathPatterns([]string{"^/api/users"})}, want: []string{"api/users"}},
		{name: "bad pattern", opts: []BuildOption{WithPathPatterns([]string{"("})}, want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m, err := BuildModel(context.Background(), mustParse(t, filterYAML), tc.opts...)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			var got []string
			for _, n := range m.Paths.Endpoints() {
				got = append(got, n.Path)
			}
			if strings.Join(got, ",") != strings.Join(tc.want, ",") {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestBuildModel_DecodeErrorPointer(t *testing.T) {
	t.Parallel()
	doc := mustParse(t, `
openapi: 3.0.0
paths:
  /api/pets:
    get:
      responses:
        "200":
          content:
            application/json:
              schema:
                type: integer
                format: int128
`)
	_, err := BuildModel(context.Background(), doc)
	var se *SpecError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecError, got %v (%T)", err, err)
	}
	if se.Code != MalformedSchemaFragment {
		t.Fatalf("expected MalformedSchemaFragment, got %v", se.Code)
	}
	want := "#/paths/~1api~1pets/get/responses/200/content/application~1json/schema/format"
	if se.JSONPointer != want {
		t.Fatalf("expected pointer %q, got %q", want, se.JSONPointer)
	}
	if !errors.Is(err, schema.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat in chain")
	}
}

func TestBuildModel_ComponentErrorPointer(t *testing.T) {
	t.Parallel()
	doc := mustParse(t, `
openapi: 3.0.0
paths: {}
components:
  schemas:
    Pet:
      properties:
        name: {description: no type here}
`)
	_, err := BuildModel(context.Background(), doc)
	var se *SpecError
	if !errors.As(err, &se) || se.Code != MalformedSchemaFragment {
		t.Fatalf("expected MalformedSchemaFragment, got %v (%T)", err, err)
	}
	if se.JSONPointer != "#/components/schemas/Pet/properties/name" {
		t.Fatalf("unexpected pointer %q", se.JSONPointer)
	}
}

func TestBuildModel_OperationErrors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		src     string
		reason  error
		pointer string
	}{
		{
			name:    "unknown verb",
			src:     "paths:\n  /x:\n    put:\n      responses: {}\n",
			reason:  pathtree.ErrUnknownVerb,
			pointer: "#/paths/~1x/put",
		},
		{
			name:    "body on get",
			src:     "paths:\n  /x:\n    get:\n      requestBody:\n        content: {}\n",
			reason:  pathtree.ErrBodyNotAllowed,
			pointer: "#/paths/~1x/get/requestBody",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := BuildModel(context.Background(), mustParse(t, tc.src))
			var se *SpecError
			if !errors.As(err, &se) || se.Code != MalformedOperation {
				t.Fatalf("expected MalformedOperation, got %v (%T)", err, err)
			}
			if !errors.Is(err, tc.reason) {
				t.Fatalf("expected %v in chain, got %v", tc.reason, err)
			}
			if se.JSONPointer != tc.pointer {
				t.Fatalf("expected pointer %q, got %q", tc.pointer, se.JSONPointer)
			}
		})
	}
}

func TestBuildModel_NoPaths(t *testing.T) {
	t.Parallel()
	_, err := BuildModel(context.Background(), mustParse(t, "openapi: 3.0.0\ninfo: {title: x}\n"))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != ParseError {
		t.Fatalf("expected ParseError, got %v (%T)", err, err)
	}
}

func TestBuildModel_CanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := BuildModel(ctx, mustParse(t, petstoreYAML))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestValidatePathPatterns(t *testing.T) {
	t.Parallel()
	if err := ValidatePathPatterns([]string{"^/api", ""}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidatePathPatterns([]string{"("}); err == nil {
		t.Fatalf("expected error for invalid pattern")
	}
}
