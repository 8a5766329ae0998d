package csemitter

import (
	"strings"
	"text/template"
)

var funcs = template.FuncMap{
	"indent": func(depth int) string { return strings.Repeat("\t", depth) },
}

// typesTemplate renders enums first, then classes, each in component order.
var typesTemplate = template.Must(template.New("types").Funcs(funcs).Parse(
	`{{- $d := .Depth -}}
{{- if .Namespace }}namespace {{ .Namespace }}
{
{{ end -}}
{{- range $i, $e := .Enums }}{{ if $i }}
{{ end }}{{ indent $d }}public enum {{ $e.Name }}
{{ indent $d }}{
{{- range $e.Members }}
{{- if .Numeric }}
{{ indent $d }}	{{ .Name }} = {{ .Value }},
{{- else }}
{{ indent $d }}	[EnumMember(Value = {{ .Value }})]
{{ indent $d }}	{{ .Name }},
{{- end }}
{{- end }}
{{ indent $d }}}
{{ end -}}
{{- if and .Enums .Structs }}
{{ end -}}
{{- range $i, $s := .Structs }}{{ if $i }}
{{ end }}{{ indent $d }}public class {{ $s.Name }}
{{ indent $d }}{
{{- range $s.Fields }}
{{ indent $d }}	public {{ .Type }} {{ .Name }} { get; set; }
{{- end }}
{{ indent $d }}}
{{ end -}}
{{- if .Namespace }}}
{{ end -}}
`))

// clientsTemplate renders one static class per top-level segment.
var clientsTemplate = template.Must(template.New("clients").Parse(
	`{{- range $i, $c := .Containers }}{{ if $i }}
{{ end }}public static class {{ $c.Name }}
{
{{- range $c.Methods }}
	{{ . }}
{{- end }}
}
{{ end -}}
`))

type typesData struct {
	Namespace string
	Depth     int
	Enums     []enumData
	Structs   []structData
}

type enumData struct {
	Name    string
	Members []enumMember
}

type enumMember struct {
	Name    string
	Value   string
	Numeric bool
}

type structData struct {
	Name   string
	Fields []fieldData
}

type fieldData struct {
	Name string
	Type string
}

type clientsData struct {
	Containers []containerData
}

type containerData struct {
	Name    string
	Methods []string
}
