package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func captureGenerateConfig(t *testing.T, args ...string) (*GenerateConfig, error) {
	t.Helper()
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs(args)
	err := root.Execute()
	return captured, err
}

func TestGenerateConfigDefaults(t *testing.T) {
	captured, err := captureGenerateConfig(t, "generate", "--input", "spec.yaml")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured.TypesNamespace != "ApiTypes" {
		t.Errorf("types namespace: got %q", captured.TypesNamespace)
	}
	if captured.ClientPrefix != "Api" || captured.ClientHelper != "Api" {
		t.Errorf("client names: got %q / %q", captured.ClientPrefix, captured.ClientHelper)
	}
	if captured.RootSegment != "api" {
		t.Errorf("root segment: got %q", captured.RootSegment)
	}
	if captured.Out != "" || captured.DryRun || captured.Force {
		t.Errorf("unexpected output settings: %+v", captured)
	}
}

func TestGenerateConfigFromFlags(t *testing.T) {
	captured, err := captureGenerateConfig(t,
		"--verbose",
		"generate",
		"--input", "spec.yaml",
		"--out", "./Api.cs",
		"--types-namespace", "Models",
		"--client-prefix", "Client",
		"--client-helper", "Http",
		"--root-segment", "/v1/",
		"--include-tags", "foo,bar",
		"--exclude-tags", "baz",
		"--methods", "GET,post",
		"--path", "^/v1/pets",
		"--path", "users{1,2}",
		"--dry-run",
		"--force",
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured == nil {
		t.Fatalf("expected config to be captured")
	}

	if captured.Input != "spec.yaml" {
		t.Errorf("input mismatch: got %q", captured.Input)
	}
	if captured.Out != "./Api.cs" {
		t.Errorf("out mismatch: got %q", captured.Out)
	}
	if captured.TypesNamespace != "Models" {
		t.Errorf("types namespace mismatch: got %q", captured.TypesNamespace)
	}
	if captured.ClientPrefix != "Client" || captured.ClientHelper != "Http" {
		t.Errorf("client names mismatch: got %q / %q", captured.ClientPrefix, captured.ClientHelper)
	}
	if captured.RootSegment != "v1" {
		t.Errorf("root segment mismatch: got %q", captured.RootSegment)
	}
	if want := []string{"foo", "bar"}; !equalStringSlices(captured.IncludeTags, want) {
		t.Errorf("include tags mismatch: got %v", captured.IncludeTags)
	}
	if want := []string{"baz"}; !equalStringSlices(captured.ExcludeTags, want) {
		t.Errorf("exclude tags mismatch: got %v", captured.ExcludeTags)
	}
	if want := []string{"get", "post"}; !equalStringSlices(captured.Methods, want) {
		t.Errorf("methods mismatch: got %v", captured.Methods)
	}
	if want := []string{"^/v1/pets", "users{1,2}"}; !equalStringSlices(captured.Paths, want) {
		t.Errorf("paths mismatch: got %v", captured.Paths)
	}
	if !captured.DryRun {
		t.Errorf("expected dry-run true")
	}
	if !captured.Force {
		t.Errorf("expected force true")
	}
	if !captured.Verbose {
		t.Errorf("expected verbose true")
	}
}

func TestGenerateConfigPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := strings.TrimSpace(`input: config-spec.yaml
out: from-config.cs
types-namespace: CfgTypes
client_prefix: CfgApi
includeTags:
  - cfgFoo
excludeTags: cfgBar
methods: [get]
paths: ['^/api']
dryRun: true
force: false
verbose: true
`) + "\n"

	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	captured, err := captureGenerateConfig(t,
		"--config", configPath,
		"generate",
		"--input", "flag-spec.yaml",
		"--include-tags", "flagTag",
		"--client-prefix", "FlagApi",
		"--dry-run=false",
		"--force",
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured == nil {
		t.Fatalf("expected config to be captured")
	}

	if captured.Input != "flag-spec.yaml" {
		t.Errorf("input: want %q got %q", "flag-spec.yaml", captured.Input)
	}
	if captured.Out != "from-config.cs" {
		t.Errorf("out: want from-config.cs got %q", captured.Out)
	}
	if captured.TypesNamespace != "CfgTypes" {
		t.Errorf("types namespace: want CfgTypes got %q", captured.TypesNamespace)
	}
	if captured.ClientPrefix != "FlagApi" {
		t.Errorf("client prefix: want FlagApi got %q", captured.ClientPrefix)
	}
	if captured.ClientHelper != "Api" {
		t.Errorf("client helper: want default Api got %q", captured.ClientHelper)
	}
	if want := []string{"flagTag"}; !equalStringSlices(captured.IncludeTags, want) {
		t.Errorf("include tags: want %v got %v", want, captured.IncludeTags)
	}
	if want := []string{"cfgBar"}; !equalStringSlices(captured.ExcludeTags, want) {
		t.Errorf("exclude tags: want %v got %v", want, captured.ExcludeTags)
	}
	if want := []string{"get"}; !equalStringSlices(captured.Methods, want) {
		t.Errorf("methods: want %v got %v", want, captured.Methods)
	}
	if want := []string{"^/api"}; !equalStringSlices(captured.Paths, want) {
		t.Errorf("paths: want %v got %v", want, captured.Paths)
	}
	if captured.DryRun {
		t.Errorf("expected dry-run false after flag override")
	}
	if !captured.Force {
		t.Errorf("expected force true after flag override")
	}
	if !captured.Verbose {
		t.Errorf("expected verbose true from config file")
	}
	if captured.ConfigPath != configPath {
		t.Errorf("config path mismatch: got %q", captured.ConfigPath)
	}
}

func TestGenerateConfigUnknownKey(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(configPath, []byte("unknown: value\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	root.SetArgs([]string{
		"--config", configPath,
		"generate",
		"--input", "spec.yaml",
	})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestGenerateConfigValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing input", args: []string{"generate"}, want: "--input is required"},
		{name: "bad method", args: []string{"generate", "--input", "s.yaml", "--methods", "put"}, want: "unsupported method"},
		{name: "bad path pattern", args: []string{"generate", "--input", "s.yaml", "--path", "("}, want: "invalid path pattern"},
		{name: "tag overlap", args: []string{"generate", "--input", "s.yaml", "--include-tags", "a", "--exclude-tags", "a"}, want: "overlap"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			root := NewRootCmd()
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)
			root.SetArgs(tc.args)

			err := root.Execute()
			if !errors.Is(err, ErrUsage) {
				t.Fatalf("expected usage error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
