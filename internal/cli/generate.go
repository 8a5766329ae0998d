package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/MinikPLayer/OpenApiCsGenerator/internal/emitter/csemitter"
	genspec "github.com/MinikPLayer/OpenApiCsGenerator/internal/spec"
)

// GenerateConfig captures all inputs that influence the generate and tree
// commands after merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input          string
	Out            string
	TypesNamespace string
	ClientPrefix   string
	ClientHelper   string
	RootSegment    string
	IncludeTags    []string
	ExcludeTags    []string
	Methods        []string
	Paths          []string
	ConfigPath     string
	DryRun         bool
	Force          bool
	Verbose        bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		TypesNamespace: "ApiTypes",
		ClientPrefix:   csemitter.DefaultClientPrefix,
		ClientHelper:   csemitter.DefaultClientHelper,
		RootSegment:    csemitter.DefaultRootSegment,
	}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate C# types and client stubs from an OpenAPI/Swagger document",
		Long: "Generate C# types and client stubs from an OpenAPI/Swagger document. " +
			"Code is printed to stdout unless --out is given. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  openapi-csgen generate --input openapi.json > Api.cs
  openapi-csgen --config csgen.yaml generate --out Api.cs --force`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	addModelFlags(flags)
	flags.String("out", "", "Output file; prints to stdout when omitted")
	flags.String("types-namespace", "", "Namespace wrapping the data structures (default ApiTypes)")
	flags.String("client-prefix", "", "Prefix of the generated client class names (default Api)")
	flags.String("client-helper", "", "Static class the generated calls go through (default Api)")
	flags.Bool("dry-run", false, "Preview the planned write without touching the file")
	flags.Bool("force", false, "Overwrite an existing output file")

	return cmd
}

// addModelFlags registers the flags that shape the path tree.
func addModelFlags(flags *pflag.FlagSet) {
	flags.String("input", "", "Path or URL to the OpenAPI/Swagger document")
	flags.String("root-segment", "", "Top path segment whose children become client classes (default api)")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.StringSlice("methods", nil, "Only include operations with these verbs (get,post,delete)")
	flags.StringArray("path", nil, "Only include paths matching this regular expression (repeatable)")
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"input", &cfg.Input},
		{"out", &cfg.Out},
		{"types-namespace", &cfg.TypesNamespace},
		{"client-prefix", &cfg.ClientPrefix},
		{"client-helper", &cfg.ClientHelper},
		{"root-segment", &cfg.RootSegment},
	}
	for _, s := range strs {
		if !flags.Changed(s.name) {
			continue
		}
		value, err := flags.GetString(s.name)
		if err != nil {
			return err
		}
		*s.dst = strings.TrimSpace(value)
	}

	slices := []struct {
		name string
		dst  *[]string
	}{
		{"include-tags", &cfg.IncludeTags},
		{"exclude-tags", &cfg.ExcludeTags},
		{"methods", &cfg.Methods},
	}
	for _, s := range slices {
		if !flags.Changed(s.name) {
			continue
		}
		value, err := flags.GetStringSlice(s.name)
		if err != nil {
			return err
		}
		*s.dst = sanitizeTags(value)
	}
	if flags.Changed("path") {
		value, err := flags.GetStringArray("path")
		if err != nil {
			return err
		}
		cfg.Paths = sanitizeTags(value)
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"dry-run", &cfg.DryRun},
		{"force", &cfg.Force},
		{"verbose", &cfg.Verbose},
	}
	for _, b := range bools {
		if !flags.Changed(b.name) {
			continue
		}
		value, err := flags.GetBool(b.name)
		if err != nil {
			return err
		}
		*b.dst = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.TypesNamespace = strings.TrimSpace(c.TypesNamespace)
	c.ClientPrefix = strings.TrimSpace(c.ClientPrefix)
	c.ClientHelper = strings.TrimSpace(c.ClientHelper)
	c.RootSegment = strings.Trim(strings.TrimSpace(c.RootSegment), "/")
	c.IncludeTags = sanitizeTags(c.IncludeTags)
	c.ExcludeTags = sanitizeTags(c.ExcludeTags)
	c.Paths = sanitizeTags(c.Paths)
	methods := make([]string, 0, len(c.Methods))
	for _, m := range c.Methods {
		methods = append(methods, strings.ToLower(m))
	}
	c.Methods = sanitizeTags(methods)
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}

	for _, m := range c.Methods {
		switch m {
		case "get", "post", "delete":
		default:
			return newUsageError(fmt.Sprintf("generate: unsupported method %q (allowed: get, post, delete)", m))
		}
	}

	if err := genspec.ValidatePathPatterns(c.Paths); err != nil {
		return newUsageError(fmt.Sprintf("generate: %v", err))
	}

	overlap := intersect(c.IncludeTags, c.ExcludeTags)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}

	return nil
}

func (c *GenerateConfig) buildOptions() []genspec.BuildOption {
	return []genspec.BuildOption{
		genspec.WithNamespace(c.TypesNamespace),
		genspec.WithIncludeTags(c.IncludeTags),
		genspec.WithExcludeTags(c.ExcludeTags),
		genspec.WithMethods(c.Methods),
		genspec.WithPathPatterns(c.Paths),
		genspec.WithLogger(slog.Default()),
	}
}

func (c *GenerateConfig) emitOptions() csemitter.Options {
	return csemitter.Options{
		TypesNamespace: c.TypesNamespace,
		ClientPrefix:   c.ClientPrefix,
		ClientHelper:   c.ClientHelper,
		RootSegment:    c.RootSegment,
		OutFile:        c.Out,
		Force:          c.Force,
		DryRun:         c.DryRun,
	}
}

// loadModel loads the document, logs its summary and builds the model.
func loadModel(ctx context.Context, cfg *GenerateConfig) (genspec.Summary, *genspec.Model, error) {
	doc, err := genspec.Load(ctx, cfg.Input)
	if err != nil {
		return genspec.Summary{}, nil, specUsageError(err)
	}

	summary, err := genspec.Summarize(ctx, doc)
	if err != nil {
		slog.Warn("document summary incomplete", "location", doc.Location, "error", err)
	}
	slog.Info("document loaded",
		"location", doc.Location,
		"openapi", summary.SpecVersion,
		"title", summary.Title,
		"paths", summary.PathCount,
		"schemas", summary.SchemaCount,
	)

	model, err := genspec.BuildModel(ctx, doc, cfg.buildOptions()...)
	if err != nil {
		return summary, nil, specUsageError(err)
	}
	return summary, model, nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	_, model, err := loadModel(ctx, cfg)
	if err != nil {
		return err
	}

	res, err := csemitter.Emit(ctx, model, cfg.emitOptions())
	if err != nil {
		return wrapOutputError(err, cfg.Out)
	}

	switch {
	case cfg.Out == "":
		fmt.Fprint(os.Stdout, res.Code)
	case cfg.DryRun:
		printPlan(res.Planned)
	default:
		for _, p := range res.Planned {
			slog.Info("wrote generated code", "path", p.Path, "bytes", p.Size)
		}
	}
	return nil
}

func printPlan(planned []csemitter.PlannedFile) {
	fmt.Fprintf(os.Stdout, "Planned writes (%d files):\n", len(planned))
	for _, p := range planned {
		fmt.Fprintf(os.Stdout, "- %s (%d bytes)\n", p.Path, p.Size)
	}
}

func wrapOutputError(err error, out string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output file") || strings.Contains(lower, "output path") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", out, msg))
	}
	return err
}

func sanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	strs := map[string]*string{
		"input":          &cfg.Input,
		"out":            &cfg.Out,
		"typesnamespace": &cfg.TypesNamespace,
		"clientprefix":   &cfg.ClientPrefix,
		"clienthelper":   &cfg.ClientHelper,
		"rootsegment":    &cfg.RootSegment,
	}
	lists := map[string]*[]string{
		"includetags": &cfg.IncludeTags,
		"excludetags": &cfg.ExcludeTags,
		"methods":     &cfg.Methods,
		"paths":       &cfg.Paths,
	}
	bools := map[string]*bool{
		"dryrun":  &cfg.DryRun,
		"force":   &cfg.Force,
		"verbose": &cfg.Verbose,
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		if dst, ok := strs[normalized]; ok {
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = str
			continue
		}
		if dst, ok := lists[normalized]; ok {
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = sanitizeTags(list)
			continue
		}
		if dst, ok := bools[normalized]; ok {
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = val
			continue
		}
		return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
