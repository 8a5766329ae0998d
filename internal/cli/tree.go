package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MinikPLayer/OpenApiCsGenerator/internal/emitter/csemitter"
)

var treeRunner = runTree

func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the document summary and its path tree",
		Long: "Print the OpenAPI version and title of a document followed by its path tree. " +
			"Endpoints are labelled with the method stub generate would emit for them.",
		Example: strings.TrimSpace(`  openapi-csgen tree --input openapi.yaml
  openapi-csgen tree --input https://example.com/openapi.json --methods get`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return treeRunner(cmd.Context(), cfg)
		},
	}

	addModelFlags(cmd.Flags())
	return cmd
}

func runTree(ctx context.Context, cfg *GenerateConfig) error {
	summary, model, err := loadModel(ctx, cfg)
	if err != nil {
		return err
	}
	opts := cfg.emitOptions()
	fmt.Fprint(os.Stdout, summary.String())
	fmt.Fprintln(os.Stdout)
	fmt.Fprint(os.Stdout, model.Paths.Print(csemitter.Label(opts)))
	return nil
}
