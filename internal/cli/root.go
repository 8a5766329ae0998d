package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MinikPLayer/OpenApiCsGenerator/internal/logging"
)

// Execute runs the openapi-csgen CLI.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	var closeLog func() error

	cmd := &cobra.Command{
		Use:           "openapi-csgen",
		Short:         "Generate C# types and client stubs from OpenAPI documents",
		Long:          "openapi-csgen turns an OpenAPI 3 or Swagger 2.0 document into C# data structures for its component schemas and static client classes with one method per endpoint.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			logFile, err := cmd.Flags().GetString("log-file")
			if err != nil {
				return err
			}
			level, err := cmd.Flags().GetString("log-level")
			if err != nil {
				return err
			}
			if _, err := logging.ParseLevel(level); err != nil {
				return newUsageError(err.Error())
			}
			closeLog, err = logging.Init(logging.Config{
				Verbose: verbose,
				Level:   level,
				LogFile: logFile,
				Console: cmd.ErrOrStderr(),
			})
			if err != nil {
				return newUsageError(fmt.Sprintf("open log file %q: %v", logFile, err))
			}
			slog.Debug("command started", "command", cmd.CommandPath())
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if closeLog == nil {
				return nil
			}
			return closeLog()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Convert Cobra flag errors (like unknown flags) into friendly usage errors
	// that also show the command's help text.
	flagErr := func(c *cobra.Command, err error) error {
		return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
	}
	cmd.SetFlagErrorFunc(flagErr)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")
	cmd.PersistentFlags().String("log-level", "info", "Console log level: debug, info, warn or error")
	cmd.PersistentFlags().String("log-file", "", "Append JSON debug logs to this file")

	for _, sub := range []*cobra.Command{newGenerateCmd(), newTreeCmd(), newInitCmd()} {
		sub.SetFlagErrorFunc(flagErr)
		cmd.AddCommand(sub)
	}

	return cmd
}
