package main

import (
	"log/slog"

	"github.com/benchcard/benchcard/internal/webapi"
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "benchcard [input]",
		Short: "benchcard - render benchmark results as ranked bar charts",
		Long: `benchcard turns a YAML or JSON benchmark description into a ranked
bar chart card: an HTML document, or a PNG or SVG image of it.

Running benchcard with a single input is shorthand for "benchcard render".
Project defaults are read from .benchcard.yaml, found by walking up from the
current directory, and can be overridden with BENCHCARD_* environment
variables (for example BENCHCARD_EXPORT_SCALE=3) or flags.`,
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runRender(cmd, args, output)
		},
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("ambiguity", "", "How ambiguous provider names are handled: reject or first")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file; the extension picks html, png or svg")
	addRenderFlags(cmd)

	webapi.Version = version

	// Add subcommands
	cmd.AddCommand(newRenderCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newPreviewCommand())
	cmd.AddCommand(newInspectCommand())
	cmd.AddCommand(newProvidersCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newCacheCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
