package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/benchcard/benchcard/internal/wizard"
	"github.com/spf13/cobra"
)

func newInitCommand() *cobra.Command {
	var (
		force bool
		title string
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create a starter chart file",
		Long: `Create a starter chart description by answering a few questions.

In a terminal this opens an interactive form. When input is piped, one
answer is read per line: title, subtitle, rank badges (y/n), font and
models (provider/name=score, ...). Blank lines keep the defaults.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "chart.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if filepath.Ext(path) == "" {
				path = filepath.Join(path, "chart.yaml")
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			answers, err := wizard.Run(cmd.InOrStdin(), cmd.OutOrStdout(), wizard.Answers{Title: title})
			if err != nil {
				return err
			}
			data, err := wizard.GenerateYAML(answers)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n%s Created %s\n", okMark("✓"), path)             //nolint:errcheck
			fmt.Fprintf(out, "  Next: benchcard render %s -o chart.png\n", path) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.Flags().StringVar(&title, "title", "", "Default chart title")

	return cmd
}
