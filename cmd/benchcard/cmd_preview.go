package main

import (
	"fmt"
	"os"

	"github.com/benchcard/benchcard/internal/preview"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newPreviewCommand() *cobra.Command {
	var (
		width int
		chart bool
	)

	cmd := &cobra.Command{
		Use:   "preview <input>",
		Short: "Show a chart in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			gen, err := s.generator(false)
			if err != nil {
				return err
			}
			c, err := gen.Build(args[0])
			if err != nil {
				return wrapInputError(args[0], err)
			}

			if width <= 0 {
				width = terminalWidth()
			}
			fmt.Fprint(cmd.OutOrStdout(), preview.Render(c.Config, c.Models, preview.Options{Width: width, Chart: chart})) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "Width in columns (default: terminal width)")
	cmd.Flags().BoolVar(&chart, "chart", false, "Add a column chart below the ranked rows")
	cmd.Flags().Int("precision", 0, "Decimal places for percentages when the input omits percentPrecision")

	return cmd
}

// terminalWidth returns the width of stdout, or preview.DefaultWidth when
// stdout is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return preview.DefaultWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return preview.DefaultWidth
	}
	return w
}
