package main

import (
	"encoding/json"

	"github.com/benchcard/benchcard/internal/layout"
	"github.com/benchcard/benchcard/internal/models"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
)

// inspection is what inspect prints: the ranked rows and the geometry.
type inspection struct {
	Title  string                  `json:"title"`
	Models []models.ProcessedModel `json:"models"`
	Layout layout.Dimensions       `json:"layout"`
}

func newInspectCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <input>",
		Short: "Dump processed models and layout for a chart",
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

			// Icons are long SVG or data URLs and drown out everything else.
			rows := make([]models.ProcessedModel, len(c.Models))
			for i, m := range c.Models {
				m.Style.Icon = abbreviate(m.Style.Icon, 48)
				m.Entry.Icon = abbreviate(m.Entry.Icon, 48)
				rows[i] = m
			}
			in := inspection{Title: c.Config.Title, Models: rows, Layout: c.Layout}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(in)
			}

			printer := pp.New()
			printer.SetOutput(out)
			printer.SetColoringEnabled(false)
			_, err = printer.Println(in)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a Go value dump")
	cmd.Flags().Int("precision", 0, "Decimal places for percentages when the input omits percentPrecision")

	return cmd
}

func abbreviate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
