package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/benchcard/benchcard/internal/orchestration"
	"github.com/benchcard/benchcard/internal/validation"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "validate <input>...",
		Short: "Check chart files without rendering them",
		Long: `Validate one or more chart descriptions.

Each file is checked the way render checks it and the first violation is
reported as file:line: message. With --all, every structural violation
found by the JSON Schema audit is listed as well.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			gen, err := s.generator(false)
			if err != nil {
				return err
			}
			inputs, err := orchestration.ExpandInputs(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, in := range inputs {
				chart, buildErr := gen.Build(in)
				if buildErr != nil && !orchestration.IsInputError(buildErr) {
					return buildErr
				}

				var audit []string
				if all && !errors.Is(buildErr, os.ErrNotExist) {
					if audit, err = validation.AuditFile(in); err != nil {
						return err
					}
				}

				if buildErr == nil && len(audit) == 0 {
					fmt.Fprintf(out, "%s %s %s\n", okMark("✓"), in, //nolint:errcheck
						dimText(fmt.Sprintf("(%d models)", len(chart.Models))))
					continue
				}

				failed++
				if buildErr != nil {
					fmt.Fprintf(out, "%s %s\n", failMark("✗"), formatInputError(in, buildErr)) //nolint:errcheck
				} else {
					fmt.Fprintf(out, "%s %s\n", failMark("✗"), in) //nolint:errcheck
				}
				for _, a := range audit {
					fmt.Fprintf(out, "    %s\n", a) //nolint:errcheck
				}
			}

			if failed > 0 {
				return &InputError{Err: fmt.Errorf("%d of %d files are invalid", failed, len(inputs))}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Also list every structural violation")

	return cmd
}
