package main

import (
	"fmt"

	"github.com/benchcard/benchcard/internal/preview"
	"github.com/benchcard/benchcard/internal/providers"
	"github.com/spf13/cobra"
)

func newProvidersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List the built-in providers",
		Long: `List the built-in provider registry in match order.

Use "providers resolve <key>" to see how a provider name in a model string
would be styled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), preview.Providers(providers.Families())) //nolint:errcheck
			return nil
		},
	}

	cmd.AddCommand(newProvidersResolveCommand())

	return cmd
}

func newProvidersResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <key>",
		Short: "Show how a provider key resolves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			policy, err := s.policy()
			if err != nil {
				return err
			}

			style, err := providers.NewResolver(nil, policy).Resolve(args[0])
			if err != nil {
				return &InputError{Err: err}
			}
			fmt.Fprint(cmd.OutOrStdout(), preview.Style(args[0], style)) //nolint:errcheck
			return nil
		},
	}
}
