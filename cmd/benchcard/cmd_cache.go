package main

import (
	"fmt"
	"path/filepath"

	"github.com/benchcard/benchcard/internal/cache"
	"github.com/spf13/cobra"
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the export cache",
		Long: `Manage the export cache.

With --cache (or cache.enabled in .benchcard.yaml), exported png and svg
bytes are stored keyed by the rendered markup, geometry, format, scale and
exporter, so an unchanged chart is not exported again.`,
	}

	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the export cache",
		Long: `Clear all cached exports.

The next render with --cache exports every image again.`,
		Args: cobra.NoArgs,
		RunE: cacheClearE,
	}

	cmd.Flags().String("cache-dir", "", "Cache directory to clear (default .benchcard-cache)")

	return cmd
}

func cacheClearE(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	// Resolve to absolute path
	absDir, err := filepath.Abs(s.cacheDir())
	if err != nil {
		return fmt.Errorf("resolving cache directory: %w", err)
	}

	c := cache.New(absDir)
	if err := c.Clear(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", absDir) //nolint:errcheck
	return nil
}
