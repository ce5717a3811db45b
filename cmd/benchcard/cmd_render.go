package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/benchcard/benchcard/internal/export"
	"github.com/benchcard/benchcard/internal/orchestration"
	"github.com/benchcard/benchcard/internal/validation"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	failMark = color.New(color.FgRed).SprintFunc()
	dimText  = color.New(color.Faint).SprintFunc()
)

// addRenderFlags declares the flags shared by the root command and render.
func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "", "Output format when it cannot be inferred: html, png or svg")
	cmd.Flags().Int("precision", 0, "Decimal places for percentages when the input omits percentPrecision")
	cmd.Flags().String("exporter", "", "Image exporter: auto, browser or raster")
	cmd.Flags().String("browser", "", "Path to a Chrome or Chromium binary")
	cmd.Flags().Float64("scale", 0, "Device pixel ratio for png and svg output")
	cmd.Flags().Int("timeout", 0, "Seconds to wait for the headless browser")
	cmd.Flags().Bool("cache", false, "Reuse exported images from the cache directory")
	cmd.Flags().String("cache-dir", "", "Export cache directory")
}

func newRenderCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render <input>...",
		Short: "Render chart files to html, png or svg",
		Long: `Render one or more chart descriptions.

With a single input, -o names the output file and its extension selects the
format. With several inputs (glob patterns are expanded), each chart is
written to --out-dir as <input name>.<format>, rendering up to --workers
charts at a time. A failing input does not stop the others.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file for a single input")
	cmd.Flags().String("out-dir", "", "Directory for batch output")
	cmd.Flags().Int("workers", 0, "Charts rendered concurrently")
	addRenderFlags(cmd)

	return cmd
}

func runRender(cmd *cobra.Command, args []string, output string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	inputs, err := orchestration.ExpandInputs(args)
	if err != nil {
		return err
	}

	jobs, err := planJobs(s, inputs, output)
	if err != nil {
		return err
	}

	needImages := false
	for _, j := range jobs {
		if j.Format != export.FormatHTML {
			needImages = true
		}
	}

	gen, err := s.generator(needImages)
	if err != nil {
		return err
	}

	ctx, stop := interruptContext(cmd)
	defer stop()

	out := cmd.OutOrStdout()
	if len(jobs) == 1 {
		res, err := gen.Render(ctx, jobs[0])
		if err != nil {
			return wrapInputError(jobs[0].Input, err)
		}
		printWritten(out, res)
		return nil
	}

	var reporter *batchReporter
	if interactive(cmd.ErrOrStderr()) {
		reporter = newBatchReporter(cmd.ErrOrStderr())
		gen.OnProgress(reporter.listen)
		defer reporter.stop()
	}

	results, err := gen.RenderBatch(ctx, jobs)
	for _, res := range results {
		printWritten(out, res)
	}
	if reporter != nil && err == nil {
		fmt.Fprintln(out, dimText(reporter.summary())) //nolint:errcheck
	}
	var batchErr *orchestration.BatchError
	if errors.As(err, &batchErr) {
		return reportBatchFailures(cmd.ErrOrStderr(), batchErr, len(jobs))
	}
	return err
}

// planJobs decides output paths and formats for the inputs.
func planJobs(s *settings, inputs []string, output string) ([]orchestration.Job, error) {
	if output != "" {
		if len(inputs) != 1 {
			return nil, errors.New("--output names a single file; use --out-dir with several inputs")
		}
		job := orchestration.Job{Input: inputs[0], Output: output}
		var err error
		if filepath.Ext(output) == "" {
			// No extension: fall back to --format.
			job.Format, err = s.format()
		} else {
			job.Format, err = export.FormatFromPath(output)
		}
		if err != nil {
			return nil, err
		}
		return []orchestration.Job{job}, nil
	}

	format, err := s.format()
	if err != nil {
		return nil, err
	}
	return orchestration.PlanJobs(inputs, s.outDir(), format)
}

func printWritten(w io.Writer, res *orchestration.Result) {
	fmt.Fprintf(w, "%s %s %s\n", okMark("✓"), res.Output, //nolint:errcheck
		dimText(fmt.Sprintf("(%s, %d models, %s)", res.Format, len(res.Chart.Models), formatBytes(res.Bytes))))
}

// reportBatchFailures prints each failure in input order and returns an
// error that classifies the batch for the exit code.
func reportBatchFailures(w io.Writer, be *orchestration.BatchError, total int) error {
	inputs := make([]string, 0, len(be.Failures))
	for in := range be.Failures {
		inputs = append(inputs, in)
	}
	sort.Strings(inputs)

	allInput := true
	for _, in := range inputs {
		err := be.Failures[in]
		fmt.Fprintf(w, "%s %s\n", failMark("✗"), formatInputError(in, err)) //nolint:errcheck
		if !orchestration.IsInputError(err) {
			allInput = false
		}
	}

	summary := fmt.Errorf("%d of %d charts failed", len(inputs), total)
	if allInput {
		return &InputError{Err: summary}
	}
	return summary
}

// wrapInputError attributes input errors to file and passes other errors
// through unchanged.
func wrapInputError(file string, err error) error {
	if orchestration.IsInputError(err) {
		return &InputError{File: file, Err: err}
	}
	return err
}

// formatInputError renders err as "file:line: message" when a line is known.
func formatInputError(file string, err error) string {
	var (
		ve *validation.ValidationError
		pe *validation.ParseError
	)
	line := 0
	msg := err.Error()
	switch {
	case errors.As(err, &ve):
		line, msg = ve.Line, ve.Error()
	case errors.As(err, &pe):
		line, msg = pe.Line, pe.Message
	}

	switch {
	case file == "":
		return msg
	case line > 0:
		return fmt.Sprintf("%s:%d: %s", file, line, msg)
	default:
		return fmt.Sprintf("%s: %s", file, msg)
	}
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// interruptContext returns a context cancelled on Ctrl-C.
func interruptContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}
