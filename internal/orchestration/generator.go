// Package orchestration wires the chart pipeline together: load and
// validate an input, process and rank its models, compute the layout,
// render markup and export it to a file.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/benchcard/benchcard/internal/cache"
	"github.com/benchcard/benchcard/internal/export"
	"github.com/benchcard/benchcard/internal/layout"
	"github.com/benchcard/benchcard/internal/models"
	"github.com/benchcard/benchcard/internal/providers"
	"github.com/benchcard/benchcard/internal/render"
	"github.com/benchcard/benchcard/internal/scoring"
	"github.com/benchcard/benchcard/internal/validation"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds RenderBatch concurrency when no limit is given.
const DefaultWorkers = 4

// Chart is a validated input with its ranked rows and geometry.
type Chart struct {
	// Source is the input path, or empty for in-memory inputs.
	Source string
	Config *models.InputConfig
	Models []models.ProcessedModel
	Layout layout.Dimensions
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventBatchStart     EventType = "batch_start"
	EventBatchComplete  EventType = "batch_complete"
	EventChartStart     EventType = "chart_start"
	EventChartComplete  EventType = "chart_complete"
	EventChartFailed    EventType = "chart_failed"
	EventExportCacheHit EventType = "export_cache_hit"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType EventType
	Input     string
	Output    string
	Total     int
	Err       error
}

// Generator runs the pipeline. It is safe for concurrent use once
// configured.
type Generator struct {
	exporter  export.Exporter
	cache     *cache.Cache
	policy    providers.Policy
	precision int
	scale     float64
	mode      render.Mode
	workers   int

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithExporter sets the exporter used for png and svg output.
func WithExporter(e export.Exporter) GeneratorOption {
	return func(g *Generator) {
		g.exporter = e
	}
}

// WithCache enables export caching
func WithCache(c *cache.Cache) GeneratorOption {
	return func(g *Generator) {
		g.cache = c
	}
}

func WithPolicy(p providers.Policy) GeneratorOption {
	return func(g *Generator) {
		g.policy = p
	}
}

// WithPercentPrecision sets the percentPrecision applied to inputs that omit it.
func WithPercentPrecision(n int) GeneratorOption {
	return func(g *Generator) {
		g.precision = n
	}
}

// WithScale sets the device pixel ratio for image exports.
func WithScale(s float64) GeneratorOption {
	return func(g *Generator) {
		g.scale = s
	}
}

// WithMode selects standalone or fragment markup for html output.
func WithMode(m render.Mode) GeneratorOption {
	return func(g *Generator) {
		g.mode = m
	}
}

func WithWorkers(n int) GeneratorOption {
	return func(g *Generator) {
		g.workers = n
	}
}

// NewGenerator creates a generator. Without WithExporter only html output
// is possible.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		precision: validation.DefaultPercentPrecision,
		scale:     export.DefaultScale,
		mode:      render.ModeStandalone,
		workers:   DefaultWorkers,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// OnProgress registers a progress listener
func (g *Generator) OnProgress(listener ProgressListener) {
	g.progressMu.Lock()
	defer g.progressMu.Unlock()
	g.listeners = append(g.listeners, listener)
}

func (g *Generator) notifyProgress(event ProgressEvent) {
	g.progressMu.Lock()
	listeners := make([]ProgressListener, len(g.listeners))
	copy(listeners, g.listeners)
	g.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Build loads the input file at path and runs it through validation,
// processing and layout. Icon file references resolve relative to path.
func (g *Generator) Build(path string) (*Chart, error) {
	cfg, err := validation.LoadFile(path, validation.ParseOptions{DefaultPercentPrecision: g.precision})
	if err != nil {
		return nil, err
	}
	chart, err := g.BuildConfig(cfg)
	if err != nil {
		return nil, err
	}
	chart.Source = path
	return chart, nil
}

// BuildBytes is Build for an in-memory document. Icons must be inline.
func (g *Generator) BuildBytes(data []byte) (*Chart, error) {
	cfg, err := validation.Parse(data, validation.ParseOptions{DefaultPercentPrecision: g.precision})
	if err != nil {
		return nil, err
	}
	return g.BuildConfig(cfg)
}

// BuildConfig processes an already validated configuration.
func (g *Generator) BuildConfig(cfg *models.InputConfig) (*Chart, error) {
	rows, err := scoring.Process(cfg, g.policy)
	if err != nil {
		return nil, err
	}
	slog.Debug("processed models", "count", len(rows), "policy", g.policy.String())

	dims := layout.Compute(len(rows), cfg.HasSubtitle(), cfg.HasFooter(), cfg.ShowRankings)
	slog.Debug("computed layout",
		"card", fmt.Sprintf("%.1fx%.1f", dims.CardWidth, dims.CardHeight),
		"background", fmt.Sprintf("%.1fx%.1f", dims.BackgroundWidth, dims.BackgroundHeight),
		"clamped", dims.Clamped)

	return &Chart{Config: cfg, Models: rows, Layout: dims}, nil
}

// Markup renders chart in the given mode.
func (g *Generator) Markup(chart *Chart, mode render.Mode) (string, error) {
	if err := render.Init(); err != nil {
		return "", err
	}
	return render.Render(render.Input{Config: chart.Config, Models: chart.Models, Layout: chart.Layout}, mode)
}

// Export produces the bytes for chart in format. Image formats go through
// the configured exporter and, when enabled, the export cache.
func (g *Generator) Export(ctx context.Context, chart *Chart, format export.Format) ([]byte, error) {
	if format == export.FormatHTML {
		markup, err := g.Markup(chart, g.mode)
		if err != nil {
			return nil, err
		}
		return []byte(markup), nil
	}

	if g.exporter == nil {
		return nil, fmt.Errorf("no exporter configured for %s output", format)
	}

	// Exporters always work from the standalone document.
	markup, err := g.Markup(chart, render.ModeStandalone)
	if err != nil {
		return nil, err
	}

	var key string
	if g.cache != nil {
		key, err = cache.Key(g.exporter.Name(), markup, chart.Layout, string(format), g.scale)
		if err != nil {
			return nil, fmt.Errorf("computing cache key: %w", err)
		}
		if entry, ok := g.cache.Get(key); ok {
			slog.Debug("export cache hit", "key", key[:12], "format", format)
			g.notifyProgress(ProgressEvent{EventType: EventExportCacheHit, Input: chart.Source})
			return entry.Data, nil
		}
	}

	doc := export.Document{Markup: markup, Config: chart.Config, Models: chart.Models, Layout: chart.Layout}
	data, err := g.exporter.Export(ctx, doc, export.Options{Format: format, Scale: g.scale})
	if err != nil {
		return nil, fmt.Errorf("%s export: %w", g.exporter.Name(), err)
	}

	if g.cache != nil {
		entry := &cache.Entry{Exporter: g.exporter.Name(), Format: string(format), Scale: g.scale, Data: data}
		if err := g.cache.Put(key, entry); err != nil {
			slog.Warn("failed to write export cache", "error", err)
		}
	}
	return data, nil
}

// Job is one input to render to one output file.
type Job struct {
	Input  string
	Output string
	// Format overrides the format inferred from Output's extension.
	Format export.Format
}

// Result describes a written file.
type Result struct {
	Job
	Chart *Chart
	Bytes int
}

// Render builds job.Input, exports it and writes job.Output, creating its
// directory when needed.
func (g *Generator) Render(ctx context.Context, job Job) (*Result, error) {
	format := job.Format
	if format == "" {
		f, err := export.FormatFromPath(job.Output)
		if err != nil {
			return nil, err
		}
		format = f
	}

	g.notifyProgress(ProgressEvent{EventType: EventChartStart, Input: job.Input, Output: job.Output})

	res, err := g.render(ctx, job, format)
	if err != nil {
		g.notifyProgress(ProgressEvent{EventType: EventChartFailed, Input: job.Input, Output: job.Output, Err: err})
		return nil, err
	}

	g.notifyProgress(ProgressEvent{EventType: EventChartComplete, Input: job.Input, Output: job.Output})
	return res, nil
}

func (g *Generator) render(ctx context.Context, job Job, format export.Format) (*Result, error) {
	chart, err := g.Build(job.Input)
	if err != nil {
		return nil, err
	}

	data, err := g.Export(ctx, chart, format)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(job.Output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(job.Output, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", job.Output, err)
	}

	job.Format = format
	return &Result{Job: job, Chart: chart, Bytes: len(data)}, nil
}

// BatchError collects the failures of a batch render.
type BatchError struct {
	Failures map[string]error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%d of the batch inputs failed", len(e.Failures))
}

// Unwrap exposes every failure to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, err := range e.Failures {
		errs = append(errs, err)
	}
	return errs
}

// RenderBatch renders jobs concurrently, at most the configured number of
// workers at a time. One failing input does not stop the others; results
// for successful jobs are returned in job order alongside a *BatchError.
// Cancelling ctx stops jobs that have not started.
func (g *Generator) RenderBatch(ctx context.Context, jobs []Job) ([]*Result, error) {
	g.notifyProgress(ProgressEvent{EventType: EventBatchStart, Total: len(jobs)})

	results := make([]*Result, len(jobs))
	var (
		mu       sync.Mutex
		failures = map[string]error{}
	)

	eg, ctx := errgroup.WithContext(ctx)
	limit := g.workers
	if limit < 1 {
		limit = DefaultWorkers
	}
	eg.SetLimit(limit)

	for i, job := range jobs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := g.Render(ctx, job)
			if err != nil {
				mu.Lock()
				failures[job.Input] = err
				mu.Unlock()
				return nil
			}
			results[i] = res
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	g.notifyProgress(ProgressEvent{EventType: EventBatchComplete, Total: len(jobs)})

	var done []*Result
	for _, r := range results {
		if r != nil {
			done = append(done, r)
		}
	}
	if len(failures) > 0 {
		return done, &BatchError{Failures: failures}
	}
	return done, nil
}

// IsInputError reports whether err was caused by the input document rather
// than the environment.
func IsInputError(err error) bool {
	var (
		pe  *validation.ParseError
		ve  *validation.ValidationError
		amb *providers.AmbiguousProviderError
	)
	return errors.As(err, &pe) || errors.As(err, &ve) || errors.As(err, &amb) ||
		errors.Is(err, os.ErrNotExist) || errors.Is(err, scoring.ErrNoModels)
}
