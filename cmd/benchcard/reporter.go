package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/benchcard/benchcard/internal/orchestration"
	"github.com/benchcard/benchcard/internal/spinner"
	"golang.org/x/term"
)

// formatDuration formats a duration in a consistent, human-readable way.
// This ensures stable output regardless of Go version changes.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(10 * time.Millisecond).String()
}

// batchReporter shows a spinner with a running count while a batch renders.
type batchReporter struct {
	w       io.Writer
	mu      sync.Mutex
	spin    *spinner.Spinner
	total   int
	done    int
	failed  int
	cached  int
	started time.Time
}

func newBatchReporter(w io.Writer) *batchReporter {
	return &batchReporter{w: w}
}

// interactive reports whether w is a terminal worth drawing a spinner on.
func interactive(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (r *batchReporter) listen(event orchestration.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.EventType {
	case orchestration.EventBatchStart:
		r.total = event.Total
		r.started = time.Now()
		r.spin = spinner.Start(r.w, r.status())
	case orchestration.EventChartComplete:
		r.done++
	case orchestration.EventChartFailed:
		r.done++
		r.failed++
	case orchestration.EventExportCacheHit:
		r.cached++
	case orchestration.EventBatchComplete:
		r.stopLocked()
		return
	}
	if r.spin != nil {
		r.spin.Set(r.status())
	}
}

func (r *batchReporter) status() string {
	s := fmt.Sprintf("Rendering %d/%d charts", r.done, r.total)
	if r.failed > 0 {
		s += fmt.Sprintf(", %d failed", r.failed)
	}
	return s
}

// stop clears the spinner if the batch ended without completing.
func (r *batchReporter) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *batchReporter) stopLocked() {
	if r.spin != nil {
		r.spin.Stop()
		r.spin = nil
	}
}

// summary is the closing line for a finished batch.
func (r *batchReporter) summary() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := fmt.Sprintf("%d of %d charts rendered in %s", r.done-r.failed, r.total, formatDuration(time.Since(r.started)))
	if r.cached > 0 {
		s += fmt.Sprintf(" (%d from cache)", r.cached)
	}
	return s
}
