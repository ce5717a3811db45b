package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"
)

// ErrNoBrowser is returned when no Chrome-compatible binary can be found.
var ErrNoBrowser = errors.New("no headless browser found (install Chrome or Chromium, or set export.browser)")

// DefaultBrowserTimeout bounds a single screenshot.
const DefaultBrowserTimeout = 30 * time.Second

// BrowserExporter screenshots the rendered markup with a headless
// Chrome-compatible browser.
type BrowserExporter struct {
	Path    string
	Timeout time.Duration
}

// NewBrowserExporter returns an exporter driving the browser at path.
func NewBrowserExporter(path string, timeout time.Duration) *BrowserExporter {
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}
	return &BrowserExporter{Path: path, Timeout: timeout}
}

func (*BrowserExporter) Name() string { return "browser" }

// Export writes the markup to a temporary file, points the browser at it
// with the window sized to the chart background and reads back the
// screenshot.
func (b *BrowserExporter) Export(ctx context.Context, doc Document, opts Options) ([]byte, error) {
	if doc.Markup == "" {
		return nil, errors.New("browser export needs rendered markup")
	}

	dir, err := os.MkdirTemp("", "benchcard-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	page := filepath.Join(dir, "chart.html")
	if err := os.WriteFile(page, []byte(doc.Markup), 0o600); err != nil {
		return nil, fmt.Errorf("writing page: %w", err)
	}
	shot := filepath.Join(dir, "chart.png")

	w, h := CSSSize(doc.Layout)
	ctx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, b.Path, b.args(page, shot, w, h, opts.scale())...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	slog.Debug("running headless browser", "path", b.Path, "width", w, "height", h, "scale", opts.scale())
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("headless browser timed out after %s: %w", b.Timeout, ctx.Err())
		}
		return nil, fmt.Errorf("headless browser failed: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}

	png, err := os.ReadFile(shot)
	if err != nil {
		return nil, fmt.Errorf("reading screenshot: %w", err)
	}
	return finish(png, doc, opts)
}

func (b *BrowserExporter) args(page, shot string, w, h int, scale float64) []string {
	return []string{
		"--headless=new",
		"--disable-gpu",
		"--hide-scrollbars",
		"--no-first-run",
		"--default-background-color=00000000",
		"--force-device-scale-factor=" + strconv.FormatFloat(scale, 'f', -1, 64),
		"--window-size=" + strconv.Itoa(w) + "," + strconv.Itoa(h),
		"--screenshot=" + shot,
		"file://" + filepath.ToSlash(page),
	}
}

// browserCandidates lists binary names and install paths to probe, in order.
func browserCandidates() []string {
	names := []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "chrome", "microsoft-edge"}
	switch runtime.GOOS {
	case "darwin":
		names = append(names,
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
		)
	case "windows":
		names = append(names,
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
		)
	}
	return names
}

// FindBrowser resolves a browser binary. A non-empty preferred path must
// exist; otherwise the usual install locations are probed.
func FindBrowser(preferred string) (string, error) {
	if preferred != "" {
		p, err := exec.LookPath(preferred)
		if err != nil {
			return "", fmt.Errorf("browser %q: %w", preferred, err)
		}
		return p, nil
	}
	for _, c := range browserCandidates() {
		if p, err := exec.LookPath(c); err == nil {
			return p, nil
		}
	}
	return "", ErrNoBrowser
}
