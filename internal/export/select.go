package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Exporter kinds accepted by New.
const (
	KindAuto    = "auto"
	KindBrowser = "browser"
	KindRaster  = "raster"
)

// Config selects and configures an exporter.
type Config struct {
	Kind        string
	BrowserPath string
	Timeout     time.Duration
}

// New returns the exporter named by cfg.Kind. "auto" uses a headless
// browser when one can be found and the raster exporter otherwise.
func New(cfg Config) (Exporter, error) {
	switch strings.ToLower(cfg.Kind) {
	case KindRaster:
		return NewRasterExporter(), nil
	case KindBrowser:
		path, err := FindBrowser(cfg.BrowserPath)
		if err != nil {
			return nil, err
		}
		return NewBrowserExporter(path, cfg.Timeout), nil
	case KindAuto, "":
		path, err := FindBrowser(cfg.BrowserPath)
		if err != nil {
			slog.Debug("falling back to raster exporter", "reason", err)
			return NewRasterExporter(), nil
		}
		return NewBrowserExporter(path, cfg.Timeout), nil
	}
	return nil, fmt.Errorf("unknown exporter %q (valid: auto, browser, raster)", cfg.Kind)
}
