// Package export turns rendered charts into PNG and SVG images.
package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/benchcard/benchcard/internal/layout"
	"github.com/benchcard/benchcard/internal/models"
)

// Format is an output file format.
type Format string

const (
	FormatHTML Format = "html"
	FormatPNG  Format = "png"
	FormatSVG  Format = "svg"
)

// DefaultScale is the device pixel ratio used when Options.Scale is unset.
const DefaultScale = 2.0

// ParseFormat accepts "html", "png" or "svg", with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); f {
	case FormatHTML, FormatPNG, FormatSVG:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format %q (valid: html, png, svg)", s)
}

// FormatFromPath infers the format from an output file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("output path %q has no extension; use .html, .png or .svg", path)
	}
	if ext == ".htm" {
		return FormatHTML, nil
	}
	return ParseFormat(ext)
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Document is a rendered chart together with the data it was rendered from.
// Browser exporters screenshot Markup; the raster exporter draws from the
// processed rows and layout.
type Document struct {
	Markup string
	Config *models.InputConfig
	Models []models.ProcessedModel
	Layout layout.Dimensions
}

// Options controls an export.
type Options struct {
	Format Format
	// Scale multiplies the layout's CSS pixel size to get the output pixel
	// size. Zero means DefaultScale.
	Scale float64
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return DefaultScale
	}
	return o.Scale
}

//go:generate go run go.uber.org/mock/mockgen -destination exportmock/exporter.go -package exportmock . Exporter

// Exporter produces image bytes for a document.
type Exporter interface {
	// Name identifies the exporter in logs and cache keys.
	Name() string
	Export(ctx context.Context, doc Document, opts Options) ([]byte, error)
}

// PixelSize returns the output size in device pixels for d at scale.
func PixelSize(d layout.Dimensions, scale float64) (width, height int) {
	return int(math.Ceil(d.BackgroundWidth * scale)), int(math.Ceil(d.BackgroundHeight * scale))
}

// CSSSize returns the background size rounded up to whole CSS pixels.
func CSSSize(d layout.Dimensions) (width, height int) {
	return int(math.Ceil(d.BackgroundWidth)), int(math.Ceil(d.BackgroundHeight))
}

// WrapPNGInSVG embeds a PNG as the only element of an SVG document sized
// width x height user units. The result is not a vector image.
func WrapPNGInSVG(png []byte, width, height int) []byte {
	w, h := strconv.Itoa(width), strconv.Itoa(height)
	var b bytes.Buffer
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="`)
	b.WriteString(w + `" height="` + h + `" viewBox="0 0 ` + w + " " + h + `">`)
	b.WriteString(`<image width="` + w + `" height="` + h + `" xlink:href="data:image/png;base64,`)
	b.WriteString(base64.StdEncoding.EncodeToString(png))
	b.WriteString(`"/></svg>`)
	return b.Bytes()
}

// finish converts a PNG produced for doc into the requested format.
func finish(png []byte, doc Document, opts Options) ([]byte, error) {
	switch opts.Format {
	case FormatPNG, "":
		return png, nil
	case FormatSVG:
		w, h := CSSSize(doc.Layout)
		return WrapPNGInSVG(png, w, h), nil
	}
	return nil, fmt.Errorf("exporter cannot produce %q", opts.Format)
}
