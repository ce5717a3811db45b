// Package assets resolves file references in chart inputs and holds the
// fixed font table used by the renderers.
package assets

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedIcon is returned for icon files that are neither SVG nor PNG.
var ErrUnsupportedIcon = errors.New("unsupported icon file")

// IsInline reports whether an icon value is already inline content (SVG
// markup or a data URL) rather than a file reference.
func IsInline(value string) bool {
	v := strings.TrimSpace(value)
	return strings.HasPrefix(v, "data:") || strings.HasPrefix(v, "<")
}

// ResolveIcon reads the icon at path, relative to baseDir unless absolute.
// SVG files are returned as raw markup and PNG files as a base64 data URL.
func ResolveIcon(path, baseDir string) (string, error) {
	full := path
	if !filepath.IsAbs(full) && baseDir != "" {
		full = filepath.Join(baseDir, path)
	}

	ext := strings.ToLower(filepath.Ext(full))
	if ext != ".svg" && ext != ".png" {
		return "", fmt.Errorf("%w %q: expected .svg or .png", ErrUnsupportedIcon, path)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("reading icon %q: %w", path, err)
	}

	if ext == ".svg" {
		return string(data), nil
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}
