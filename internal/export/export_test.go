package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/benchcard/benchcard/internal/layout"
	"github.com/benchcard/benchcard/internal/models"
	"github.com/benchcard/benchcard/internal/providers"
	"github.com/benchcard/benchcard/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument(t *testing.T) Document {
	t.Helper()
	p1, p2 := 75.0, 40.0
	cfg := &models.InputConfig{
		Title: "Raster",
		Models: []models.ModelEntry{
			{Model: "openai/a", Percent: &p1, Color: "#123456"},
			{Model: "acme/b", Percent: &p2},
			{Model: "anthropic/c", Percent: &p2, DisplayName: strings.Repeat("very long name ", 20)},
		},
	}
	rows, err := scoring.Process(cfg, providers.PolicyReject)
	require.NoError(t, err)
	return Document{
		Markup: "<html><body>chart</body></html>",
		Config: cfg,
		Models: rows,
		Layout: layout.Compute(len(rows), false, false, false),
	}
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func assertColor(t *testing.T, want string, got color.Color) {
	t.Helper()
	w := color.RGBAModel.Convert(hexColor(want)).(color.RGBA)
	g := color.RGBAModel.Convert(got).(color.RGBA)
	assert.InDelta(t, w.R, g.R, 2, "red of %s", want)
	assert.InDelta(t, w.G, g.G, 2, "green of %s", want)
	assert.InDelta(t, w.B, g.B, 2, "blue of %s", want)
}

func TestRasterExporter_PNG(t *testing.T) {
	doc := testDocument(t)

	out, err := NewRasterExporter().Export(context.Background(), doc, Options{Format: FormatPNG, Scale: 1})
	require.NoError(t, err)

	img := decode(t, out)
	assert.Equal(t, image.Rect(0, 0, 608, 760), img.Bounds())

	assertColor(t, "#EEF2FF", img.At(2, 2))
	assertColor(t, "#FFFFFF", img.At(304, 224))
	// First row bar: x = 40 outer + 40 inner + 64 icon column, bar top = 214 + 100 + 28.
	assertColor(t, "#123456", img.At(146, 356))
	// Track beyond the 75% fill.
	assertColor(t, "#F1F5F9", img.At(144+300, 356))
}

func TestRasterExporter_Scale(t *testing.T) {
	out, err := NewRasterExporter().Export(context.Background(), testDocument(t), Options{Format: FormatPNG})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1216, 1520), decode(t, out).Bounds())
}

func TestRasterExporter_SVGWrapsPNG(t *testing.T) {
	out, err := NewRasterExporter().Export(context.Background(), testDocument(t), Options{Format: FormatSVG, Scale: 1})
	require.NoError(t, err)

	s := string(out)
	require.True(t, strings.HasPrefix(s, "<svg "))
	assert.Contains(t, s, `width="608" height="760" viewBox="0 0 608 760"`)

	const marker = `xlink:href="data:image/png;base64,`
	i := strings.Index(s, marker)
	require.Greater(t, i, 0)
	payload := s[i+len(marker) : strings.LastIndex(s, `"/>`)]
	raw, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	decode(t, raw)
}

func TestRasterExporter_Errors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRasterExporter().Export(ctx, testDocument(t), Options{})
	require.ErrorIs(t, err, context.Canceled)

	_, err = NewRasterExporter().Export(context.Background(), Document{}, Options{})
	require.Error(t, err)

	_, err = NewRasterExporter().Export(context.Background(), testDocument(t), Options{Format: FormatHTML, Scale: 1})
	require.Error(t, err)
}

func TestDecodePNGDataURL(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, ok := decodePNGDataURL("data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()))
	require.True(t, ok)
	assert.Equal(t, 4, img.Bounds().Dx())

	_, ok = decodePNGDataURL("<svg/>")
	assert.False(t, ok)
	_, ok = decodePNGDataURL("data:image/png;base64,AQID")
	assert.False(t, ok)
}

func TestFit(t *testing.T) {
	assert.Equal(t, "short", fit("short", 100))
	cut := fit("a label that is far too wide", 70)
	assert.True(t, strings.HasSuffix(cut, "..."))
	assert.LessOrEqual(t, measure(cut), 70.0)
	assert.Equal(t, "", fit("x", 0))
}

func TestWrapPNGInSVG(t *testing.T) {
	out := string(WrapPNGInSVG([]byte{1, 2, 3}, 10, 20))
	assert.Equal(t, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="10" height="20" viewBox="0 0 10 20">`+
		`<image width="10" height="20" xlink:href="data:image/png;base64,AQID"/></svg>`, out)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{".SVG", FormatSVG, false},
		{"html", FormatHTML, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("out/chart.png")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	f, err = FormatFromPath("chart.htm")
	require.NoError(t, err)
	assert.Equal(t, FormatHTML, f)
	assert.Equal(t, ".html", f.Ext())

	_, err = FormatFromPath("chart")
	require.Error(t, err)
	_, err = FormatFromPath("chart.jpg")
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	e, err := New(Config{Kind: KindRaster})
	require.NoError(t, err)
	assert.Equal(t, "raster", e.Name())

	_, err = New(Config{Kind: "gpu"})
	require.Error(t, err)

	_, err = New(Config{Kind: KindBrowser, BrowserPath: filepath.Join(t.TempDir(), "missing-chrome")})
	require.Error(t, err)

	e, err = New(Config{Kind: KindAuto, BrowserPath: filepath.Join(t.TempDir(), "missing-chrome")})
	require.NoError(t, err)
	assert.Equal(t, "raster", e.Name())
}

// fakeBrowser writes a script that behaves like chrome --screenshot.
func fakeBrowser(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script browser stub needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-chrome")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestBrowserExporter(t *testing.T) {
	path := fakeBrowser(t, `for a in "$@"; do case "$a" in --screenshot=*) printf 'PNGDATA' > "${a#--screenshot=}";; esac; done`)

	e, err := New(Config{Kind: KindBrowser, BrowserPath: path})
	require.NoError(t, err)
	assert.Equal(t, "browser", e.Name())

	out, err := e.Export(context.Background(), testDocument(t), Options{Format: FormatPNG})
	require.NoError(t, err)
	assert.Equal(t, "PNGDATA", string(out))

	out, err = e.Export(context.Background(), testDocument(t), Options{Format: FormatSVG})
	require.NoError(t, err)
	assert.Contains(t, string(out), base64.StdEncoding.EncodeToString([]byte("PNGDATA")))
}

func TestBrowserExporter_Args(t *testing.T) {
	b := NewBrowserExporter("chrome", 0)
	assert.Equal(t, DefaultBrowserTimeout, b.Timeout)

	args := b.args("/tmp/x/chart.html", "/tmp/x/chart.png", 608, 760, 2)
	assert.Contains(t, args, "--window-size=608,760")
	assert.Contains(t, args, "--force-device-scale-factor=2")
	assert.Contains(t, args, "--screenshot=/tmp/x/chart.png")
	assert.Equal(t, "file:///tmp/x/chart.html", args[len(args)-1])
}

func TestBrowserExporter_Failure(t *testing.T) {
	path := fakeBrowser(t, `echo "no display" >&2; exit 3`)
	_, err := NewBrowserExporter(path, time.Second).Export(context.Background(), testDocument(t), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no display")
}

func TestBrowserExporter_Timeout(t *testing.T) {
	path := fakeBrowser(t, `exec sleep 5`)
	_, err := NewBrowserExporter(path, 100*time.Millisecond).Export(context.Background(), testDocument(t), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestBrowserExporter_NeedsMarkup(t *testing.T) {
	doc := testDocument(t)
	doc.Markup = ""
	_, err := NewBrowserExporter("chrome", 0).Export(context.Background(), doc, Options{})
	require.Error(t, err)
}
