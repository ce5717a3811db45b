package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"

	"github.com/benchcard/benchcard/internal/layout"
	"github.com/benchcard/benchcard/internal/models"
	"github.com/benchcard/benchcard/internal/providers"
	"github.com/benchcard/benchcard/internal/scoring"
	"github.com/wcharczuk/go-chart/v2/drawing"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RasterExporter draws the chart directly from its layout without a
// browser. Text uses a fixed bitmap face, so output is a faithful layout
// proof rather than a typographic match for the HTML.
type RasterExporter struct{}

// NewRasterExporter returns a RasterExporter.
func NewRasterExporter() *RasterExporter {
	return &RasterExporter{}
}

func (*RasterExporter) Name() string { return "raster" }

var (
	backgroundColor = hexColor("#EEF2FF")
	cardColor       = hexColor("#FFFFFF")
	trackColor      = hexColor("#F1F5F9")
	titleColor      = hexColor("#0F172A")
	mutedColor      = hexColor("#64748B")
	rankColor       = hexColor("#0F172A")
	white           = hexColor("#FFFFFF")
)

// Export draws doc at 1x, scales it by opts.Scale and encodes PNG, wrapped
// in SVG when requested.
func (r *RasterExporter) Export(ctx context.Context, doc Document, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc.Config == nil {
		return nil, fmt.Errorf("raster export needs the chart config")
	}

	img, err := r.draw(doc)
	if err != nil {
		return nil, err
	}

	scale := opts.scale()
	var out image.Image = img
	if scale != 1 {
		w, h := PixelSize(doc.Layout, scale)
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		out = dst
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return finish(buf.Bytes(), doc, opts)
}

func (r *RasterExporter) draw(doc Document) (*image.RGBA, error) {
	d := doc.Layout
	cfg := doc.Config
	w, h := CSSSize(d)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, xdraw.Src)

	gc, err := drawing.NewRasterGraphicContext(img)
	if err != nil {
		return nil, fmt.Errorf("creating graphic context: %w", err)
	}

	ox, oy := d.OffsetX, d.OffsetY
	fillRoundedRect(gc, ox, oy, d.CardWidth, d.CardHeight, 24, cardColor)

	left := ox + layout.InnerPadding
	y := oy + layout.InnerPadding
	drawText(img, cfg.Title, left, y, layout.TitleHeight, d.CardWidth-2*layout.InnerPadding, titleColor)
	y += layout.TitleHeight
	if cfg.HasSubtitle() {
		y += layout.SubtitleGap
		drawText(img, cfg.Subtitle, left, y, layout.SubtitleHeight, d.CardWidth-2*layout.InnerPadding, mutedColor)
	}

	chartTop := oy + d.ChartTop()
	for i, m := range doc.Models {
		r.drawRow(img, gc, d, m, cfg, left, chartTop+d.RowTop(i))
	}

	if cfg.HasFooter() {
		fy := oy + d.CardHeight - layout.InnerPadding - layout.FooterHeight
		drawText(img, "Sponsored by "+cfg.SponsoredBy, left, fy, layout.FooterHeight, d.CardWidth-2*layout.InnerPadding, mutedColor)
	}
	return img, nil
}

func (r *RasterExporter) drawRow(img *image.RGBA, gc drawing.GraphicContext, d layout.Dimensions, m models.ProcessedModel, cfg *models.InputConfig, x, top float64) {
	if cfg.ShowRankings {
		by := top + (d.BarRowHeight-layout.RankBadgeSize)/2
		fillRoundedRect(gc, x, by, layout.RankBadgeSize, layout.RankBadgeSize, layout.RankBadgeSize/2, rankColor)
		drawCentered(img, fmt.Sprint(m.Rank), x, by, layout.RankBadgeSize, layout.RankBadgeSize, white)
		x += layout.RankBadgeSize + layout.RankIconGap
	}

	iy := top + (d.BarRowHeight-layout.IconSize)/2
	drawIcon(img, gc, m, x, iy)
	x += layout.IconSize + layout.IconContentGap

	value := scoring.FormatPercent(m.Percentage, cfg.PercentPrecision)
	valueWidth := measure(value)
	label := m.DisplayLabel
	if m.ParamsLabel != "" {
		label += "  " + m.ParamsLabel
	}
	drawText(img, label, x, top, layout.LabelHeight, d.BarContainerWidth-valueWidth-8, titleColor)
	drawText(img, value, x+d.BarContainerWidth-valueWidth, top, layout.LabelHeight, valueWidth, titleColor)

	barTop := top + layout.LabelHeight + layout.LabelGap
	fillRoundedRect(gc, x, barTop, d.BarContainerWidth, layout.BarHeight, 8, trackColor)
	fillRoundedRect(gc, x, barTop, d.BarWidth(m.Percentage), layout.BarHeight, 8, hexColor(m.Style.Color))
}

// drawIcon paints PNG icons scaled into the icon box. SVG icons cannot be
// rasterised here and are replaced by an initials tile in the row's color.
func drawIcon(img *image.RGBA, gc drawing.GraphicContext, m models.ProcessedModel, x, y float64) {
	if src, ok := decodePNGDataURL(m.Style.Icon); ok {
		rect := image.Rect(int(x), int(y), int(x+layout.IconSize), int(y+layout.IconSize))
		xdraw.CatmullRom.Scale(img, rect, src, src.Bounds(), xdraw.Over, nil)
		return
	}
	fillRoundedRect(gc, x, y, layout.IconSize, layout.IconSize, 12, hexColor(m.Style.Color))
	drawCentered(img, providers.Initials(m.Provider), x, y, layout.IconSize, layout.IconSize, white)
}

func decodePNGDataURL(s string) (image.Image, bool) {
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(s, prefix) {
		return nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(s[len(prefix):]), ""))
	if err != nil {
		return nil, false
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, false
	}
	return img, true
}

func fillRoundedRect(gc drawing.GraphicContext, x, y, w, h, r float64, c color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	r = math.Min(r, math.Min(w, h)/2)
	gc.BeginPath()
	gc.MoveTo(x+r, y)
	gc.LineTo(x+w-r, y)
	gc.QuadCurveTo(x+w, y, x+w, y+r)
	gc.LineTo(x+w, y+h-r)
	gc.QuadCurveTo(x+w, y+h, x+w-r, y+h)
	gc.LineTo(x+r, y+h)
	gc.QuadCurveTo(x, y+h, x, y+h-r)
	gc.LineTo(x, y+r)
	gc.QuadCurveTo(x, y, x+r, y)
	gc.Close()
	gc.SetFillColor(c)
	gc.Fill()
}

var face = basicfont.Face7x13

func measure(s string) float64 {
	return float64(font.MeasureString(face, s).Ceil())
}

// drawText writes s left-aligned and vertically centred in a box of the
// given height, cutting it with "..." to fit maxWidth.
func drawText(img *image.RGBA, s string, x, top, height, maxWidth float64, c color.Color) {
	s = fit(s, maxWidth)
	if s == "" {
		return
	}
	m := face.Metrics()
	baseline := top + (height+float64(m.Ascent.Ceil()-m.Descent.Ceil()))/2
	dr := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(int(math.Round(x))), Y: fixed.I(int(math.Round(baseline)))},
	}
	dr.DrawString(s)
}

func drawCentered(img *image.RGBA, s string, x, y, w, h float64, c color.Color) {
	tw := measure(s)
	drawText(img, s, x+(w-tw)/2, y, h, w, c)
}

func fit(s string, maxWidth float64) string {
	if maxWidth <= 0 {
		return ""
	}
	if measure(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		cut := strings.TrimRight(string(runes), " ") + "..."
		if measure(cut) <= maxWidth {
			return cut
		}
	}
	return ""
}

// hexColor parses "#RRGGBB"; anything unparsable falls back to the default
// provider gray.
func hexColor(s string) color.Color {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		s = strings.TrimPrefix(providers.DefaultColor, "#")
	}
	return drawing.ColorFromHex(s)
}
