// Package preview draws a processed chart in the terminal.
package preview

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/benchcard/benchcard/internal/models"
	"github.com/benchcard/benchcard/internal/providers"
	"github.com/benchcard/benchcard/internal/scoring"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// DefaultWidth is the terminal width assumed when the caller passes none.
const DefaultWidth = 80

// Minimum sizes for the two views.
const (
	minBarCells   = 10
	maxLabelCells = 32
	chartHeight   = 12
)

// Options controls the preview.
type Options struct {
	// Width is the terminal width in cells.
	Width int
	// Chart adds a column chart under the ranked rows.
	Chart bool
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	subtitleStyle = lipgloss.NewStyle().Faint(true)
	trackStyle    = lipgloss.NewStyle().Faint(true)
	footerStyle   = lipgloss.NewStyle().Italic(true).Faint(true)
)

// Render returns the terminal preview for a processed chart. Rows keep the
// order of rows, which is expected to be ranked already.
func Render(cfg *models.InputConfig, rows []models.ProcessedModel, opts Options) string {
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(cfg.Title))
	b.WriteString("\n")
	if cfg.HasSubtitle() {
		b.WriteString(subtitleStyle.Render(cfg.Subtitle))
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat("─", width))
	b.WriteString("\n")

	labelW := 0
	for _, r := range rows {
		labelW = max(labelW, runewidth.StringWidth(r.DisplayLabel))
	}
	labelW = min(labelW, maxLabelCells)

	pctW := 0
	pcts := make([]string, len(rows))
	for i, r := range rows {
		pcts[i] = scoring.FormatPercent(r.Percentage, cfg.PercentPrecision)
		pctW = max(pctW, len(pcts[i]))
	}

	rankW := 0
	if cfg.ShowRankings {
		rankW = len(strconv.Itoa(len(rows))) + 2
	}

	// "<rank> ■ <label>  <bar> <pct>"
	barW := width - rankW - 2 - labelW - 2 - 1 - pctW
	barW = max(barW, minBarCells)

	for i, r := range rows {
		if cfg.ShowRankings {
			b.WriteString(padLeft("#"+strconv.Itoa(r.Rank), rankW-1))
			b.WriteString(" ")
		}
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(r.Style.Color))
		b.WriteString(swatch.Render("■"))
		b.WriteString(" ")
		b.WriteString(runewidth.FillRight(runewidth.Truncate(r.DisplayLabel, labelW, "…"), labelW))
		b.WriteString("  ")
		b.WriteString(bar(r.Percentage, barW, swatch))
		b.WriteString(" ")
		b.WriteString(padLeft(pcts[i], pctW))
		b.WriteString("\n")
		if r.ParamsLabel != "" {
			b.WriteString(strings.Repeat(" ", rankW+2))
			b.WriteString(subtitleStyle.Render(r.ParamsLabel))
			b.WriteString("\n")
		}
	}

	if cfg.HasFooter() {
		b.WriteString(footerStyle.Render("Sponsored by " + cfg.SponsoredBy))
		b.WriteString("\n")
	}

	if opts.Chart && len(rows) > 0 {
		b.WriteString("\n")
		b.WriteString(columnChart(rows, width))
		b.WriteString("\n")
	}
	return b.String()
}

// bar fills cells proportionally to pct using eighth-block characters for
// the fractional cell.
func bar(pct float64, cells int, style lipgloss.Style) string {
	eighths := int(math.Round(math.Max(0, math.Min(100, pct)) / 100 * float64(cells*8)))
	full, rem := eighths/8, eighths%8
	filled := strings.Repeat("█", full)
	if rem > 0 {
		filled += string([]rune("▏▎▍▌▋▊▉")[rem-1])
		full++
	}
	return style.Render(filled) + trackStyle.Render(strings.Repeat("░", cells-full))
}

// columnChart draws one column per row with ntcharts.
func columnChart(rows []models.ProcessedModel, width int) string {
	data := make([]barchart.BarData, 0, len(rows))
	for _, r := range rows {
		label := r.ModelName
		if label == "" {
			label = r.Provider
		}
		data = append(data, barchart.BarData{
			Label: runewidth.Truncate(label, 8, ""),
			Values: []barchart.BarValue{
				{Name: r.DisplayLabel, Value: r.Percentage, Style: lipgloss.NewStyle().Foreground(lipgloss.Color(r.Style.Color))},
			},
		})
	}

	bc := barchart.New(width, chartHeight)
	bc.PushAll(data)
	bc.Draw()
	return bc.View()
}

// Providers lists the built-in registry with a color swatch per family.
func Providers(fams []providers.Family) string {
	keyW := 0
	for _, f := range fams {
		keyW = max(keyW, runewidth.StringWidth(f.Key))
	}

	var b strings.Builder
	for _, f := range fams {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(f.Color)).Render("■")
		aliases := ""
		if len(f.Aliases) > 0 {
			aliases = "  aliases: " + strings.Join(f.Aliases, ", ")
		}
		fmt.Fprintf(&b, "%s %s  %s  %s%s\n", swatch, runewidth.FillRight(f.Key, keyW), f.Color, f.Name, aliases)
	}
	return b.String()
}

// Style describes how a single key resolved, one attribute per line.
func Style(key string, style models.ProviderStyle) string {
	var b strings.Builder
	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(style.Color)).Render("■")
	family := style.Family
	if family == "" {
		family = "(none)"
	}
	fmt.Fprintf(&b, "provider: %s\n", key)
	fmt.Fprintf(&b, "family:   %s\n", family)
	fmt.Fprintf(&b, "color:    %s %s (%s)\n", swatch, style.Color, style.ColorSource)
	fmt.Fprintf(&b, "icon:     %s\n", style.IconSource)
	return b.String()
}

func padLeft(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return strings.Repeat(" ", width-sw) + s
}
