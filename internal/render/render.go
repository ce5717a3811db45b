// Package render produces the HTML markup for a processed chart.
package render

import (
	"bytes"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/benchcard/benchcard/internal/assets"
	"github.com/benchcard/benchcard/internal/layout"
	"github.com/benchcard/benchcard/internal/models"
	"github.com/benchcard/benchcard/internal/scoring"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Mode selects the shape of the rendered markup.
type Mode string

const (
	// ModeStandalone is a complete self-contained HTML document with the
	// stylesheet in its head.
	ModeStandalone Mode = "standalone"
	// ModeFragment is a single element that can be embedded into an
	// existing page; it carries a scoped stylesheet.
	ModeFragment Mode = "fragment"
)

// ParseMode maps a query or flag value to a Mode. Empty selects standalone.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case "", ModeStandalone:
		return ModeStandalone, nil
	case ModeFragment:
		return ModeFragment, nil
	}
	return "", fmt.Errorf("unknown render mode %q (valid: standalone, fragment)", s)
}

// ErrNotInitialized is returned by Render before Init has succeeded.
var ErrNotInitialized = errors.New("renderer is not initialized; call render.Init first")

// Input is everything the renderer needs for one chart.
type Input struct {
	Config *models.InputConfig
	Models []models.ProcessedModel
	Layout layout.Dimensions
}

type engine struct {
	tmpl *template.Template
	md   goldmark.Markdown
}

var (
	initOnce sync.Once
	initErr  error
	current  atomic.Pointer[engine]
)

// Init parses the embedded templates and sets up the markdown converter.
// It is safe to call more than once and from several goroutines; only the
// first call does any work.
func Init() error {
	initOnce.Do(func() {
		tmpl, err := template.New("benchcard").Funcs(template.FuncMap{
			"px": px,
		}).ParseFS(templateFS, "templates/*.tmpl")
		if err != nil {
			initErr = fmt.Errorf("parsing templates: %w", err)
			return
		}
		current.Store(&engine{
			tmpl: tmpl,
			md:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
		})
	})
	return initErr
}

// Render executes the chart template for in. Callers must call Init once
// per process first.
func Render(in Input, mode Mode) (string, error) {
	e := current.Load()
	if e == nil {
		return "", ErrNotInitialized
	}
	if in.Config == nil {
		return "", errors.New("render input has no config")
	}

	v, err := e.newView(in)
	if err != nil {
		return "", err
	}

	name := "document"
	if mode == ModeFragment {
		name = "fragment"
	}

	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, name, v); err != nil {
		return "", fmt.Errorf("executing %s template: %w", name, err)
	}
	return buf.String(), nil
}

type view struct {
	Title         string
	Subtitle      string
	SponsoredBy   string
	Description   template.HTML
	ShowRankings  bool
	FontKey       string
	FontFamily    template.CSS
	ViewportWidth int
	Layout        layout.Dimensions
	Rows          []rowView

	InnerPadding   float64
	SubtitleGap    float64
	RankBadgeSize  float64
	RankIconGap    float64
	IconSize       float64
	IconContentGap float64
	LabelGap       float64
	BarHeight      float64
}

type rowView struct {
	Rank     int
	Label    string
	Provider string
	Params   string
	Percent  string
	Icon     template.URL
	Top      float64
	BarWidth float64
	BarStyle template.CSS
}

func (e *engine) newView(in Input) (*view, error) {
	cfg := in.Config
	font, _ := assets.LookupFont(cfg.Font)

	v := &view{
		Title:          cfg.Title,
		Subtitle:       cfg.Subtitle,
		SponsoredBy:    cfg.SponsoredBy,
		ShowRankings:   cfg.ShowRankings,
		FontKey:        font.Key,
		FontFamily:     template.CSS(font.Family),
		ViewportWidth:  int(in.Layout.BackgroundWidth + 0.5),
		Layout:         in.Layout,
		InnerPadding:   layout.InnerPadding,
		SubtitleGap:    layout.SubtitleGap,
		RankBadgeSize:  layout.RankBadgeSize,
		RankIconGap:    layout.RankIconGap,
		IconSize:       layout.IconSize,
		IconContentGap: layout.IconContentGap,
		LabelGap:       layout.LabelGap,
		BarHeight:      layout.BarHeight,
	}

	if strings.TrimSpace(cfg.Description) != "" {
		var buf bytes.Buffer
		if err := e.md.Convert([]byte(cfg.Description), &buf); err != nil {
			return nil, fmt.Errorf("rendering description: %w", err)
		}
		v.Description = template.HTML(buf.String())
	}

	top := in.Layout.ChartTop()
	for i, m := range in.Models {
		v.Rows = append(v.Rows, rowView{
			Rank:     m.Rank,
			Label:    m.DisplayLabel,
			Provider: m.Provider,
			Params:   m.ParamsLabel,
			Percent:  scoring.FormatPercent(m.Percentage, cfg.PercentPrecision),
			Icon:     IconURL(m.Style.Icon),
			Top:      top + in.Layout.RowTop(i),
			BarWidth: in.Layout.BarWidth(m.Percentage),
			BarStyle: template.CSS("background:" + m.Style.Color),
		})
	}
	return v, nil
}

// IconURL turns inline SVG markup into a base64 data URL. Data URLs pass
// through unchanged. Values must already have been validated.
func IconURL(icon string) template.URL {
	icon = strings.TrimSpace(icon)
	if strings.HasPrefix(icon, "data:") {
		return template.URL(icon)
	}
	return template.URL("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(icon)))
}

func px(v float64) template.CSS {
	return template.CSS(strconv.FormatFloat(v, 'f', -1, 64) + "px")
}
