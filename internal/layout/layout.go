// Package layout computes the pixel geometry of a chart card. Everything
// here is a pure function of the row count and which optional sections are
// present.
package layout

// Fixed geometry, in CSS pixels.
const (
	OuterPadding   = 40.0
	InnerPadding   = 40.0
	HeaderChartGap = 24.0
	ChartFooterGap = 24.0
	SubtitleGap    = 4.0
	InterBarGap    = 12.0
	IconSize       = 48.0
	IconContentGap = 16.0
	RankBadgeSize  = 28.0
	RankIconGap    = 16.0
	LabelHeight    = 24.0
	LabelGap       = 4.0
	BarHeight      = 28.0
	TitleHeight    = 36.0
	SubtitleHeight = 24.0
	FooterHeight   = 20.0

	// AspectWidth and AspectHeight fix the background at 4:5.
	AspectWidth  = 4.0
	AspectHeight = 5.0

	// TargetWidth is the nominal export width; bars never get narrower than
	// MinBarFraction of it.
	TargetWidth    = 1280.0
	MinBarFraction = 0.30
)

// MinBarContainerWidth is the narrowest a bar row may render.
const MinBarContainerWidth = TargetWidth * MinBarFraction

// Dimensions is the computed geometry of one chart. The card sits inside a
// background whose size is BackgroundWidth x BackgroundHeight; OffsetX and
// OffsetY place the card's top-left corner within it.
type Dimensions struct {
	HeaderHeight  float64 `json:"headerHeight"`
	BarRowHeight  float64 `json:"barRowHeight"`
	ChartHeight   float64 `json:"chartHeight"`
	ContentHeight float64 `json:"contentHeight"`
	FixedRowWidth float64 `json:"fixedRowWidth"`

	BarContainerWidth float64 `json:"barContainerWidth"`
	CardWidth         float64 `json:"cardWidth"`
	CardHeight        float64 `json:"cardHeight"`
	BackgroundWidth   float64 `json:"backgroundWidth"`
	BackgroundHeight  float64 `json:"backgroundHeight"`
	OffsetX           float64 `json:"offsetX"`
	OffsetY           float64 `json:"offsetY"`

	// Clamped is set when the bar container hit MinBarContainerWidth and the
	// background was enlarged to keep 4:5.
	Clamped bool `json:"clamped"`
}

// Compute returns the layout for modelCount rows. modelCount below 1 is
// treated as 1.
func Compute(modelCount int, hasSubtitle, hasFooter, showRankings bool) Dimensions {
	if modelCount < 1 {
		modelCount = 1
	}
	n := float64(modelCount)

	var d Dimensions
	d.HeaderHeight = TitleHeight
	if hasSubtitle {
		d.HeaderHeight += SubtitleGap + SubtitleHeight
	}

	d.BarRowHeight = LabelHeight + LabelGap + BarHeight
	d.ChartHeight = d.BarRowHeight*n + InterBarGap*(n-1)

	d.ContentHeight = d.HeaderHeight + HeaderChartGap + d.ChartHeight
	if hasFooter {
		d.ContentHeight += ChartFooterGap + FooterHeight
	}
	d.CardHeight = d.ContentHeight + 2*InnerPadding

	// Width follows height: the background is locked to 4:5 and the card
	// fills it minus the outer padding.
	d.BackgroundHeight = d.CardHeight + 2*OuterPadding
	d.BackgroundWidth = d.BackgroundHeight * AspectWidth / AspectHeight
	d.CardWidth = d.BackgroundWidth - 2*OuterPadding

	d.FixedRowWidth = IconSize + IconContentGap
	if showRankings {
		d.FixedRowWidth += RankBadgeSize + RankIconGap
	}
	d.BarContainerWidth = d.CardWidth - 2*InnerPadding - d.FixedRowWidth

	if d.BarContainerWidth < MinBarContainerWidth {
		// Widen the card to the minimum and grow the background downward so
		// it stays 4:5. The card keeps its content height and is centred.
		d.Clamped = true
		d.BarContainerWidth = MinBarContainerWidth
		d.CardWidth = d.BarContainerWidth + d.FixedRowWidth + 2*InnerPadding
		d.BackgroundWidth = d.CardWidth + 2*OuterPadding
		d.BackgroundHeight = d.BackgroundWidth * AspectHeight / AspectWidth
	}

	d.OffsetX = (d.BackgroundWidth - d.CardWidth) / 2
	d.OffsetY = (d.BackgroundHeight - d.CardHeight) / 2
	return d
}

// AspectRatio returns the background's width divided by its height.
func (d Dimensions) AspectRatio() float64 {
	if d.BackgroundHeight == 0 {
		return 0
	}
	return d.BackgroundWidth / d.BackgroundHeight
}

// RowTop returns the y offset of row i relative to the top of the chart area.
func (d Dimensions) RowTop(i int) float64 {
	return float64(i) * (d.BarRowHeight + InterBarGap)
}

// ChartTop returns the y offset of the chart area relative to the card.
func (d Dimensions) ChartTop() float64 {
	return InnerPadding + d.HeaderHeight + HeaderChartGap
}

// BarWidth scales a percentage onto the bar container, clamped to [0, 100].
func (d Dimensions) BarWidth(percentage float64) float64 {
	switch {
	case percentage <= 0:
		return 0
	case percentage >= 100:
		return d.BarContainerWidth
	}
	return d.BarContainerWidth * percentage / 100
}
