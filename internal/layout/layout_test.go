package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_ThreeModelsClosedForm(t *testing.T) {
	d := Compute(3, false, false, false)

	assert.Equal(t, 36.0, d.HeaderHeight)
	assert.Equal(t, 56.0, d.BarRowHeight)
	assert.Equal(t, 192.0, d.ChartHeight)
	assert.Equal(t, 252.0, d.ContentHeight)
	assert.Equal(t, 332.0, d.CardHeight)
}

func TestCompute_ClampsNarrowCards(t *testing.T) {
	d := Compute(3, false, false, false)

	require.True(t, d.Clamped)
	assert.Equal(t, MinBarContainerWidth, d.BarContainerWidth)
	assert.Equal(t, 384.0, d.BarContainerWidth)
	assert.Equal(t, 528.0, d.CardWidth)
	assert.Equal(t, 608.0, d.BackgroundWidth)
	assert.Equal(t, 760.0, d.BackgroundHeight)

	// Without the clamp the background would be cardHeight + 2*outer = 412.
	assert.Greater(t, d.BackgroundHeight, d.CardHeight+2*OuterPadding)
	assert.Equal(t, 332.0, d.CardHeight, "card height stays content driven")
	assert.Equal(t, 40.0, d.OffsetX)
	assert.Equal(t, 214.0, d.OffsetY)
	assert.InDelta(t, 0.8, d.AspectRatio(), 1e-9)
}

func TestCompute_Unclamped(t *testing.T) {
	d := Compute(9, true, false, false)

	assert.False(t, d.Clamped)
	assert.Equal(t, 64.0, d.HeaderHeight)
	assert.Equal(t, 600.0, d.ChartHeight)
	assert.Equal(t, 688.0, d.ContentHeight)
	assert.Equal(t, 768.0, d.CardHeight)
	assert.Equal(t, 848.0, d.BackgroundHeight)
	assert.InDelta(t, 678.4, d.BackgroundWidth, 1e-9)
	assert.InDelta(t, 598.4, d.CardWidth, 1e-9)
	assert.InDelta(t, 454.4, d.BarContainerWidth, 1e-9)
	assert.Equal(t, OuterPadding, d.OffsetX)
	assert.Equal(t, OuterPadding, d.OffsetY)
	assert.InDelta(t, 0.8, d.AspectRatio(), 1e-9)
}

func TestCompute_OptionalSections(t *testing.T) {
	base := Compute(12, false, false, false)
	withSub := Compute(12, true, false, false)
	withFooter := Compute(12, false, true, false)
	withRanks := Compute(12, false, false, true)

	assert.Equal(t, base.CardHeight+SubtitleGap+SubtitleHeight, withSub.CardHeight)
	assert.Equal(t, base.CardHeight+ChartFooterGap+FooterHeight, withFooter.CardHeight)
	assert.Equal(t, base.CardHeight, withRanks.CardHeight)

	assert.Equal(t, IconSize+IconContentGap, base.FixedRowWidth)
	assert.Equal(t, RankBadgeSize+RankIconGap+IconSize+IconContentGap, withRanks.FixedRowWidth)
	assert.InDelta(t, base.BarContainerWidth-RankBadgeSize-RankIconGap, withRanks.BarContainerWidth, 1e-9)
}

func TestCompute_Invariants(t *testing.T) {
	for n := 1; n <= 40; n++ {
		for _, sub := range []bool{false, true} {
			for _, footer := range []bool{false, true} {
				for _, ranks := range []bool{false, true} {
					d := Compute(n, sub, footer, ranks)
					assert.GreaterOrEqual(t, d.BarContainerWidth, MinBarContainerWidth, "n=%d", n)
					assert.InDelta(t, 0.8, d.AspectRatio(), 1e-9, "n=%d", n)
					assert.InDelta(t, d.CardWidth, d.BarContainerWidth+d.FixedRowWidth+2*InnerPadding, 1e-9)
					assert.GreaterOrEqual(t, d.OffsetX, OuterPadding-1e-9)
					assert.GreaterOrEqual(t, d.OffsetY, OuterPadding-1e-9)
				}
			}
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	assert.Equal(t, Compute(5, true, true, true), Compute(5, true, true, true))
	assert.Equal(t, Compute(1, false, false, false), Compute(0, false, false, false))
}

func TestDimensions_Helpers(t *testing.T) {
	d := Compute(3, false, false, false)
	assert.Equal(t, 0.0, d.RowTop(0))
	assert.Equal(t, 68.0, d.RowTop(1))
	assert.Equal(t, 100.0, d.ChartTop())
	assert.Equal(t, 0.0, d.BarWidth(-3))
	assert.Equal(t, 192.0, d.BarWidth(50))
	assert.Equal(t, 384.0, d.BarWidth(120))
}
