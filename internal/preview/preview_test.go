package preview

import (
	"strings"
	"testing"

	"github.com/benchcard/benchcard/internal/models"
	"github.com/benchcard/benchcard/internal/providers"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []models.ProcessedModel {
	return []models.ProcessedModel{
		{Provider: "anthropic", ModelName: "claude-sonnet-4", DisplayLabel: "claude-sonnet-4", Percentage: 74.2, Rank: 1,
			Style: models.ProviderStyle{Color: "#D97757"}, ParamsLabel: "70B Dense"},
		{Provider: "openai", ModelName: "gpt-5", DisplayLabel: "GPT-5", Percentage: 50, Rank: 2,
			Style: models.ProviderStyle{Color: "#10A37F"}},
		{Provider: "qwen", ModelName: "qwen3", DisplayLabel: "Qwen 3", Percentage: 50, Rank: 2,
			Style: models.ProviderStyle{Color: "#615CED"}},
	}
}

func TestRender(t *testing.T) {
	cfg := &models.InputConfig{Title: "Coding", Subtitle: "pass@1", SponsoredBy: "Acme", ShowRankings: true, PercentPrecision: 1}
	out := Render(cfg, sampleRows(), Options{Width: 60})

	assert.Contains(t, out, "Coding")
	assert.Contains(t, out, "pass@1")
	assert.Contains(t, out, "Sponsored by Acme")
	assert.Contains(t, out, "70B Dense")
	assert.Contains(t, out, "74.2%")
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "#1 ")
	assert.Equal(t, 2, strings.Count(out, "#2 "))

	// Labels are padded to the widest one.
	assert.Contains(t, out, "GPT-5          ")
}

func TestRender_NoRankings(t *testing.T) {
	cfg := &models.InputConfig{Title: "Coding"}
	out := Render(cfg, sampleRows(), Options{})
	assert.NotContains(t, out, "#1")
	assert.NotContains(t, out, "Sponsored by")
	assert.Contains(t, out, "74%")
	assert.Contains(t, out, strings.Repeat("─", DefaultWidth))
}

func TestRender_TruncatesLongLabels(t *testing.T) {
	rows := []models.ProcessedModel{{DisplayLabel: strings.Repeat("x", 50), Percentage: 10, Rank: 1}}
	out := Render(&models.InputConfig{Title: "T"}, rows, Options{Width: 80})
	assert.Contains(t, out, strings.Repeat("x", maxLabelCells-1)+"…")
	assert.NotContains(t, out, strings.Repeat("x", maxLabelCells+1))
}

func TestRender_WithChart(t *testing.T) {
	cfg := &models.InputConfig{Title: "Coding"}
	plain := Render(cfg, sampleRows(), Options{Width: 60})
	withChart := Render(cfg, sampleRows(), Options{Width: 60, Chart: true})
	assert.Greater(t, strings.Count(withChart, "\n"), strings.Count(plain, "\n")+chartHeight-2)
}

func TestBar(t *testing.T) {
	style := lipgloss.NewStyle()
	tests := []struct {
		pct   float64
		full  int
		track int
	}{
		{0, 0, 10},
		{100, 10, 0},
		{50, 5, 5},
		{55, 5, 4},
		{150, 10, 0},
		{-5, 0, 10},
	}
	for _, tt := range tests {
		got := bar(tt.pct, 10, style)
		assert.Equal(t, tt.full, strings.Count(got, "█"), "pct %v", tt.pct)
		assert.Equal(t, tt.track, strings.Count(got, "░"), "pct %v", tt.pct)
	}
	assert.Contains(t, bar(55, 10, style), "▌")
}

func TestProviders(t *testing.T) {
	out := Providers(providers.Families())
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(providers.Families()))
	assert.Contains(t, lines[0], "anthropic")
	assert.Contains(t, lines[0], "#D97757")
	assert.Contains(t, lines[0], "aliases: claude")
}

func TestStyle(t *testing.T) {
	out := Style("acme", models.ProviderStyle{Color: "#6B7280", ColorSource: models.SourcePlaceholder, IconSource: models.SourcePlaceholder})
	assert.Contains(t, out, "family:   (none)")
	assert.Contains(t, out, "#6B7280 (placeholder)")
}
