package scoring

import (
	"errors"
	"testing"

	"github.com/benchcard/benchcard/internal/models"
	"github.com/benchcard/benchcard/internal/providers"
	"github.com/benchcard/benchcard/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pct(v float64) *float64 { return &v }
func num(v int) *int         { return &v }

func cfgWithPercents(values ...float64) *models.InputConfig {
	cfg := &models.InputConfig{Title: "T"}
	for _, v := range values {
		cfg.Models = append(cfg.Models, models.ModelEntry{Model: "openai/m", Percent: pct(v)})
	}
	return cfg
}

func TestProcess_CompetitionRanks(t *testing.T) {
	cfg := cfgWithPercents(55, 100, 65, 45, 80, 55, 65, 55)

	rows, err := Process(cfg, providers.PolicyReject)
	require.NoError(t, err)
	require.Len(t, rows, 8)

	var got []float64
	var ranks []int
	for _, r := range rows {
		got = append(got, r.Percentage)
		ranks = append(ranks, r.Rank)
	}
	assert.Equal(t, []float64{100, 80, 65, 65, 55, 55, 55, 45}, got)
	assert.Equal(t, []int{1, 2, 3, 3, 5, 5, 5, 8}, ranks)
}

func TestProcess_StableTies(t *testing.T) {
	cfg := &models.InputConfig{Models: []models.ModelEntry{
		{Model: "a/first", Percent: pct(50)},
		{Model: "a/top", Percent: pct(90)},
		{Model: "a/second", Percent: pct(50)},
		{Model: "a/third", Positive: num(1), Total: num(2)},
	}}

	rows, err := Process(cfg, providers.PolicyReject)
	require.NoError(t, err)

	var names []string
	var idx []int
	for _, r := range rows {
		names = append(names, r.ModelName)
		idx = append(idx, r.Index)
	}
	assert.Equal(t, []string{"top", "first", "second", "third"}, names)
	assert.Equal(t, []int{1, 0, 2, 3}, idx)
}

func TestProcess_RankProperties(t *testing.T) {
	cfg := cfgWithPercents(10, 10, 20, 30, 30, 30, 5, 0, 0, 100)

	rows, err := Process(cfg, providers.PolicyReject)
	require.NoError(t, err)
	require.Len(t, rows, len(cfg.Models))

	require.Equal(t, 1, rows[0].Rank)
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i-1].Percentage, rows[i].Percentage)
		if rows[i].Percentage == rows[i-1].Percentage {
			assert.Equal(t, rows[i-1].Rank, rows[i].Rank)
		} else {
			assert.Equal(t, i+1, rows[i].Rank)
		}
	}
}

func TestProcess_Encodings(t *testing.T) {
	cfg := &models.InputConfig{Models: []models.ModelEntry{
		{Model: "anthropic/claude", Percent: pct(74.2)},
		{Model: "openai/gpt", Positive: num(75), Total: num(100)},
	}}

	rows, err := Process(cfg, providers.PolicyReject)
	require.NoError(t, err)
	assert.Equal(t, 75.0, rows[0].Percentage)
	assert.Equal(t, "gpt", rows[0].DisplayLabel)
	assert.Equal(t, 74.2, rows[1].Percentage)
	assert.Equal(t, "claude", rows[1].DisplayLabel)
}

func TestProcess_FractionIsNotRounded(t *testing.T) {
	cfg := &models.InputConfig{Models: []models.ModelEntry{
		{Model: "qwen/q", Positive: num(1), Total: num(3)},
	}}
	rows, err := Process(cfg, providers.PolicyReject)
	require.NoError(t, err)
	assert.InDelta(t, 33.333333, rows[0].Percentage, 1e-5)
	assert.Equal(t, "33.3%", FormatPercent(rows[0].Percentage, 1))
}

func TestProcess_StylePrecedence(t *testing.T) {
	cfg := &models.InputConfig{
		CustomProviders: []models.CustomProvider{{Key: "anthropic", Color: "#111111"}},
		Models: []models.ModelEntry{
			{Model: "anthropic/a", Percent: pct(3)},
			{Model: "anthropic/b", Percent: pct(2), Color: "#222222"},
			{Model: "acme-corp/c", Percent: pct(1)},
		},
	}

	rows, err := Process(cfg, providers.PolicyReject)
	require.NoError(t, err)

	assert.Equal(t, "#111111", rows[0].Style.Color)
	assert.Equal(t, models.SourceCustom, rows[0].Style.ColorSource)
	assert.Equal(t, models.SourceBuiltin, rows[0].Style.IconSource)

	assert.Equal(t, "#222222", rows[1].Style.Color)
	assert.Equal(t, models.SourceModel, rows[1].Style.ColorSource)

	assert.Equal(t, providers.DefaultColor, rows[2].Style.Color)
	assert.Contains(t, rows[2].Style.Icon, ">AC</text>")
}

func TestProcess_Errors(t *testing.T) {
	t.Run("no models", func(t *testing.T) {
		_, err := Process(&models.InputConfig{}, providers.PolicyReject)
		require.ErrorIs(t, err, ErrNoModels)
	})

	t.Run("ambiguous provider", func(t *testing.T) {
		cfg := &models.InputConfig{Models: []models.ModelEntry{
			{Model: "openai/gpt", Percent: pct(1)},
			{Model: "ai/thing", Percent: pct(2)},
		}}
		_, err := Process(cfg, providers.PolicyReject)

		var ve *validation.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "models[1].model", ve.Path)

		var amb *providers.AmbiguousProviderError
		require.True(t, errors.As(err, &amb))
	})

	t.Run("bad icon", func(t *testing.T) {
		cfg := &models.InputConfig{Models: []models.ModelEntry{
			{Model: "a/b", Percent: pct(1), Icon: "data:image/png;base64,!!"},
		}}
		_, err := Process(cfg, providers.PolicyReject)
		require.EqualError(t, err, "models[0].icon must be inline SVG markup or a data:image/svg+xml or data:image/png base64 data URL")
	})

	t.Run("bad custom icon", func(t *testing.T) {
		cfg := &models.InputConfig{
			CustomProviders: []models.CustomProvider{{Key: "x", Color: "#000000", IconDataURL: "icon.png"}},
			Models:          []models.ModelEntry{{Model: "a/b", Percent: pct(1)}},
		}
		_, err := Process(cfg, providers.PolicyReject)
		var ve *validation.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "customProviders[0].iconDataUrl", ve.Path)
	})

	t.Run("missing score", func(t *testing.T) {
		cfg := &models.InputConfig{Models: []models.ModelEntry{{Model: "a/b"}}}
		_, err := Process(cfg, providers.PolicyReject)
		require.EqualError(t, err, "models[0] must specify a score: percent or positive/total")
	})
}

func TestProcess_Idempotent(t *testing.T) {
	cfg := cfgWithPercents(10, 30, 30, 20)
	a, err := Process(cfg, providers.PolicyReject)
	require.NoError(t, err)
	b, err := Process(cfg, providers.PolicyReject)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 10.0, *cfg.Models[0].Percent, "input must not be reordered")
}

func TestSplitModel(t *testing.T) {
	tests := []struct {
		in, provider, name string
	}{
		{"anthropic/claude-sonnet-4", "anthropic", "claude-sonnet-4"},
		{"meta/llama/3.1", "meta", "llama/3.1"},
		{"openai/", "openai", ""},
		{"solo", "solo", ""},
	}
	for _, tt := range tests {
		p, n := SplitModel(tt.in)
		assert.Equal(t, tt.provider, p, tt.in)
		assert.Equal(t, tt.name, n, tt.in)
	}
}

func TestDisplayLabel(t *testing.T) {
	assert.Equal(t, "Custom", DisplayLabel(models.ModelEntry{DisplayName: " Custom "}, "p", "n"))
	assert.Equal(t, "n", DisplayLabel(models.ModelEntry{DisplayName: "  "}, "p", "n"))
	assert.Equal(t, "p", DisplayLabel(models.ModelEntry{}, "p", ""))
}

func TestParamsLabel(t *testing.T) {
	assert.Equal(t, "", ParamsLabel(nil, num(5)))
	assert.Equal(t, "70B Dense", ParamsLabel(num(70), nil))
	assert.Equal(t, "70B Dense", ParamsLabel(num(70), num(70)))
	assert.Equal(t, "671B / 37B Active", ParamsLabel(num(671), num(37)))
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		v    float64
		prec int
		want string
	}{
		{74.2, 0, "74%"},
		{74.2, 1, "74.2%"},
		{75, 2, "75.00%"},
		{99.96, 1, "100.0%"},
		{0, -1, "0%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPercent(tt.v, tt.prec))
	}
}
