// Package scoring turns validated chart input into ranked, display-ready
// rows.
package scoring

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/benchcard/benchcard/internal/models"
	"github.com/benchcard/benchcard/internal/providers"
	"github.com/benchcard/benchcard/internal/validation"
)

// ErrNoModels is returned when a config reaches the processor without rows.
var ErrNoModels = errors.New("models must contain at least one model")

// Process derives a ProcessedModel for every entry in cfg, sorts the result
// by percentage (highest first, ties in input order) and assigns competition
// ranks. Any per-model failure aborts the whole call.
func Process(cfg *models.InputConfig, policy providers.Policy) ([]models.ProcessedModel, error) {
	if cfg == nil || len(cfg.Models) == 0 {
		return nil, &validation.ValidationError{Path: "models", Message: "must contain at least one model", Err: ErrNoModels}
	}

	for i, cp := range cfg.CustomProviders {
		if cp.IconDataURL != "" && !validation.ValidIcon(cp.IconDataURL) {
			return nil, &validation.ValidationError{
				Path:    fmt.Sprintf("customProviders[%d].iconDataUrl", i),
				Message: "must be a data:image/svg+xml or data:image/png base64 data URL",
			}
		}
	}

	resolver := providers.NewResolver(cfg.CustomProviders, policy)
	out := make([]models.ProcessedModel, 0, len(cfg.Models))
	for i, entry := range cfg.Models {
		pm, err := processOne(i, entry, resolver)
		if err != nil {
			return nil, err
		}
		out = append(out, pm)
	}

	slices.SortStableFunc(out, func(a, b models.ProcessedModel) int {
		return cmp.Compare(b.Percentage, a.Percentage)
	})
	AssignRanks(out)
	return out, nil
}

func processOne(i int, entry models.ModelEntry, resolver *providers.Resolver) (models.ProcessedModel, error) {
	path := fmt.Sprintf("models[%d]", i)

	provider, name := SplitModel(entry.Model)
	if strings.TrimSpace(provider) == "" {
		return models.ProcessedModel{}, &validation.ValidationError{Path: path + ".model", Message: "must be in the form provider/name"}
	}

	pct, err := Percentage(entry)
	if err != nil {
		return models.ProcessedModel{}, &validation.ValidationError{Path: path, Message: err.Error(), Err: err}
	}

	if entry.Icon != "" && !validation.ValidIcon(entry.Icon) {
		return models.ProcessedModel{}, &validation.ValidationError{
			Path:    path + ".icon",
			Message: "must be inline SVG markup or a data:image/svg+xml or data:image/png base64 data URL",
		}
	}

	resolved, err := resolver.Resolve(provider)
	if err != nil {
		return models.ProcessedModel{}, &validation.ValidationError{Path: path + ".model", Message: err.Error(), Err: err}
	}
	style := providers.Effective(providers.Override{Color: entry.Color, Icon: entry.Icon}, resolved)

	return models.ProcessedModel{
		Entry:        entry,
		Index:        i,
		Provider:     provider,
		ModelName:    name,
		DisplayLabel: DisplayLabel(entry, provider, name),
		Percentage:   pct,
		Style:        style,
		ParamsLabel:  ParamsLabel(entry.TotalParams, entry.ActiveParams),
	}, nil
}

// SplitModel splits "provider/name" on the first slash. Further slashes stay
// in the name. Without a slash the whole string is the provider.
func SplitModel(model string) (provider, name string) {
	provider, name, _ = strings.Cut(model, "/")
	return provider, name
}

// Percentage returns the entry's score in [0, 100]. Fractions are not
// rounded here; rounding happens only when formatting.
func Percentage(entry models.ModelEntry) (float64, error) {
	switch {
	case entry.Percent != nil && (entry.Positive != nil || entry.Total != nil):
		return 0, errors.New("must specify either percent or positive/total, not both")
	case entry.Percent != nil:
		return *entry.Percent, nil
	case entry.Positive != nil && entry.Total != nil:
		if *entry.Total <= 0 {
			return 0, errors.New("total must be a positive integer")
		}
		return float64(*entry.Positive) / float64(*entry.Total) * 100, nil
	}
	return 0, errors.New("must specify a score: percent or positive/total")
}

// DisplayLabel picks displayName, then the model name, then the provider.
func DisplayLabel(entry models.ModelEntry, provider, name string) string {
	if s := strings.TrimSpace(entry.DisplayName); s != "" {
		return s
	}
	if name != "" {
		return name
	}
	return provider
}

// ParamsLabel renders parameter counts in billions, e.g. "70B Dense" or
// "671B / 37B Active". It is empty when total is unknown.
func ParamsLabel(total, active *int) string {
	if total == nil {
		return ""
	}
	if active == nil || *active == *total {
		return fmt.Sprintf("%dB Dense", *total)
	}
	return fmt.Sprintf("%dB / %dB Active", *total, *active)
}

// AssignRanks sets competition ranks on rows already sorted by percentage:
// equal percentages share a rank and the next distinct score takes its
// 1-based position, so scores 100,80,65,65,55 rank 1,2,3,3,5.
func AssignRanks(rows []models.ProcessedModel) {
	for i := range rows {
		if i > 0 && rows[i].Percentage == rows[i-1].Percentage {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
}

// FormatPercent renders a percentage with a fixed number of decimals.
func FormatPercent(v float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	return strconv.FormatFloat(v, 'f', precision, 64) + "%"
}
