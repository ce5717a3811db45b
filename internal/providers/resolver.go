package providers

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/benchcard/benchcard/internal/models"
)

// Policy decides what happens when a fuzzy lookup hits more than one family.
type Policy int

const (
	// PolicyReject fails with an *AmbiguousProviderError.
	PolicyReject Policy = iota
	// PolicyFirst takes the earliest matching family in registry order.
	PolicyFirst
)

func (p Policy) String() string {
	switch p {
	case PolicyFirst:
		return "first"
	default:
		return "reject"
	}
}

// ParsePolicy maps the config values "reject" and "first" to a Policy.
// An empty string selects PolicyReject.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return PolicyReject, nil
	case "first":
		return PolicyFirst, nil
	}
	return PolicyReject, fmt.Errorf("unknown provider ambiguity policy %q (valid: reject, first)", s)
}

// AmbiguousProviderError is returned under PolicyReject when a provider key
// fuzzily matches more than one registry family.
type AmbiguousProviderError struct {
	Input   string
	Matches []string
}

func (e *AmbiguousProviderError) Error() string {
	return fmt.Sprintf("provider %q is ambiguous: matches %s", e.Input, strings.Join(e.Matches, ", "))
}

// Resolver resolves provider keys against custom providers and the built-in
// registry. It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	custom map[string]models.CustomProvider
	policy Policy
}

// NewResolver indexes custom providers by lower-cased key. Later duplicates
// lose to earlier ones; the validator rejects duplicates before this point.
func NewResolver(custom []models.CustomProvider, policy Policy) *Resolver {
	idx := make(map[string]models.CustomProvider, len(custom))
	for _, c := range custom {
		k := strings.ToLower(strings.TrimSpace(c.Key))
		if _, dup := idx[k]; dup || k == "" {
			continue
		}
		idx[k] = c
	}
	return &Resolver{custom: idx, policy: policy}
}

// Layer is one precedence level. Empty attributes defer to the next layer.
type Layer struct {
	Source models.StyleSource
	Color  string
	Icon   string
	Family string
}

// Precedence resolves each attribute independently from the first layer
// that supplies it.
func Precedence(layers ...Layer) models.ProviderStyle {
	var style models.ProviderStyle
	for _, l := range layers {
		if style.Color == "" && l.Color != "" {
			style.Color = l.Color
			style.ColorSource = l.Source
		}
		if style.Icon == "" && l.Icon != "" {
			style.Icon = l.Icon
			style.IconSource = l.Source
		}
		if style.Family == "" && l.Family != "" {
			style.Family = l.Family
		}
	}
	return style
}

// Resolve returns the style for a provider key using, in order, the custom
// providers, an exact registry match, a fuzzy registry match and finally a
// gray placeholder.
func (r *Resolver) Resolve(key string) (models.ProviderStyle, error) {
	k := strings.ToLower(strings.TrimSpace(key))

	var layers []Layer
	if c, ok := r.custom[k]; ok {
		layers = append(layers, Layer{Source: models.SourceCustom, Color: c.Color, Icon: c.IconDataURL})
		// An exact custom match outranks fuzzy matching; only an exact
		// registry entry may still supply the icon.
		if c.IconDataURL == "" {
			if f, ok := lookupExact(k); ok {
				layers = append(layers, familyLayer(f, models.SourceBuiltin))
			}
		}
	} else {
		builtin, err := r.builtin(key, k)
		if err != nil {
			return models.ProviderStyle{}, err
		}
		layers = append(layers, builtin...)
	}
	layers = append(layers, Layer{Source: models.SourcePlaceholder, Color: DefaultColor, Icon: PlaceholderIcon(key)})
	return Precedence(layers...), nil
}

func (r *Resolver) builtin(input, lower string) ([]Layer, error) {
	if lower == "" {
		return nil, nil
	}
	if f, ok := lookupExact(lower); ok {
		return []Layer{familyLayer(f, models.SourceBuiltin)}, nil
	}

	matches := lookupFuzzy(lower)
	if len(matches) == 0 {
		return nil, nil
	}
	first := matches[0].family
	var families int
	seen := map[string]bool{}
	for _, m := range matches {
		if !seen[m.family.Key] {
			seen[m.family.Key] = true
			families++
		}
	}
	if families > 1 && r.policy == PolicyReject {
		keys := make([]string, len(matches))
		for i, m := range matches {
			keys[i] = m.key
		}
		return nil, &AmbiguousProviderError{Input: input, Matches: keys}
	}
	return []Layer{familyLayer(first, models.SourceFuzzy)}, nil
}

func familyLayer(f Family, src models.StyleSource) Layer {
	return Layer{Source: src, Color: f.Color, Icon: f.Icon(), Family: f.Key}
}

// Override carries a model's own color and icon.
type Override struct {
	Color string
	Icon  string
}

// Effective applies a per-model override on top of a resolved style. Model
// values always win.
func Effective(override Override, resolved models.ProviderStyle) models.ProviderStyle {
	style := Precedence(
		Layer{Source: models.SourceModel, Color: override.Color, Icon: override.Icon},
		Layer{Source: resolved.ColorSource, Color: resolved.Color},
		Layer{Source: resolved.IconSource, Icon: resolved.Icon},
	)
	style.Family = resolved.Family
	return style
}

// PlaceholderIcon draws a gray circle holding the first two letters or digits
// of provider, upper-cased.
func PlaceholderIcon(provider string) string {
	return fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 48 48"><circle cx="24" cy="24" r="24" fill="%s"/>`+
			`<text x="24" y="24" dy="0.35em" text-anchor="middle" font-family="sans-serif" font-size="18" font-weight="600" fill="#FFFFFF">%s</text></svg>`,
		DefaultColor, Initials(provider))
}

// Initials returns the first two letters or digits of s, upper-cased, or "?"
// when s has none.
func Initials(s string) string {
	var b strings.Builder
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			n++
			if n == 2 {
				break
			}
		}
	}
	if n == 0 {
		return "?"
	}
	return b.String()
}
