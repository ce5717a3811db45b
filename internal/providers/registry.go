// Package providers maps the provider half of a "provider/name" model string
// to a brand color and icon.
package providers

import (
	"embed"
	"strings"
)

// DefaultColor is used when no layer supplies a color.
const DefaultColor = "#6B7280"

//go:embed icons/*.svg
var iconFS embed.FS

// Family is one built-in provider with every key it is known by.
type Family struct {
	Key     string
	Name    string
	Aliases []string
	Color   string
}

// Icon returns the family's embedded SVG markup.
func (f Family) Icon() string {
	data, err := iconFS.ReadFile("icons/" + f.Key + ".svg")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Keys returns the family key followed by its aliases.
func (f Family) Keys() []string {
	keys := make([]string, 0, len(f.Aliases)+1)
	keys = append(keys, f.Key)
	return append(keys, f.Aliases...)
}

// registry is ordered; fuzzy matching with PolicyFirst picks the earliest
// family in this list.
var registry = []Family{
	{Key: "anthropic", Name: "Anthropic", Aliases: []string{"claude"}, Color: "#D97757"},
	{Key: "openai", Name: "OpenAI", Color: "#10A37F"},
	{Key: "google", Name: "Google", Aliases: []string{"gemini"}, Color: "#4285F4"},
	{Key: "meta", Name: "Meta", Color: "#0668E1"},
	{Key: "mistral", Name: "Mistral AI", Color: "#FA520F"},
	{Key: "x-ai", Name: "xAI", Aliases: []string{"xai"}, Color: "#000000"},
	{Key: "z-ai", Name: "Z.ai", Aliases: []string{"zai"}, Color: "#2D2D2D"},
	{Key: "prime-intellect", Name: "Prime Intellect", Color: "#111827"},
	{Key: "qwen", Name: "Qwen", Color: "#615CED"},
	{Key: "deepseek", Name: "DeepSeek", Color: "#4D6BFE"},
	{Key: "cohere", Name: "Cohere", Color: "#39594D"},
}

// Families returns a copy of the built-in registry in match order.
func Families() []Family {
	out := make([]Family, len(registry))
	copy(out, registry)
	return out
}

// lookupExact finds the family that owns key, ignoring case.
func lookupExact(key string) (Family, bool) {
	for _, f := range registry {
		for _, k := range f.Keys() {
			if strings.EqualFold(k, key) {
				return f, true
			}
		}
	}
	return Family{}, false
}

type fuzzyMatch struct {
	family Family
	key    string
}

// lookupFuzzy returns every registry key that overlaps input. A key k
// matches input p when either one contains the other; a prefix match is a
// special case of containment.
func lookupFuzzy(input string) []fuzzyMatch {
	p := strings.ToLower(input)
	if p == "" {
		return nil
	}
	var matches []fuzzyMatch
	for _, f := range registry {
		for _, k := range f.Keys() {
			if strings.Contains(p, k) || strings.Contains(k, p) {
				matches = append(matches, fuzzyMatch{family: f, key: k})
			}
		}
	}
	return matches
}
