package models

// InputConfig is a validated benchmark chart description.
type InputConfig struct {
	Title            string           `mapstructure:"title" yaml:"title" json:"title"`
	Subtitle         string           `mapstructure:"subtitle" yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Description      string           `mapstructure:"description" yaml:"description,omitempty" json:"description,omitempty"`
	SponsoredBy      string           `mapstructure:"sponsoredBy" yaml:"sponsoredBy,omitempty" json:"sponsoredBy,omitempty"`
	ShowRankings     bool             `mapstructure:"showRankings" yaml:"showRankings,omitempty" json:"showRankings"`
	PercentPrecision int              `mapstructure:"percentPrecision" yaml:"percentPrecision,omitempty" json:"percentPrecision"`
	Font             string           `mapstructure:"font" yaml:"font,omitempty" json:"font,omitempty"`
	Models           []ModelEntry     `mapstructure:"models" yaml:"models" json:"models"`
	CustomProviders  []CustomProvider `mapstructure:"customProviders" yaml:"customProviders,omitempty" json:"customProviders,omitempty"`
}

// HasSubtitle reports whether the chart header carries a subtitle line.
func (c *InputConfig) HasSubtitle() bool {
	return c.Subtitle != ""
}

// HasFooter reports whether the chart carries a sponsor footer.
func (c *InputConfig) HasFooter() bool {
	return c.SponsoredBy != ""
}

// ModelEntry is one benchmark row as supplied by the caller. Exactly one of
// Percent or the Positive/Total pair is set.
type ModelEntry struct {
	Model        string   `mapstructure:"model" yaml:"model" json:"model"`
	DisplayName  string   `mapstructure:"displayName" yaml:"displayName,omitempty" json:"displayName,omitempty"`
	Percent      *float64 `mapstructure:"percent" yaml:"percent,omitempty" json:"percent,omitempty"`
	Positive     *int     `mapstructure:"positive" yaml:"positive,omitempty" json:"positive,omitempty"`
	Total        *int     `mapstructure:"total" yaml:"total,omitempty" json:"total,omitempty"`
	TotalParams  *int     `mapstructure:"totalParams" yaml:"totalParams,omitempty" json:"totalParams,omitempty"`
	ActiveParams *int     `mapstructure:"activeParams" yaml:"activeParams,omitempty" json:"activeParams,omitempty"`
	Color        string   `mapstructure:"color" yaml:"color,omitempty" json:"color,omitempty"`
	Icon         string   `mapstructure:"icon" yaml:"icon,omitempty" json:"icon,omitempty"`
}

// CustomProvider is a caller-defined provider style. Keys are matched
// case-insensitively and exactly, never fuzzily.
type CustomProvider struct {
	Key         string `mapstructure:"key" yaml:"key" json:"key"`
	Color       string `mapstructure:"color" yaml:"color" json:"color"`
	IconDataURL string `mapstructure:"iconDataUrl" yaml:"iconDataUrl,omitempty" json:"iconDataUrl,omitempty"`
}

// StyleSource identifies which precedence layer produced a style attribute.
type StyleSource string

const (
	SourceModel       StyleSource = "model"
	SourceCustom      StyleSource = "custom"
	SourceBuiltin     StyleSource = "builtin"
	SourceFuzzy       StyleSource = "fuzzy"
	SourcePlaceholder StyleSource = "placeholder"
)

// ProviderStyle is the resolved color and icon for a provider. Icon holds
// inline SVG markup or a data URL.
type ProviderStyle struct {
	Color       string      `json:"color"`
	Icon        string      `json:"icon"`
	ColorSource StyleSource `json:"colorSource"`
	IconSource  StyleSource `json:"iconSource"`
	// Family is the built-in registry family that matched, if any.
	Family string `json:"family,omitempty"`
}

// ProcessedModel is a ModelEntry with everything the renderer needs derived
// from it. It is built once per render call and never mutated afterwards.
type ProcessedModel struct {
	Entry        ModelEntry    `json:"entry"`
	Index        int           `json:"index"`
	Provider     string        `json:"provider"`
	ModelName    string        `json:"modelName"`
	DisplayLabel string        `json:"displayLabel"`
	Percentage   float64       `json:"percentage"`
	Style        ProviderStyle `json:"providerConfig"`
	Rank         int           `json:"rank"`
	ParamsLabel  string        `json:"paramsLabel,omitempty"`
}
