package assets

import "sort"

// DefaultFont is used when a chart names no font.
const DefaultFont = "inter"

// Font describes a selectable chart typeface.
type Font struct {
	Key    string
	Label  string
	Family string
}

var fonts = map[string]Font{
	"inter":          {Key: "inter", Label: "Inter", Family: `"Inter", ui-sans-serif, system-ui, sans-serif`},
	"geist":          {Key: "geist", Label: "Geist", Family: `"Geist", ui-sans-serif, system-ui, sans-serif`},
	"ibm-plex-sans":  {Key: "ibm-plex-sans", Label: "IBM Plex Sans", Family: `"IBM Plex Sans", ui-sans-serif, sans-serif`},
	"jetbrains-mono": {Key: "jetbrains-mono", Label: "JetBrains Mono", Family: `"JetBrains Mono", ui-monospace, monospace`},
	"space-grotesk":  {Key: "space-grotesk", Label: "Space Grotesk", Family: `"Space Grotesk", ui-sans-serif, sans-serif`},
	"system":         {Key: "system", Label: "System UI", Family: `system-ui, -apple-system, "Segoe UI", Roboto, sans-serif`},
}

// LookupFont returns the font for key and whether key was known. Unknown
// keys yield the default font.
func LookupFont(key string) (Font, bool) {
	if f, ok := fonts[key]; ok {
		return f, true
	}
	return fonts[DefaultFont], false
}

// FontKeys returns the known font keys in sorted order.
func FontKeys() []string {
	keys := make([]string, 0, len(fonts))
	for k := range fonts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
