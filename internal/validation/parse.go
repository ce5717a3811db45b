// Package validation turns loosely-typed chart documents (YAML or JSON) into
// a models.InputConfig, stopping at the first violation in document order
// with a field-path qualified error.
package validation

import (
	"encoding/base64"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/benchcard/benchcard/internal/assets"
	"github.com/benchcard/benchcard/internal/models"
	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPercentPrecision is the percentPrecision applied by the CLI.
	DefaultPercentPrecision = 0
	// FormPercentPrecision is the percentPrecision applied by the live-preview form.
	FormPercentPrecision = 1
)

// ParseOptions controls defaults and preprocessing applied by Parse.
type ParseOptions struct {
	// DefaultPercentPrecision applies when the document omits percentPrecision.
	DefaultPercentPrecision int

	// IconDir enables resolving file-referenced icons relative to it before
	// validation. When empty, icons must already be inline.
	IconDir string
}

var (
	hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	dataURLPattern  = regexp.MustCompile(`^data:image/(?:svg\+xml|png);base64,([A-Za-z0-9+/=\s]+)$`)
)

// LoadFile reads and parses the chart document at path. Icon file references
// are resolved relative to the document's directory unless opts.IconDir is set.
func LoadFile(path string, opts ParseOptions) (*models.InputConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if opts.IconDir == "" {
		opts.IconDir = filepath.Dir(path)
	}
	return Parse(data, opts)
}

// Parse validates a chart document and decodes it into an InputConfig.
// The returned error is a *ParseError for malformed documents or a
// *ValidationError naming the first offending field.
func Parse(data []byte, opts ParseOptions) (*models.InputConfig, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, newParseError(err)
	}

	root := documentRoot(&doc)
	if root == nil {
		return nil, &ValidationError{Path: "title", Line: 1, Message: "is required"}
	}
	if root.Kind != yaml.MappingNode {
		return nil, &ValidationError{Line: root.Line, Message: "configuration must be a mapping of fields"}
	}

	if opts.IconDir != "" {
		if err := resolveIconFiles(root, opts.IconDir); err != nil {
			return nil, err
		}
	}

	c := &checker{opts: opts}
	checked, err := c.checkRoot(root)
	if err != nil {
		return nil, err
	}

	var cfg models.InputConfig
	if err := decodeChecked(checked, &cfg); err != nil {
		return nil, fmt.Errorf("decoding checked configuration: %w", err)
	}
	return &cfg, nil
}

// decodeChecked copies the normalized values gathered by the checker into
// the typed configuration.
func decodeChecked(in map[string]any, out *models.InputConfig) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

type checker struct {
	opts ParseOptions
}

func (c *checker) checkRoot(root *yaml.Node) (map[string]any, error) {
	out := map[string]any{
		"percentPrecision": c.opts.DefaultPercentPrecision,
		"showRankings":     false,
	}

	var sawTitle, sawModels bool
	for _, f := range fields(root) {
		switch f.key {
		case "title":
			s, ok := stringValue(f.value)
			if !ok {
				return nil, fieldErr("title", f.value, "must be a string")
			}
			if strings.TrimSpace(s) == "" {
				return nil, fieldErr("title", f.value, "must not be empty")
			}
			out["title"] = s
			sawTitle = true
		case "subtitle", "description", "sponsoredBy", "font":
			if isNull(f.value) {
				continue
			}
			s, ok := stringValue(f.value)
			if !ok {
				return nil, fieldErr(f.key, f.value, "must be a string")
			}
			out[f.key] = s
			if f.key == "font" {
				if _, known := assets.LookupFont(s); !known {
					return nil, fieldErr("font", f.value, "must be one of "+strings.Join(assets.FontKeys(), ", "))
				}
			}
		case "percentPrecision":
			if isNull(f.value) {
				continue
			}
			n, ok := intValue(f.value)
			if !ok || n < 0 {
				return nil, fieldErr(f.key, f.value, "must be a non-negative integer")
			}
			out[f.key] = n
		case "showRankings":
			if isNull(f.value) {
				continue
			}
			b, ok := boolValue(f.value)
			if !ok {
				return nil, fieldErr(f.key, f.value, "must be a boolean")
			}
			out[f.key] = b
		case "customProviders":
			if isNull(f.value) {
				continue
			}
			list, err := c.checkCustomProviders(f.value)
			if err != nil {
				return nil, err
			}
			out[f.key] = list
		case "models":
			sawModels = true
			list, err := c.checkModels(f.value)
			if err != nil {
				return nil, err
			}
			out[f.key] = list
		}
	}

	if !sawTitle {
		return nil, &ValidationError{Path: "title", Line: root.Line, Message: "is required"}
	}
	if !sawModels {
		return nil, &ValidationError{Path: "models", Line: root.Line, Message: "is required"}
	}
	return out, nil
}

func (c *checker) checkModels(n *yaml.Node) ([]any, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, fieldErr("models", n, "must be an array")
	}
	if len(n.Content) == 0 {
		return nil, fieldErr("models", n, "must contain at least one model")
	}

	items := make([]any, 0, len(n.Content))
	for i, item := range n.Content {
		m, err := c.checkModel(i, resolveAlias(item))
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, nil
}

func (c *checker) checkModel(i int, n *yaml.Node) (map[string]any, error) {
	path := fmt.Sprintf("models[%d]", i)
	if n.Kind != yaml.MappingNode {
		return nil, fieldErr(path, n, "must be an object")
	}

	out := map[string]any{}
	var (
		sawModel bool
		percent  *float64
		positive *int
		total    *int
	)

	for _, f := range fields(n) {
		fp := path + "." + f.key
		if isNull(f.value) && f.key != "model" {
			continue
		}
		switch f.key {
		case "model":
			s, ok := stringValue(f.value)
			if !ok || strings.TrimSpace(s) == "" {
				return nil, fieldErr(fp, f.value, "must be a non-empty string")
			}
			provider, _, found := strings.Cut(s, "/")
			if !found || strings.TrimSpace(provider) == "" {
				return nil, fieldErr(fp, f.value, "must be in the form provider/name")
			}
			out[f.key] = s
			sawModel = true
		case "displayName":
			s, ok := stringValue(f.value)
			if !ok {
				return nil, fieldErr(fp, f.value, "must be a string")
			}
			out[f.key] = s
		case "percent":
			v, ok := numberValue(f.value)
			if !ok || v < 0 || v > 100 {
				return nil, fieldErr(fp, f.value, "must be a number between 0 and 100")
			}
			percent = &v
			out[f.key] = v
		case "positive":
			v, ok := intValue(f.value)
			if !ok || v < 0 {
				return nil, fieldErr(fp, f.value, "must be a non-negative integer")
			}
			positive = &v
			out[f.key] = v
		case "total", "totalParams", "activeParams":
			v, ok := intValue(f.value)
			if !ok || v <= 0 {
				return nil, fieldErr(fp, f.value, "must be a positive integer")
			}
			if f.key == "total" {
				total = &v
			}
			out[f.key] = v
		case "color":
			s, ok := stringValue(f.value)
			if !ok || !hexColorPattern.MatchString(s) {
				return nil, fieldErr(fp, f.value, "must be a hex color in the form #RRGGBB")
			}
			out[f.key] = s
		case "icon":
			s, ok := stringValue(f.value)
			if !ok || !ValidIcon(s) {
				return nil, fieldErr(fp, f.value, "must be inline SVG markup or a data:image/svg+xml or data:image/png base64 data URL")
			}
			out[f.key] = strings.TrimSpace(s)
		}
	}

	if !sawModel {
		return nil, fieldErr(path+".model", n, "is required")
	}

	hasFraction := positive != nil || total != nil
	switch {
	case percent != nil && hasFraction:
		return nil, fieldErr(path, n, "must specify either percent or positive/total, not both")
	case percent == nil && !hasFraction:
		return nil, fieldErr(path, n, "must specify a score: percent or positive/total")
	case hasFraction && total == nil:
		return nil, fieldErr(path+".total", n, "is required when positive is set")
	case hasFraction && positive == nil:
		return nil, fieldErr(path+".positive", n, "is required when total is set")
	case hasFraction && *positive > *total:
		return nil, fieldErr(path+".positive", n, "must not exceed total")
	}
	return out, nil
}

func (c *checker) checkCustomProviders(n *yaml.Node) ([]any, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, fieldErr("customProviders", n, "must be an array")
	}

	seen := make(map[string]int, len(n.Content))
	items := make([]any, 0, len(n.Content))
	for i, item := range n.Content {
		item = resolveAlias(item)
		path := fmt.Sprintf("customProviders[%d]", i)
		if item.Kind != yaml.MappingNode {
			return nil, fieldErr(path, item, "must be an object")
		}

		out := map[string]any{}
		var keyNode *yaml.Node
		for _, f := range fields(item) {
			fp := path + "." + f.key
			switch f.key {
			case "key":
				s, ok := stringValue(f.value)
				if !ok || strings.TrimSpace(s) == "" {
					return nil, fieldErr(fp, f.value, "must be a non-empty string")
				}
				out[f.key] = strings.TrimSpace(s)
				keyNode = f.value
			case "color":
				s, ok := stringValue(f.value)
				if !ok || !hexColorPattern.MatchString(s) {
					return nil, fieldErr(fp, f.value, "must be a hex color in the form #RRGGBB")
				}
				out[f.key] = s
			case "iconDataUrl":
				if isNull(f.value) {
					continue
				}
				s, ok := stringValue(f.value)
				if !ok || !ValidIcon(s) {
					return nil, fieldErr(fp, f.value, "must be a data:image/svg+xml or data:image/png base64 data URL")
				}
				out[f.key] = strings.TrimSpace(s)
			}
		}

		if keyNode == nil {
			return nil, fieldErr(path+".key", item, "is required")
		}
		if _, ok := out["color"]; !ok {
			return nil, fieldErr(path+".color", item, "is required")
		}

		lower := strings.ToLower(out["key"].(string))
		if j, dup := seen[lower]; dup {
			return nil, fieldErr(path+".key", keyNode, fmt.Sprintf("duplicates customProviders[%d].key", j))
		}
		seen[lower] = i
		items = append(items, out)
	}
	return items, nil
}

// ValidIcon reports whether s is inline SVG markup or a base64 SVG/PNG data URL
// with a decodable payload.
func ValidIcon(s string) bool {
	v := strings.TrimSpace(s)
	if strings.HasPrefix(v, "<") {
		return strings.Contains(strings.ToLower(v), "<svg")
	}
	m := dataURLPattern.FindStringSubmatch(v)
	if m == nil {
		return false
	}
	payload := strings.Join(strings.Fields(m[1]), "")
	_, err := base64.StdEncoding.DecodeString(payload)
	return err == nil
}

// resolveIconFiles replaces file-referenced icons in the document tree with
// their inline content.
func resolveIconFiles(root *yaml.Node, dir string) error {
	for _, f := range fields(root) {
		var attr string
		switch f.key {
		case "models":
			attr = "icon"
		case "customProviders":
			attr = "iconDataUrl"
		default:
			continue
		}
		if f.value.Kind != yaml.SequenceNode {
			continue
		}
		for i, item := range f.value.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.MappingNode {
				continue
			}
			for _, g := range fields(item) {
				if g.key != attr {
					continue
				}
				s, ok := stringValue(g.value)
				if !ok || strings.TrimSpace(s) == "" || assets.IsInline(s) {
					continue
				}
				resolved, err := assets.ResolveIcon(strings.TrimSpace(s), dir)
				if err != nil {
					return &ValidationError{
						Path:    fmt.Sprintf("%s[%d].%s", f.key, i, attr),
						Line:    g.value.Line,
						Message: "could not be resolved: " + err.Error(),
					}
				}
				g.value.Value = resolved
				g.value.Style = 0
			}
		}
	}
	return nil
}

type field struct {
	key   string
	value *yaml.Node
}

// fields returns the key/value pairs of a mapping node in document order.
func fields(n *yaml.Node) []field {
	out := make([]field, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, field{key: n.Content[i].Value, value: resolveAlias(n.Content[i+1])})
	}
	return out
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil
		}
		return resolveAlias(doc.Content[0])
	}
	if doc.Kind == 0 {
		return nil
	}
	return resolveAlias(doc)
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func fieldErr(path string, n *yaml.Node, msg string) *ValidationError {
	line := 0
	if n != nil {
		line = n.Line
	}
	return &ValidationError{Path: path, Line: line, Message: msg}
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func stringValue(n *yaml.Node) (string, bool) {
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" {
		return "", false
	}
	return n.Value, true
}

func boolValue(n *yaml.Node) (bool, bool) {
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!bool" {
		return false, false
	}
	var b bool
	if err := n.Decode(&b); err != nil {
		return false, false
	}
	return b, true
}

func numberValue(n *yaml.Node) (float64, bool) {
	if n.Kind != yaml.ScalarNode {
		return 0, false
	}
	if tag := n.ShortTag(); tag != "!!int" && tag != "!!float" {
		return 0, false
	}
	var f float64
	if err := n.Decode(&f); err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// intValue accepts YAML integers and floats with an integral value, so that
// JSON producers writing 75.0 are treated like 75.
func intValue(n *yaml.Node) (int, bool) {
	if n.Kind != yaml.ScalarNode {
		return 0, false
	}
	switch n.ShortTag() {
	case "!!int":
		var v int
		if err := n.Decode(&v); err != nil {
			return 0, false
		}
		return v, true
	case "!!float":
		f, ok := numberValue(n)
		if !ok || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			return 0, false
		}
		return int(f), true
	}
	return 0, false
}
