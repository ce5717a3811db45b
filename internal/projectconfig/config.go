// Package projectconfig provides the ProjectConfig struct and loader for
// .benchcard.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/benchcard/benchcard/internal/validation"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".benchcard.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultOutputDir    = "."
	DefaultOutputFormat = "html"

	DefaultExporter       = "auto"
	DefaultScale          = 2.0
	DefaultExportTimeout  = 30
	DefaultRenderWorkers  = 4
	DefaultAmbiguity      = "reject"
	DefaultCacheDir       = ".benchcard-cache"
	DefaultServerPort     = 3000
	DefaultServerHost     = "127.0.0.1"
	DefaultFormPrecision  = validation.FormPercentPrecision
	DefaultInputPrecision = validation.DefaultPercentPrecision
)

// OutputConfig holds where and how rendered files are written.
type OutputConfig struct {
	Dir              string `yaml:"dir,omitempty"`
	Format           string `yaml:"format,omitempty"`
	PercentPrecision *int   `yaml:"percent_precision,omitempty"`
}

// ExportConfig holds image export settings.
type ExportConfig struct {
	Exporter string  `yaml:"exporter,omitempty"`
	Browser  string  `yaml:"browser,omitempty"`
	Scale    float64 `yaml:"scale,omitempty"`
	Timeout  int     `yaml:"timeout,omitempty"`
	Workers  int     `yaml:"workers,omitempty"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// ServerConfig holds live-preview server settings.
type ServerConfig struct {
	Host             string `yaml:"host,omitempty"`
	Port             int    `yaml:"port,omitempty"`
	PercentPrecision *int   `yaml:"percent_precision,omitempty"`
}

// ProvidersConfig holds provider resolution settings.
type ProvidersConfig struct {
	Ambiguity string `yaml:"ambiguity,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .benchcard.yaml.
type ProjectConfig struct {
	Output    OutputConfig    `yaml:"output,omitempty"`
	Export    ExportConfig    `yaml:"export,omitempty"`
	Cache     CacheConfig     `yaml:"cache,omitempty"`
	Server    ServerConfig    `yaml:"server,omitempty"`
	Providers ProvidersConfig `yaml:"providers,omitempty"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `yaml:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Output: OutputConfig{
			Dir:              DefaultOutputDir,
			Format:           DefaultOutputFormat,
			PercentPrecision: intPtr(DefaultInputPrecision),
		},
		Export: ExportConfig{
			Exporter: DefaultExporter,
			Scale:    DefaultScale,
			Timeout:  DefaultExportTimeout,
			Workers:  DefaultRenderWorkers,
		},
		Cache: CacheConfig{
			Enabled: boolPtr(false),
			Dir:     DefaultCacheDir,
		},
		Server: ServerConfig{
			Host:             DefaultServerHost,
			Port:             DefaultServerPort,
			PercentPrecision: intPtr(DefaultFormPrecision),
		},
		Providers: ProvidersConfig{
			Ambiguity: DefaultAmbiguity,
		},
	}
}

// Load finds .benchcard.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	path, data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	mergeConfig(cfg, &fileCfg)
	cfg.Path = path
	return cfg, nil
}

// findConfigFile walks up from dir looking for .benchcard.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) (string, []byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Output
	if src.Output.Dir != "" {
		dst.Output.Dir = src.Output.Dir
	}
	if src.Output.Format != "" {
		dst.Output.Format = src.Output.Format
	}
	if src.Output.PercentPrecision != nil {
		dst.Output.PercentPrecision = src.Output.PercentPrecision
	}

	// Export
	if src.Export.Exporter != "" {
		dst.Export.Exporter = src.Export.Exporter
	}
	if src.Export.Browser != "" {
		dst.Export.Browser = src.Export.Browser
	}
	if src.Export.Scale != 0 {
		dst.Export.Scale = src.Export.Scale
	}
	if src.Export.Timeout != 0 {
		dst.Export.Timeout = src.Export.Timeout
	}
	if src.Export.Workers != 0 {
		dst.Export.Workers = src.Export.Workers
	}

	// Cache
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}

	// Server
	if src.Server.Host != "" {
		dst.Server.Host = src.Server.Host
	}
	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if src.Server.PercentPrecision != nil {
		dst.Server.PercentPrecision = src.Server.PercentPrecision
	}

	// Providers
	if src.Providers.Ambiguity != "" {
		dst.Providers.Ambiguity = src.Providers.Ambiguity
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *int {
	return &i
}
