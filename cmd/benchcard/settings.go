package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/benchcard/benchcard/internal/cache"
	"github.com/benchcard/benchcard/internal/export"
	"github.com/benchcard/benchcard/internal/orchestration"
	"github.com/benchcard/benchcard/internal/projectconfig"
	"github.com/benchcard/benchcard/internal/providers"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command-line flags to settings keys. Only flags that exist
// on the running command are bound.
var flagKeys = map[string]string{
	"format":    "output.format",
	"out-dir":   "output.dir",
	"precision": "output.percent_precision",
	"exporter":  "export.exporter",
	"browser":   "export.browser",
	"scale":     "export.scale",
	"timeout":   "export.timeout",
	"workers":   "export.workers",
	"cache":     "cache.enabled",
	"cache-dir": "cache.dir",
	"host":      "server.host",
	"port":      "server.port",
	"ambiguity": "providers.ambiguity",
}

// settings layers flags over BENCHCARD_* environment variables over the
// project file over built-in defaults.
type settings struct {
	v       *viper.Viper
	project *projectconfig.ProjectConfig
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	pc, err := projectconfig.Load(wd)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("BENCHCARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("output.dir", pc.Output.Dir)
	v.SetDefault("output.format", pc.Output.Format)
	v.SetDefault("output.percent_precision", *pc.Output.PercentPrecision)
	v.SetDefault("export.exporter", pc.Export.Exporter)
	v.SetDefault("export.browser", pc.Export.Browser)
	v.SetDefault("export.scale", pc.Export.Scale)
	v.SetDefault("export.timeout", pc.Export.Timeout)
	v.SetDefault("export.workers", pc.Export.Workers)
	v.SetDefault("cache.enabled", *pc.Cache.Enabled)
	v.SetDefault("cache.dir", pc.Cache.Dir)
	v.SetDefault("server.host", pc.Server.Host)
	v.SetDefault("server.port", pc.Server.Port)
	v.SetDefault("server.percent_precision", *pc.Server.PercentPrecision)
	v.SetDefault("providers.ambiguity", pc.Providers.Ambiguity)

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
			bindErr = v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return nil, fmt.Errorf("binding flags: %w", bindErr)
	}

	if pc.Path != "" {
		// Relative directories in the project file are relative to it.
		base := filepath.Dir(pc.Path)
		for _, key := range []string{"output.dir", "cache.dir"} {
			if !isOverridden(cmd, v, key) {
				if p := v.GetString(key); p != "" && !filepath.IsAbs(p) {
					v.SetDefault(key, filepath.Join(base, p))
				}
			}
		}
	}

	return &settings{v: v, project: pc}, nil
}

// isOverridden reports whether key was set by a flag or the environment.
func isOverridden(cmd *cobra.Command, v *viper.Viper, key string) bool {
	for flag, k := range flagKeys {
		if k == key {
			if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
				return true
			}
		}
	}
	_, ok := os.LookupEnv("BENCHCARD_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	return ok
}

func (s *settings) policy() (providers.Policy, error) {
	return providers.ParsePolicy(s.v.GetString("providers.ambiguity"))
}

func (s *settings) format() (export.Format, error) {
	return export.ParseFormat(s.v.GetString("output.format"))
}

func (s *settings) outDir() string {
	return s.v.GetString("output.dir")
}

func (s *settings) exporter() (export.Exporter, error) {
	return export.New(export.Config{
		Kind:        s.v.GetString("export.exporter"),
		BrowserPath: s.v.GetString("export.browser"),
		Timeout:     time.Duration(s.v.GetInt("export.timeout")) * time.Second,
	})
}

func (s *settings) cache() *cache.Cache {
	if !s.v.GetBool("cache.enabled") {
		return nil
	}
	return cache.New(s.v.GetString("cache.dir"))
}

func (s *settings) cacheDir() string {
	return s.v.GetString("cache.dir")
}

func (s *settings) formPrecision() int {
	return s.v.GetInt("server.percent_precision")
}

// generator builds a Generator from the layered settings. needImages
// selects an exporter; html-only work never probes for a browser.
func (s *settings) generator(needImages bool, extra ...orchestration.GeneratorOption) (*orchestration.Generator, error) {
	policy, err := s.policy()
	if err != nil {
		return nil, err
	}
	precision := s.v.GetInt("output.percent_precision")
	if precision < 0 {
		return nil, errors.New("percent precision must not be negative")
	}

	opts := []orchestration.GeneratorOption{
		orchestration.WithPolicy(policy),
		orchestration.WithPercentPrecision(precision),
		orchestration.WithScale(s.v.GetFloat64("export.scale")),
		orchestration.WithWorkers(s.v.GetInt("export.workers")),
	}
	if needImages {
		exp, err := s.exporter()
		if err != nil {
			return nil, err
		}
		opts = append(opts, orchestration.WithExporter(exp))
	}
	if c := s.cache(); c != nil {
		opts = append(opts, orchestration.WithCache(c))
	}
	return orchestration.NewGenerator(append(opts, extra...)...), nil
}
