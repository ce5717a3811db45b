package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benchcard/benchcard/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartYAML = `title: Coding Benchmark
subtitle: pass@1
showRankings: true
models:
  - model: openai/gpt-5
    percent: 61.5
  - model: anthropic/claude-sonnet-4
    positive: 74
    total: 100
  - model: qwen/qwen3-coder
    percent: 61.5
`

// runCLI executes the root command in a fresh temp directory holding the
// given files and returns stdout, stderr and the command error.
func runCLI(t *testing.T, files map[string]string, stdin string, args ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	t.Chdir(dir)

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRenderCommand_HTML(t *testing.T) {
	out, _, err := runCLI(t, map[string]string{"chart.yaml": chartYAML}, "", "render", "chart.yaml", "-o", "out/chart.html")
	require.NoError(t, err)
	assert.Contains(t, out, "chart.html")
	assert.Contains(t, out, "3 models")

	data, err := os.ReadFile(filepath.Join("out", "chart.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Coding Benchmark")
	assert.Contains(t, string(data), "<html")
}

func TestRootCommand_RenderShorthand(t *testing.T) {
	_, _, err := runCLI(t, map[string]string{"chart.yaml": chartYAML}, "", "chart.yaml", "-o", "chart.html")
	require.NoError(t, err)
	assert.FileExists(t, "chart.html")
}

func TestRenderCommand_InvalidInput(t *testing.T) {
	_, _, err := runCLI(t, map[string]string{"chart.yaml": "title: \"\"\nmodels: []\n"}, "", "render", "chart.yaml", "-o", "chart.html")
	require.Error(t, err)
	assert.Equal(t, ExitInputError, exitCode(err))
	assert.True(t, strings.HasPrefix(err.Error(), "chart.yaml:"), err.Error())
	assert.NoFileExists(t, "chart.html")
}

func TestRenderCommand_UnknownExtension(t *testing.T) {
	_, _, err := runCLI(t, map[string]string{"chart.yaml": chartYAML}, "", "render", "chart.yaml", "-o", "chart.gif")
	require.Error(t, err)
	assert.Equal(t, ExitError, exitCode(err))
}

func TestRenderCommand_Batch(t *testing.T) {
	files := map[string]string{
		"charts/a.yaml": chartYAML,
		"charts/b.yaml": "title: \"\"\nmodels:\n  - model: openai/gpt-5\n    percent: 10\n",
		"charts/c.yaml": strings.Replace(chartYAML, "Coding Benchmark", "Math Benchmark", 1),
	}
	out, stderr, err := runCLI(t, files, "", "render", "charts/*.yaml", "--out-dir", "site", "--format", "html", "--workers", "2")
	require.Error(t, err)
	assert.Equal(t, ExitInputError, exitCode(err))
	assert.Contains(t, err.Error(), "1 of 3 charts failed")

	assert.FileExists(t, filepath.Join("site", "a.html"))
	assert.FileExists(t, filepath.Join("site", "c.html"))
	assert.NoFileExists(t, filepath.Join("site", "b.html"))
	assert.Contains(t, out, "a.html")
	assert.Contains(t, stderr, "b.yaml")
	assert.Contains(t, stderr, "title")
}

func TestRenderCommand_OutputWithSeveralInputs(t *testing.T) {
	files := map[string]string{"a.yaml": chartYAML, "b.yaml": chartYAML}
	_, _, err := runCLI(t, files, "", "render", "a.yaml", "b.yaml", "-o", "x.html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--out-dir")
}

func TestRenderCommand_ProjectConfig(t *testing.T) {
	files := map[string]string{
		".benchcard.yaml": "output:\n  dir: build\n  format: html\n",
		"a.yaml":          chartYAML,
		"b.yaml":          chartYAML,
	}
	_, _, err := runCLI(t, files, "", "render", "a.yaml", "b.yaml")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join("build", "a.html"))
	assert.FileExists(t, filepath.Join("build", "b.html"))
}

func TestValidateCommand(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		out, _, err := runCLI(t, map[string]string{"chart.yaml": chartYAML}, "", "validate", "chart.yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "chart.yaml")
		assert.Contains(t, out, "(3 models)")
	})

	t.Run("invalid", func(t *testing.T) {
		files := map[string]string{
			"good.yaml": chartYAML,
			"bad.yaml":  "title: Bad\nmodels:\n  - model: openai/gpt-5\n    percent: 120\n",
		}
		out, _, err := runCLI(t, files, "", "validate", "good.yaml", "bad.yaml")
		require.Error(t, err)
		assert.Equal(t, ExitInputError, exitCode(err))
		assert.Contains(t, err.Error(), "1 of 2 files are invalid")
		assert.Contains(t, out, "bad.yaml:4:")
	})

	t.Run("all lists schema violations", func(t *testing.T) {
		files := map[string]string{"bad.yaml": "title: Bad\nmodels:\n  - model: openai/gpt-5\n    percent: 120\n"}
		out, _, err := runCLI(t, files, "", "validate", "--all", "bad.yaml")
		require.Error(t, err)
		audit, auditErr := validation.AuditFile("bad.yaml")
		require.NoError(t, auditErr)
		for _, a := range audit {
			assert.Contains(t, out, a)
		}
	})
}

func TestPreviewCommand(t *testing.T) {
	out, _, err := runCLI(t, map[string]string{"chart.yaml": chartYAML}, "", "preview", "chart.yaml", "--width", "70")
	require.NoError(t, err)
	assert.Contains(t, out, "Coding Benchmark")
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "74%")
}

func TestInspectCommand_JSON(t *testing.T) {
	out, _, err := runCLI(t, map[string]string{"chart.yaml": chartYAML}, "", "inspect", "chart.yaml", "--json")
	require.NoError(t, err)

	var got struct {
		Title  string `json:"title"`
		Models []struct {
			Provider string `json:"provider"`
			Rank     int    `json:"rank"`
		} `json:"models"`
		Layout struct {
			BackgroundWidth  float64 `json:"backgroundWidth"`
			BackgroundHeight float64 `json:"backgroundHeight"`
		} `json:"layout"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Coding Benchmark", got.Title)
	require.Len(t, got.Models, 3)
	assert.Equal(t, "anthropic", got.Models[0].Provider)
	assert.Equal(t, 1, got.Models[0].Rank)
	assert.Equal(t, 652.0, got.Layout.BackgroundWidth)
	assert.InDelta(t, got.Layout.BackgroundWidth*5/4, got.Layout.BackgroundHeight, 0.001)
}

func TestInspectCommand_Dump(t *testing.T) {
	out, _, err := runCLI(t, map[string]string{"chart.yaml": chartYAML}, "", "inspect", "chart.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Coding Benchmark")
	assert.Contains(t, out, "BackgroundWidth")
}

func TestProvidersCommand(t *testing.T) {
	out, _, err := runCLI(t, nil, "", "providers")
	require.NoError(t, err)
	assert.Contains(t, out, "anthropic")
	assert.Contains(t, out, "openai")
}

func TestProvidersResolveCommand(t *testing.T) {
	t.Run("builtin", func(t *testing.T) {
		out, _, err := runCLI(t, nil, "", "providers", "resolve", "OpenAI")
		require.NoError(t, err)
		assert.Contains(t, out, "provider: OpenAI")
		assert.Contains(t, out, "builtin")
	})

	t.Run("ambiguous", func(t *testing.T) {
		_, _, err := runCLI(t, nil, "", "providers", "resolve", "ai")
		require.Error(t, err)
		assert.Equal(t, ExitInputError, exitCode(err))
	})

	t.Run("ambiguous with first", func(t *testing.T) {
		out, _, err := runCLI(t, nil, "", "--ambiguity", "first", "providers", "resolve", "ai")
		require.NoError(t, err)
		assert.Contains(t, out, "fuzzy")
	})
}

func TestInitCommand(t *testing.T) {
	out, _, err := runCLI(t, nil, "Reasoning Benchmark\n\ny\n\n\n", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created chart.yaml")

	cfg, err := validation.LoadFile("chart.yaml", validation.ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Reasoning Benchmark", cfg.Title)
	assert.True(t, cfg.ShowRankings)
	assert.Len(t, cfg.Models, 3)
}

func TestInitCommand_RefusesOverwrite(t *testing.T) {
	files := map[string]string{"chart.yaml": "keep me\n"}
	_, _, err := runCLI(t, files, "Title\n\nn\n\n\n", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	data, readErr := os.ReadFile("chart.yaml")
	require.NoError(t, readErr)
	assert.Equal(t, "keep me\n", string(data))
}

func TestInitCommand_Force(t *testing.T) {
	files := map[string]string{"charts/bench.yaml": "keep me\n"}
	_, _, err := runCLI(t, files, "Title\n\nn\n\n\n", "init", "charts/bench.yaml", "--force")
	require.NoError(t, err)

	cfg, err := validation.LoadFile(filepath.Join("charts", "bench.yaml"), validation.ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Title", cfg.Title)
	assert.False(t, cfg.ShowRankings)
}

func TestCacheClearCommand(t *testing.T) {
	files := map[string]string{"cache/abc.json": "{}"}
	out, _, err := runCLI(t, files, "", "cache", "clear", "--cache-dir", "cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache cleared")
	assert.NoDirExists(t, "cache")
}

func TestCacheClearCommand_RefusesForeignFiles(t *testing.T) {
	files := map[string]string{"cache/notes.txt": "mine"}
	_, _, err := runCLI(t, files, "", "cache", "clear", "--cache-dir", "cache")
	require.Error(t, err)
	assert.FileExists(t, filepath.Join("cache", "notes.txt"))
}
