package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const validChartYAML = `title: Coding Benchmark
subtitle: pass@1 on 164 problems
showRankings: true
models:
  - model: anthropic/claude-sonnet-4
    percent: 74.2
  - model: openai/gpt-5
    positive: 75
    total: 100
customProviders:
  - key: acme
    color: "#112233"
`

const invalidChartYAML = `title: ""
percentPrecision: -1
models:
  - model: anthropic
    percent: 120
    positive: 3
  - model: openai/gpt-5
    color: red
customProviders:
  - key: acme
`

func TestAuditBytes_Valid(t *testing.T) {
	errs := AuditBytes([]byte(validChartYAML))
	require.Empty(t, errs, "valid chart should have no errors")
}

func TestAuditBytes_ReportsEveryViolation(t *testing.T) {
	errs := AuditBytes([]byte(invalidChartYAML))
	require.NotEmpty(t, errs, "invalid chart should have errors")

	joined := joinErrs(errs)
	require.Contains(t, joined, "/title")
	require.Contains(t, joined, "/percentPrecision")
	require.Contains(t, joined, "/models/0")
	require.Contains(t, joined, "/models/1/color")
	require.Contains(t, joined, "/customProviders/0")
}

func TestAuditBytes_YAMLSyntax(t *testing.T) {
	errs := AuditBytes([]byte("title: [unclosed"))
	require.Len(t, errs, 1)
	require.True(t, strings.HasPrefix(errs[0], "YAML parse error"))
}

func TestAuditBytes_JSONInput(t *testing.T) {
	errs := AuditBytes([]byte(`{"title": "T", "models": [{"model": "qwen/qwen3", "percent": 55}]}`))
	require.Empty(t, errs)
}

func TestCompiledSchema_Cached(t *testing.T) {
	a, err := compiledSchema()
	require.NoError(t, err)
	b, err := compiledSchema()
	require.NoError(t, err)
	require.Same(t, a, b)
}

func TestAuditFile_ResolvesIconFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acme.svg"), []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`), 0o644))
	path := filepath.Join(dir, "chart.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`title: T
models:
  - model: acme/one
    percent: 10
    icon: acme.svg
`), 0o644))

	errs, err := AuditFile(path)
	require.NoError(t, err)
	require.Empty(t, errs)
}

func TestAuditFile_Errors(t *testing.T) {
	_, err := AuditFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	dir := t.TempDir()
	path := filepath.Join(dir, "chart.yaml")
	require.NoError(t, os.WriteFile(path, []byte(invalidChartYAML), 0o644))
	errs, err := AuditFile(path)
	require.NoError(t, err)
	require.Contains(t, joinErrs(errs), "/percentPrecision")
}

func joinErrs(errs []string) string {
	result := ""
	for _, e := range errs {
		result += e + "\n"
	}
	return result
}
