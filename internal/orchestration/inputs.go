package orchestration

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/benchcard/benchcard/internal/export"
)

// ExpandInputs expands glob patterns among args into input paths. Plain
// paths pass through unchanged. Duplicates are dropped, keeping the first
// occurrence, and a pattern that matches nothing is an error.
func ExpandInputs(args []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[") {
			add(arg)
			continue
		}
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid input pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("input pattern %q matched no files", arg)
		}
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}

// PlanJobs maps each input to outDir/<input base name>.<format>. Two inputs
// that would write the same output file are an error.
func PlanJobs(inputs []string, outDir string, format export.Format) ([]Job, error) {
	owners := map[string]string{}
	jobs := make([]Job, 0, len(inputs))
	for _, in := range inputs {
		base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		out := filepath.Join(outDir, base+format.Ext())
		if prev, ok := owners[out]; ok {
			return nil, fmt.Errorf("inputs %q and %q would both write %s", prev, in, out)
		}
		owners[out] = in
		jobs = append(jobs, Job{Input: in, Output: out, Format: format})
	}
	return jobs, nil
}
