package preflight

import (
	"context"
	"fmt"

	"clipper/internal/config"
	"clipper/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Report is the full preflight outcome.
type Report struct {
	OK           bool          `json:"ok"`
	Dependencies []deps.Status `json:"dependencies"`
	Checks       []Result      `json:"checks"`
}

// RunAll checks the configured tools and the data layout.
func RunAll(_ context.Context, cfg *config.Config) Report {
	if cfg == nil {
		return Report{}
	}
	report := Report{
		Dependencies: deps.CheckBinaries(deps.Requirements(cfg)),
		Checks: []Result{
			CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
			CheckDirectoryAccess("Clips directory", cfg.ClipsDir()),
			CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
			CheckFreeSpace("Free space", cfg.Paths.DataDir, MinFreeBytes),
		},
	}
	report.OK = len(deps.Missing(report.Dependencies)) == 0
	for _, check := range report.Checks {
		if !check.Passed {
			report.OK = false
		}
	}
	return report
}

// Failures returns one line per failed dependency or check.
func (r Report) Failures() []string {
	var out []string
	for _, dep := range deps.Missing(r.Dependencies) {
		out = append(out, fmt.Sprintf("%s: %s", dep.Name, dep.Detail))
	}
	for _, check := range r.Checks {
		if !check.Passed {
			out = append(out, fmt.Sprintf("%s: %s", check.Name, check.Detail))
		}
	}
	return out
}
