// Package deps checks that the external executables clipper drives are
// installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"clipper/internal/config"
)

// Requirement defines an external executable the pipeline relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description,omitempty"`
	Optional    bool   `json:"optional,omitempty"`
	Available   bool   `json:"available"`
	Path        string `json:"path,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// Requirements lists the tools named by cfg.
func Requirements(cfg *config.Config) []Requirement {
	tools := cfg.Tools
	return []Requirement{
		{Name: "FFmpeg", Command: tools.FFmpeg, Description: "Extracts audio, decodes frames, cuts and renders clips"},
		{Name: "FFprobe", Command: tools.FFprobe, Description: "Reads frame size and rate"},
		{Name: "uvx", Command: tools.UVX, Description: "Runs WhisperX to caption clips"},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch resolved, err := exec.LookPath(cmd); {
		case cmd == "":
			status.Detail = "command not configured"
		case err != nil:
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
		default:
			status.Available = true
			status.Path = resolved
		}
		results = append(results, status)
	}
	return results
}

// Missing returns the required dependencies that are unavailable.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			out = append(out, s)
		}
	}
	return out
}
