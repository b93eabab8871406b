// Package deps performs preflight checks for the external binaries the
// decode pipeline shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"tagdock/internal/config"
)

// Requirement defines an external dependency the daemon relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Required lists the external binaries for the given configuration.
func Required(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "pdftocairo",
			Command:     cfg.Decode.PdftocairoBinary,
			Description: "Rasterizes the first PDF page before tag decoding",
		},
		{
			Name:        "zbarimg",
			Command:     cfg.Decode.ZbarimgBinary,
			Description: "Reads the tag symbol from raster images",
		},
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
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
