// Package probe defines the diagnostic probe model: a probe is one bounded
// external check that classifies its outcome into a tri-state status, and a
// catalog is a fixed, dependency-ordered set of probes.
package probe

import (
	"time"

	"github.com/MAVRICK-1/kubestellar-mcp/internal/execkit"
)

// Status is the tri-state outcome of an executed probe. Skipped marks probes
// whose predecessors all failed and that were therefore never run.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusFailed   Status = "failed"
	StatusSkipped  Status = "skipped"
)

// severity orders statuses for the overall-status reduction. Skipped never
// drives the overall status on its own; the failure that caused the skip does.
func (s Status) severity() int {
	switch s {
	case StatusFailed:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}

// Worse returns the more severe of two statuses.
func (s Status) Worse(other Status) Status {
	if other.severity() > s.severity() {
		return other
	}
	return s
}

// Satisfied reports whether this status satisfies a dependent probe's
// predecessor requirement. A skipped predecessor does not.
func (s Status) Satisfied() bool {
	return s == StatusOK || s == StatusDegraded
}

// Category groups probes; the catalog's partial order runs between
// categories (tooling before connectivity before components before inventory).
type Category string

const (
	CategoryTooling      Category = "tooling"
	CategoryConnectivity Category = "connectivity"
	CategoryComponents   Category = "components"
	CategoryInventory    Category = "inventory"
)

// Finding is a classifier's verdict on a command outcome.
type Finding struct {
	Status      Status
	Summary     string
	Remediation string // required when Status != StatusOK
}

// Probe is one bounded external check. Immutable once registered in a catalog.
type Probe struct {
	Name     string
	Category Category
	Requires []string // predecessor probe names; all must be in the catalog

	Command  execkit.Command
	Classify func(execkit.Result) Finding
}

// Result is the immutable outcome of one probe execution (or skip).
type Result struct {
	Probe       string   `json:"probe"`
	Category    Category `json:"category"`
	Status      Status   `json:"status"`
	Summary     string   `json:"summary"`
	Remediation string   `json:"remediation,omitempty"`
	Output      string   `json:"output,omitempty"`
	ElapsedMS   int64    `json:"elapsed_ms"`
}

// Report is the aggregated outcome of one diagnostics run. Results keep the
// catalog's declaration order.
type Report struct {
	Timestamp time.Time `json:"timestamp"`
	Overall   Status    `json:"overall"`
	Results   []Result  `json:"results"`
}

// Reduce computes the overall status: failed if any result failed, else
// degraded if any degraded, else ok. Skipped results carry no weight; the
// report can never be better than the worst executed probe.
func Reduce(results []Result) Status {
	overall := StatusOK
	for _, r := range results {
		overall = overall.Worse(r.Status)
	}
	return overall
}
