// Package diagnostics runs a probe catalog and aggregates the outcomes into
// a single report. One broken probe can degrade the report but never crash
// it: every failure mode, including panics inside a classifier, is recovered
// into a probe result.
package diagnostics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MAVRICK-1/kubestellar-mcp/internal/execkit"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/probe"
	"github.com/MAVRICK-1/kubestellar-mcp/pkg/logging"
)

const defaultConcurrency = 4

// Engine executes probe catalogs. It holds no per-run state; a single Engine
// may serve concurrent runs.
type Engine struct {
	runner      execkit.Runner
	concurrency int
	verbose     bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithConcurrency bounds how many probes of one batch run in flight at once.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithVerbose keeps full multi-line remediation text in results. Without it,
// remediation is trimmed to its first line.
func WithVerbose(verbose bool) Option {
	return func(e *Engine) {
		e.verbose = verbose
	}
}

// NewEngine creates a diagnostics engine backed by the given command runner.
func NewEngine(runner execkit.Runner, opts ...Option) *Engine {
	e := &Engine{
		runner:      runner,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the catalog batch by batch. Batches run strictly sequentially;
// probes within a batch run concurrently up to the engine's limit. A batch is
// fully resolved before the next one starts, so dependency decisions always
// see final predecessor statuses. Run never returns an error: malformed
// catalogs are rejected at construction, and everything at execution time is
// captured in the report.
func (e *Engine) Run(ctx context.Context, catalog *probe.Catalog) probe.Report {
	statuses := make(map[string]probe.Status, catalog.Len())
	resultsByName := make(map[string]probe.Result, catalog.Len())

	cancelled := false
	for _, batch := range catalog.OrderedBatches() {
		if cancelled || ctx.Err() != nil {
			cancelled = true
			for _, p := range batch {
				r := skippedResult(p, "diagnostics run cancelled before this probe started")
				resultsByName[p.Name] = r
				statuses[p.Name] = r.Status
			}
			continue
		}

		e.runBatch(ctx, batch, statuses, resultsByName)
		if ctx.Err() != nil {
			cancelled = true
		}
	}

	// Assemble in catalog declaration order.
	results := make([]probe.Result, 0, catalog.Len())
	for _, p := range catalog.Probes() {
		results = append(results, resultsByName[p.Name])
	}

	report := probe.Report{
		Timestamp: time.Now(),
		Overall:   probe.Reduce(results),
		Results:   results,
	}
	logging.Info("diagnostics", "Run complete: %d probes, overall %s", len(results), report.Overall)
	return report
}

// runBatch resolves every probe of one batch, concurrently where executed.
func (e *Engine) runBatch(ctx context.Context, batch []probe.Probe, statuses map[string]probe.Status, resultsByName map[string]probe.Result) {
	results := make([]probe.Result, len(batch))
	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i, p := range batch {
		if blocked, blockers := e.isBlocked(p, statuses); blocked {
			results[i] = skippedResult(p, fmt.Sprintf("not run: prerequisite check(s) %s did not pass", strings.Join(blockers, ", ")))
			continue
		}

		i, p := i, p
		g.Go(func() error {
			results[i] = e.executeProbe(ctx, p)
			return nil
		})
	}

	// Probes never surface errors through the group; Wait only joins.
	_ = g.Wait()

	for i, p := range batch {
		statuses[p.Name] = results[i].Status
		resultsByName[p.Name] = results[i]
	}
}

// isBlocked applies the skip policy: a probe with predecessors runs only if
// at least one of them finished OK or DEGRADED. Skipped predecessors count as
// unsatisfied, so a failure at the root skips the whole downstream chain
// instead of producing a cascade of confusing failures.
func (e *Engine) isBlocked(p probe.Probe, statuses map[string]probe.Status) (bool, []string) {
	if len(p.Requires) == 0 {
		return false, nil
	}
	var blockers []string
	for _, dep := range p.Requires {
		if statuses[dep].Satisfied() {
			return false, nil
		}
		blockers = append(blockers, dep)
	}
	return true, blockers
}

// executeProbe runs one probe and converts every possible outcome into a
// result. An internal fault (panic in a classifier, a nil command) becomes a
// FAILED result for that probe, never an aborted run.
func (e *Engine) executeProbe(ctx context.Context, p probe.Probe) (result probe.Result) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("diagnostics", fmt.Errorf("%v", r), "Probe %s panicked", p.Name)
			result = probe.Result{
				Probe:       p.Name,
				Category:    p.Category,
				Status:      probe.StatusFailed,
				Summary:     "internal error while running this check",
				Remediation: fmt.Sprintf("unexpected fault in probe %s: %v; re-run with verbose logging and report the issue", p.Name, r),
			}
			result.Remediation = e.trimRemediation(result.Remediation)
		}
	}()

	cmdResult := e.runner.Run(ctx, p.Command)

	var finding probe.Finding
	switch {
	case cmdResult.TimedOut:
		finding = probe.Finding{
			Status:      probe.StatusFailed,
			Summary:     fmt.Sprintf("%s did not respond in time", p.Command.Binary),
			Remediation: fmt.Sprintf("operation timed out after %s; check that %s is responsive and retry", p.Command.Timeout, p.Command.Binary),
		}
	case cmdResult.Cancelled:
		finding = probe.Finding{
			Status:      probe.StatusFailed,
			Summary:     "check cancelled",
			Remediation: "the diagnostics run was cancelled before this check completed",
		}
	default:
		finding = p.Classify(cmdResult)
	}

	if finding.Status == probe.StatusOK {
		finding.Remediation = ""
	}

	return probe.Result{
		Probe:       p.Name,
		Category:    p.Category,
		Status:      finding.Status,
		Summary:     finding.Summary,
		Remediation: e.trimRemediation(finding.Remediation),
		Output:      excerpt(cmdResult),
		ElapsedMS:   cmdResult.Elapsed.Milliseconds(),
	}
}

func (e *Engine) trimRemediation(remediation string) string {
	if e.verbose || remediation == "" {
		return remediation
	}
	if idx := strings.IndexByte(remediation, '\n'); idx >= 0 {
		return remediation[:idx]
	}
	return remediation
}

func skippedResult(p probe.Probe, remediation string) probe.Result {
	return probe.Result{
		Probe:       p.Name,
		Category:    p.Category,
		Status:      probe.StatusSkipped,
		Summary:     "skipped",
		Remediation: remediation,
	}
}

const excerptLimit = 400

// excerpt keeps a short slice of the command output for the report; stderr
// wins when the command failed since that is where the tools explain why.
func excerpt(r execkit.Result) string {
	out := strings.TrimSpace(r.Stdout)
	if r.ExitCode != 0 && strings.TrimSpace(r.Stderr) != "" {
		out = strings.TrimSpace(r.Stderr)
	}
	if len(out) > excerptLimit {
		out = out[:excerptLimit] + "…"
	}
	return out
}
