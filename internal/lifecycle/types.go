// Package lifecycle executes named provisioning and teardown plans with
// best-effort, fully-reported rollback: a failed step halts forward
// execution, previously succeeded steps are compensated in reverse order,
// and every compensation failure is surfaced to the caller.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/MAVRICK-1/kubestellar-mcp/internal/config"
)

// StepStatus is the terminal state of one step within a plan result.
type StepStatus string

const (
	StepSucceeded          StepStatus = "succeeded"
	StepFailed             StepStatus = "failed"
	StepSkipped            StepStatus = "skipped"
	StepCompensated        StepStatus = "compensated"
	StepCompensationFailed StepStatus = "compensation_failed"
)

// PlanStatus is the final verdict of a plan execution.
type PlanStatus string

const (
	PlanSucceeded PlanStatus = "succeeded"
	PlanFailed    PlanStatus = "failed"
)

// Env carries the resource handles produced by creation steps into the steps
// (and compensations) that depend on them. It is the only mutable state
// crossing step boundaries, and only the currently running step touches it.
type Env struct {
	Platform      config.Platform
	InstallerPath string   // temp path of the downloaded demo script
	Clusters      []string // clusters the plan provisioned or is tearing down
	Contexts      []string // kubeconfig contexts tied to those clusters
}

// Step is one unit of a plan: a forward action and an optional compensating
// action undoing it. A nil Compensate is an explicit decision that there is
// nothing to undo, not an oversight; such steps compensate trivially.
type Step struct {
	Name       string
	Run        func(ctx context.Context, env *Env) error
	Compensate func(ctx context.Context, env *Env) error
}

// StepOutcome records how one step ended.
type StepOutcome struct {
	Step   string     `json:"step"`
	Status StepStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// PlanResult is the complete, ordered outcome of a plan execution.
// CompensationFailures is never silently dropped; when rollback could not
// fully unwind, the operator sees exactly which undo actions need manual
// intervention.
type PlanResult struct {
	Plan                 string        `json:"plan"`
	Status               PlanStatus    `json:"status"`
	Outcomes             []StepOutcome `json:"outcomes"`
	CompensationFailures []string      `json:"compensation_failures,omitempty"`
}

// Plan is an ordered, pre-declared sequence of steps for one lifecycle
// operation. Plans are static; they are never assembled at execution time.
type Plan struct {
	name  string
	steps []Step
}

// NewPlan validates and freezes a plan. Validation failures are programming
// errors and the only errors the lifecycle package ever returns; execution
// itself always yields a PlanResult.
func NewPlan(name string, steps ...Step) (*Plan, error) {
	if name == "" {
		return nil, fmt.Errorf("plan has no name")
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("plan %q has no steps", name)
	}
	seen := make(map[string]bool, len(steps))
	for _, s := range steps {
		if s.Name == "" {
			return nil, fmt.Errorf("plan %q contains a step with no name", name)
		}
		if s.Run == nil {
			return nil, fmt.Errorf("step %q of plan %q has no forward action", s.Name, name)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicate step name %q in plan %q", s.Name, name)
		}
		seen[s.Name] = true
	}
	return &Plan{name: name, steps: append([]Step(nil), steps...)}, nil
}

// Name returns the plan's name.
func (p *Plan) Name() string { return p.name }

// Steps returns the plan's steps in execution order.
func (p *Plan) Steps() []Step { return append([]Step(nil), p.steps...) }
