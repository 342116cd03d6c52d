package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/MAVRICK-1/kubestellar-mcp/pkg/logging"
)

// compensationTimeout bounds the rollback phase when the caller's context is
// already dead; partially provisioned environments must still be unwound.
const compensationTimeout = 10 * time.Minute

// Orchestrator executes plans. Steps run strictly sequentially because later
// steps depend on side effects (a running cluster, a downloaded installer)
// produced by earlier ones.
type Orchestrator struct{}

// NewOrchestrator creates a plan orchestrator.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{}
}

// Execute runs the plan's steps in order. The first failure halts forward
// execution, marks the remaining steps skipped, and compensates every
// previously succeeded step in reverse order. Compensation is best effort:
// one failed undo never stops the unwinding of earlier steps, and every
// compensation failure is reported in the result.
func (o *Orchestrator) Execute(ctx context.Context, plan *Plan, env *Env) PlanResult {
	steps := plan.Steps()
	outcomes := make([]StepOutcome, len(steps))

	logging.Info("lifecycle", "Executing plan %s (%d steps)", plan.Name(), len(steps))

	failedAt := -1
	for i, step := range steps {
		if failedAt >= 0 {
			outcomes[i] = StepOutcome{Step: step.Name, Status: StepSkipped}
			continue
		}

		err := runStep(ctx, step, env)
		if err != nil {
			logging.Error("lifecycle", err, "Step %s of plan %s failed", step.Name, plan.Name())
			outcomes[i] = StepOutcome{Step: step.Name, Status: StepFailed, Error: err.Error()}
			failedAt = i
			continue
		}
		logging.Debug("lifecycle", "Step %s of plan %s succeeded", step.Name, plan.Name())
		outcomes[i] = StepOutcome{Step: step.Name, Status: StepSucceeded}
	}

	result := PlanResult{
		Plan:     plan.Name(),
		Status:   PlanSucceeded,
		Outcomes: outcomes,
	}
	if failedAt < 0 {
		return result
	}
	result.Status = PlanFailed

	// Rollback must proceed even when the caller's context is cancelled;
	// abandoning it would leave the environment silently half-applied.
	compCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	for i := failedAt - 1; i >= 0; i-- {
		step := steps[i]
		if step.Compensate == nil {
			// Nothing to undo for this step; recorded as compensated so the
			// operator sees the rollback reached it.
			outcomes[i].Status = StepCompensated
			continue
		}
		if err := compensateStep(compCtx, step, env); err != nil {
			logging.Error("lifecycle", err, "Compensation for step %s of plan %s failed", step.Name, plan.Name())
			outcomes[i].Status = StepCompensationFailed
			outcomes[i].Error = err.Error()
			result.CompensationFailures = append(result.CompensationFailures,
				fmt.Sprintf("%s: %v", step.Name, err))
			continue
		}
		logging.Info("lifecycle", "Compensated step %s of plan %s", step.Name, plan.Name())
		outcomes[i].Status = StepCompensated
	}

	return result
}

// runStep invokes a forward action, recovering panics into step failures so
// a broken step degrades the plan result instead of crashing the process.
func runStep(ctx context.Context, step Step, env *Env) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step %s panicked: %v", step.Name, r)
		}
	}()
	if ctx.Err() != nil {
		return fmt.Errorf("plan cancelled before step %s started: %w", step.Name, ctx.Err())
	}
	return step.Run(ctx, env)
}

func compensateStep(ctx context.Context, step Step, env *Env) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("compensation for step %s panicked: %v", step.Name, r)
		}
	}()
	return step.Compensate(ctx, env)
}
