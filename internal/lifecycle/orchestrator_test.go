package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(ctx context.Context, env *Env) error { return nil }

func TestNewPlanValidation(t *testing.T) {
	tests := []struct {
		name    string
		plan    string
		steps   []Step
		wantErr string
	}{
		{"no name", "", []Step{{Name: "a", Run: noop}}, "no name"},
		{"no steps", "p", nil, "no steps"},
		{"unnamed step", "p", []Step{{Run: noop}}, "no name"},
		{"step without run", "p", []Step{{Name: "a"}}, "no forward action"},
		{"duplicate step", "p", []Step{{Name: "a", Run: noop}, {Name: "a", Run: noop}}, "duplicate step"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlan(tt.plan, tt.steps...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExecuteAllStepsSucceed(t *testing.T) {
	var order []string
	step := func(name string) Step {
		return Step{
			Name: name,
			Run: func(ctx context.Context, env *Env) error {
				order = append(order, name)
				return nil
			},
			Compensate: func(ctx context.Context, env *Env) error {
				order = append(order, "undo-"+name)
				return nil
			},
		}
	}
	plan, err := NewPlan("p", step("one"), step("two"), step("three"))
	require.NoError(t, err)

	result := NewOrchestrator().Execute(context.Background(), plan, &Env{})

	assert.Equal(t, PlanSucceeded, result.Status)
	assert.Equal(t, []string{"one", "two", "three"}, order, "no compensation on success")
	for _, o := range result.Outcomes {
		assert.Equal(t, StepSucceeded, o.Status)
	}
	assert.Empty(t, result.CompensationFailures)
}

func TestExecuteFailureCompensatesInReverse(t *testing.T) {
	var order []string
	mk := func(name string, fail bool) Step {
		return Step{
			Name: name,
			Run: func(ctx context.Context, env *Env) error {
				order = append(order, name)
				if fail {
					return errors.New(name + " exploded")
				}
				return nil
			},
			Compensate: func(ctx context.Context, env *Env) error {
				order = append(order, "undo-"+name)
				return nil
			},
		}
	}
	plan, err := NewPlan("p", mk("one", false), mk("two", false), mk("three", true), mk("four", false))
	require.NoError(t, err)

	result := NewOrchestrator().Execute(context.Background(), plan, &Env{})

	assert.Equal(t, PlanFailed, result.Status)
	assert.Equal(t, []string{"one", "two", "three", "undo-two", "undo-one"}, order)

	assert.Equal(t, StepCompensated, result.Outcomes[0].Status)
	assert.Equal(t, StepCompensated, result.Outcomes[1].Status)
	assert.Equal(t, StepFailed, result.Outcomes[2].Status)
	assert.Contains(t, result.Outcomes[2].Error, "exploded")
	assert.Equal(t, StepSkipped, result.Outcomes[3].Status)
}

func TestExecuteNilCompensateIsTrivial(t *testing.T) {
	plan, err := NewPlan("p",
		Step{Name: "check", Run: noop}, // pure check, nothing to undo
		Step{Name: "fail", Run: func(ctx context.Context, env *Env) error {
			return errors.New("nope")
		}},
	)
	require.NoError(t, err)

	result := NewOrchestrator().Execute(context.Background(), plan, &Env{})

	assert.Equal(t, PlanFailed, result.Status)
	assert.Equal(t, StepCompensated, result.Outcomes[0].Status)
	assert.Empty(t, result.CompensationFailures)
}

func TestExecuteCompensationFailuresAreAggregated(t *testing.T) {
	var undone []string
	mk := func(name string, undoErr error) Step {
		return Step{
			Name: name,
			Run:  noop,
			Compensate: func(ctx context.Context, env *Env) error {
				undone = append(undone, name)
				return undoErr
			},
		}
	}
	plan, err := NewPlan("p",
		mk("one", nil),
		mk("two", errors.New("undo stuck")),
		Step{Name: "three", Run: func(ctx context.Context, env *Env) error {
			return errors.New("boom")
		}},
	)
	require.NoError(t, err)

	result := NewOrchestrator().Execute(context.Background(), plan, &Env{})

	// A failed undo never stops earlier compensations.
	assert.Equal(t, []string{"two", "one"}, undone)
	assert.Equal(t, StepCompensationFailed, result.Outcomes[1].Status)
	assert.Equal(t, StepCompensated, result.Outcomes[0].Status)
	require.Len(t, result.CompensationFailures, 1)
	assert.Contains(t, result.CompensationFailures[0], "two")
	assert.Contains(t, result.CompensationFailures[0], "undo stuck")
}

func TestExecuteRecoversStepPanic(t *testing.T) {
	plan, err := NewPlan("p",
		Step{Name: "boom", Run: func(ctx context.Context, env *Env) error {
			panic("step bug")
		}},
	)
	require.NoError(t, err)

	result := NewOrchestrator().Execute(context.Background(), plan, &Env{})

	assert.Equal(t, PlanFailed, result.Status)
	assert.Equal(t, StepFailed, result.Outcomes[0].Status)
	assert.Contains(t, result.Outcomes[0].Error, "panicked")
}

func TestExecuteCompensationRunsUnderCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	compensated := false
	plan, err := NewPlan("p",
		Step{
			Name: "provision",
			Run:  noop,
			Compensate: func(compCtx context.Context, env *Env) error {
				// The rollback context outlives the caller's cancellation.
				assert.NoError(t, compCtx.Err())
				compensated = true
				return nil
			},
		},
		Step{
			Name: "fail",
			Run: func(ctx context.Context, env *Env) error {
				cancel()
				return errors.New("interrupted")
			},
		},
	)
	require.NoError(t, err)

	result := NewOrchestrator().Execute(ctx, plan, &Env{})

	assert.Equal(t, PlanFailed, result.Status)
	assert.True(t, compensated, "rollback must proceed after cancellation")
}

func TestExecuteCancelledBeforeStepFailsPlan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan, err := NewPlan("p", Step{Name: "never", Run: noop})
	require.NoError(t, err)

	result := NewOrchestrator().Execute(ctx, plan, &Env{})

	assert.Equal(t, PlanFailed, result.Status)
	assert.Contains(t, result.Outcomes[0].Error, "cancelled")
}

func TestEnvFlowsBetweenSteps(t *testing.T) {
	plan, err := NewPlan("p",
		Step{Name: "produce", Run: func(ctx context.Context, env *Env) error {
			env.InstallerPath = "/tmp/script.sh"
			return nil
		}},
		Step{Name: "consume", Run: func(ctx context.Context, env *Env) error {
			assert.Equal(t, "/tmp/script.sh", env.InstallerPath)
			return nil
		}},
	)
	require.NoError(t, err)

	result := NewOrchestrator().Execute(context.Background(), plan, &Env{})
	assert.Equal(t, PlanSucceeded, result.Status)
}
