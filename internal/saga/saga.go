// Package saga runs paired Order/Table mutations as a sequence of steps.
// When a step fails, the steps that already succeeded are compensated in
// reverse order.
package saga

import (
	"context"
	"errors"
	"fmt"

	"github.com/appetiteclub/apt"
)

// Step represents a single unit of work in the Saga.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Func adapts two closures into a Step. A nil compensate means the step has
// nothing to undo.
type Func struct {
	StepName     string
	ExecuteFn    func(ctx context.Context) error
	CompensateFn func(ctx context.Context) error
}

func (f Func) Name() string { return f.StepName }

func (f Func) Execute(ctx context.Context) error {
	return f.ExecuteFn(ctx)
}

func (f Func) Compensate(ctx context.Context) error {
	if f.CompensateFn == nil {
		return nil
	}
	return f.CompensateFn(ctx)
}

// CompensationError reports steps that could not be undone. The original
// failure is still the one returned by errors.Unwrap.
type CompensationError struct {
	Cause  error
	Failed []string
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("%v (compensation failed for %v)", e.Cause, e.Failed)
}

func (e *CompensationError) Unwrap() error {
	return e.Cause
}

// Orchestrator manages the execution of a collection of Steps.
type Orchestrator struct {
	name   string
	steps  []Step
	logger apt.Logger
}

func New(name string, logger apt.Logger, steps ...Step) *Orchestrator {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Orchestrator{name: name, steps: steps, logger: logger}
}

// Run executes the steps in order. The error of the failing step is
// returned unchanged so callers can classify it.
func (o *Orchestrator) Run(ctx context.Context) error {
	var done []Step

	for _, step := range o.steps {
		o.log().Debug("executing step", "step", step.Name())
		if err := step.Execute(ctx); err != nil {
			o.log().Info("step failed, rolling back", "step", step.Name(), "error", err)
			if failed := o.rollback(ctx, done); len(failed) > 0 {
				return &CompensationError{Cause: err, Failed: failed}
			}
			return err
		}
		done = append(done, step)
	}

	return nil
}

func (o *Orchestrator) rollback(ctx context.Context, steps []Step) []string {
	var failed []string
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if err := step.Compensate(ctx); err != nil {
			o.log().Error("cannot compensate step", "step", step.Name(), "error", err)
			failed = append(failed, step.Name())
		}
	}
	return failed
}

func (o *Orchestrator) log() apt.Logger {
	return o.logger.With("component", "Saga", "saga", o.name)
}

// IsCompensationFailure reports whether err left state that only a
// reconcile pass can repair.
func IsCompensationFailure(err error) bool {
	var ce *CompensationError
	return errors.As(err, &ce)
}
