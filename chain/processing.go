package chain

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Processing strategy names used in chain definitions.
const (
	ProcessingSequential   = "sequential"
	ProcessingParallel     = "parallel"
	ProcessingShortCircuit = "short_circuit"
	ProcessingBestEffort   = "best_effort"
)

// StepResult is the outcome of one executed step. Err is always attributed:
// a *StepError or *StepTimeoutError carrying the step key.
type StepResult struct {
	Key      string
	Output   any
	Err      error
	Duration time.Duration
}

// StepRunner executes the step with the given key against the invocation's
// arena and returns its attributed result. Provided to processing strategies
// by the chain engine.
type StepRunner func(ctx context.Context, key string) StepResult

// ProcessingStrategy executes a resolved plan. Implementations check the
// context between dispatch points so invocations can be cancelled between
// steps; a step that has started always runs to completion.
type ProcessingStrategy interface {
	// Name identifies the strategy in chain definitions.
	Name() string

	// Execute runs the plan. The returned results are in completion order
	// (plan order for sequential strategies, stage order for Parallel). The
	// error is the aborting failure, or nil when the strategy tolerates
	// failures.
	Execute(ctx context.Context, plan *Plan, run StepRunner) ([]StepResult, error)
}

// ProcessingByName returns the processing strategy registered under the
// given definition name.
func ProcessingByName(name string) (ProcessingStrategy, bool) {
	switch name {
	case ProcessingSequential, "":
		return Sequential{}, true
	case ProcessingParallel:
		return Parallel{}, true
	case ProcessingShortCircuit:
		return ShortCircuit{}, true
	case ProcessingBestEffort:
		return BestEffort{}, true
	default:
		return nil, false
	}
}

// Sequential runs steps one at a time in plan order and aborts on the first
// failure.
type Sequential struct{}

// Name implements ProcessingStrategy.
func (Sequential) Name() string { return ProcessingSequential }

// Execute implements ProcessingStrategy.
func (Sequential) Execute(ctx context.Context, plan *Plan, run StepRunner) ([]StepResult, error) {
	return runInOrder(ctx, plan, run, true)
}

// ShortCircuit is the explicit abort-on-first-failure strategy. Execution
// semantics match Sequential; it keeps its own identity so definitions can
// state the intent and round-trip it.
type ShortCircuit struct{}

// Name implements ProcessingStrategy.
func (ShortCircuit) Name() string { return ProcessingShortCircuit }

// Execute implements ProcessingStrategy.
func (ShortCircuit) Execute(ctx context.Context, plan *Plan, run StepRunner) ([]StepResult, error) {
	return runInOrder(ctx, plan, run, true)
}

// BestEffort runs every step in plan order, collecting failures alongside
// successes. The invocation reports one tagged result per step.
type BestEffort struct{}

// Name implements ProcessingStrategy.
func (BestEffort) Name() string { return ProcessingBestEffort }

// Execute implements ProcessingStrategy.
func (BestEffort) Execute(ctx context.Context, plan *Plan, run StepRunner) ([]StepResult, error) {
	return runInOrder(ctx, plan, run, false)
}

func runInOrder(ctx context.Context, plan *Plan, run StepRunner, abortOnError bool) ([]StepResult, error) {
	results := make([]StepResult, 0, len(plan.Order))
	for _, key := range plan.Order {
		// Cooperative cancellation point between steps.
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := run(ctx, key)
		results = append(results, res)
		if res.Err != nil && abortOnError {
			return results, res.Err
		}
	}
	return results, nil
}

// Parallel executes the plan stage by stage: steps within a wavefront stage
// have no dependency edge between them and run concurrently. A failure stops
// later stages from starting while in-flight siblings run to completion.
type Parallel struct{}

// Name implements ProcessingStrategy.
func (Parallel) Name() string { return ProcessingParallel }

// Execute implements ProcessingStrategy.
func (Parallel) Execute(ctx context.Context, plan *Plan, run StepRunner) ([]StepResult, error) {
	results := make([]StepResult, 0, len(plan.Order))
	for _, stage := range plan.Stages {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		stageResults := make([]StepResult, len(stage))
		g := new(errgroup.Group)
		for i, key := range stage {
			g.Go(func() error {
				stageResults[i] = run(ctx, key)
				return nil
			})
		}
		// Collection errors are carried per result, never through the group.
		_ = g.Wait()

		var firstErr error
		for _, res := range stageResults {
			results = append(results, res)
			if res.Err != nil && firstErr == nil {
				firstErr = res.Err
			}
		}
		if firstErr != nil {
			return results, firstErr
		}
	}
	return results, nil
}
