package chain

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRunner tracks executed step keys and fails the configured ones.
type recordingRunner struct {
	mu       sync.Mutex
	executed []string
	failing  map[string]error
}

func (r *recordingRunner) run(_ context.Context, key string) StepResult {
	r.mu.Lock()
	r.executed = append(r.executed, key)
	r.mu.Unlock()
	if err, ok := r.failing[key]; ok {
		return StepResult{Key: key, Err: &StepError{StepKey: key, Err: err}}
	}
	return StepResult{Key: key, Output: key}
}

func (r *recordingRunner) keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.executed))
	copy(out, r.executed)
	return out
}

func linearPlan(keys ...string) *Plan {
	edges := make(map[string][]string, len(keys))
	stages := make([][]string, len(keys))
	for i, k := range keys {
		edges[k] = nil
		stages[i] = []string{k}
	}
	return &Plan{Order: keys, Edges: edges, Stages: stages}
}

// -------------------- Sequential / ShortCircuit Tests --------------------

func TestSequential_RunsAllInOrder(t *testing.T) {
	r := &recordingRunner{}
	results, err := Sequential{}.Execute(context.Background(), linearPlan("a", "b", "c"), r.run)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, r.keys())
	require.Len(t, results, 3)
	assert.Equal(t, "b", results[1].Output)
}

func TestShortCircuit_HaltsAfterFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	r := &recordingRunner{failing: map[string]error{"b": boom}}

	results, err := ShortCircuit{}.Execute(context.Background(), linearPlan("a", "b", "c"), r.run)
	require.Error(t, err)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "b", stepErr.StepKey)
	assert.ErrorIs(t, err, boom)

	// The step after the failure never executed.
	assert.Equal(t, []string{"a", "b"}, r.keys())
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
}

func TestSequential_CancelledBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var r recordingRunner
	run := func(ctx context.Context, key string) StepResult {
		cancel() // cancellation observed before the next step dispatches
		return r.run(ctx, key)
	}

	_, err := Sequential{}.Execute(ctx, linearPlan("a", "b"), run)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a"}, r.keys())
}

// -------------------- BestEffort Tests --------------------

func TestBestEffort_TagsFailuresAndContinues(t *testing.T) {
	r := &recordingRunner{failing: map[string]error{"b": errors.New("boom")}}

	results, err := BestEffort{}.Execute(context.Background(), linearPlan("a", "b", "c"), r.run)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, r.keys())
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}

// -------------------- Parallel Tests --------------------

func TestParallel_RunsStagesConcurrently(t *testing.T) {
	plan := &Plan{
		Order: []string{"root", "left", "right", "join"},
		Edges: map[string][]string{
			"left":  {"root"},
			"right": {"root"},
			"join":  {"left", "right"},
		},
		Stages: [][]string{{"root"}, {"left", "right"}, {"join"}},
	}
	r := &recordingRunner{}

	results, err := Parallel{}.Execute(context.Background(), plan, r.run)
	require.NoError(t, err)
	require.Len(t, results, 4)

	executed := r.keys()
	require.Len(t, executed, 4)
	assert.Equal(t, "root", executed[0])
	assert.Equal(t, "join", executed[3])
	assert.ElementsMatch(t, []string{"left", "right"}, executed[1:3])
}

func TestParallel_FailureStopsLaterStages(t *testing.T) {
	plan := &Plan{
		Order:  []string{"a", "b", "c"},
		Edges:  map[string][]string{"c": {"a", "b"}},
		Stages: [][]string{{"a", "b"}, {"c"}},
	}
	r := &recordingRunner{failing: map[string]error{"a": errors.New("boom")}}

	results, err := Parallel{}.Execute(context.Background(), plan, r.run)
	require.Error(t, err)
	// The sibling in the same stage ran to completion; the next stage never started.
	assert.ElementsMatch(t, []string{"a", "b"}, r.keys())
	assert.Len(t, results, 2)
}

// -------------------- Strategy Lookup Tests --------------------

func TestProcessingByName(t *testing.T) {
	for name, want := range map[string]string{
		"":                     ProcessingSequential,
		ProcessingSequential:   ProcessingSequential,
		ProcessingParallel:     ProcessingParallel,
		ProcessingShortCircuit: ProcessingShortCircuit,
		ProcessingBestEffort:   ProcessingBestEffort,
	} {
		strategy, ok := ProcessingByName(name)
		require.True(t, ok, "name %q", name)
		assert.Equal(t, want, strategy.Name())
	}

	_, ok := ProcessingByName("bogus")
	assert.False(t, ok)
}
