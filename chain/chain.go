package chain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/swarmchain/core"
	"github.com/hupe1980/swarmchain/internal/util"
	"github.com/hupe1980/swarmchain/logging"
	"github.com/hupe1980/swarmchain/trace"
	"golang.org/x/sync/errgroup"
)

// Options configures a Chain instance.
type Options struct {
	// Ordering resolves the execution order. Defaults to DeclaredOrder.
	Ordering OrderingStrategy

	// Processing executes the resolved plan. Defaults to Sequential.
	Processing ProcessingStrategy

	// Config holds arbitrary chain-level key/value options carried through
	// definitions.
	Config map[string]any

	// Output designates the arena binding returned as the terminal result.
	// Empty means the result of the last step in execution order.
	Output string

	// BatchConcurrency bounds concurrent items in ABatch. Defaults to 4.
	BatchConcurrency int

	// StreamBufferSize sets the channel buffer for Stream. Defaults to 16.
	StreamBufferSize int

	// Tracer records one trace per invocation with a span per step. Nil
	// disables tracing.
	Tracer *trace.Tracer

	// OnTrace receives the sealed trace context after each invocation.
	OnTrace func(*trace.Context)

	// Logger defaults to NoOpLogger if nil.
	Logger logging.Logger
}

// Chain is an ordered collection of steps executed against a shared arena
// under an ordering and a processing strategy. Mutation (AddStep, strategy
// swaps) and invocation are safe for concurrent use; a running invocation
// executes against the snapshot of steps taken when it started.
type Chain struct {
	key string

	mu         sync.RWMutex
	steps      []Step
	index      map[string]int
	ordering   OrderingStrategy
	processing ProcessingStrategy
	config     map[string]any
	output     string

	batchConcurrency int
	streamBuffer     int
	tracer           *trace.Tracer
	onTrace          func(*trace.Context)
	logger           logging.Logger
}

// New creates an empty chain with the given key.
func New(key string, optFns ...func(o *Options)) *Chain {
	opts := Options{
		Ordering:         DeclaredOrder{},
		Processing:       Sequential{},
		BatchConcurrency: 4,
		StreamBufferSize: 16,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	cfg := make(map[string]any, len(opts.Config))
	for k, v := range opts.Config {
		cfg[k] = v
	}
	return &Chain{
		key:              key,
		index:            make(map[string]int),
		ordering:         opts.Ordering,
		processing:       opts.Processing,
		config:           cfg,
		output:           opts.Output,
		batchConcurrency: opts.BatchConcurrency,
		streamBuffer:     opts.StreamBufferSize,
		tracer:           opts.Tracer,
		onTrace:          opts.OnTrace,
		logger:           opts.Logger,
	}
}

// Key returns the chain's identifier.
func (c *Chain) Key() string { return c.key }

// AddCallable appends a step built from the given callable and options.
// It fails with *DuplicateStepKeyError when the key is already taken.
func (c *Chain) AddCallable(key string, fn core.Callable, opts ...StepOption) error {
	return c.AddStep(NewStep(key, fn, opts...))
}

// AddStep appends a fully constructed step, enforcing key uniqueness.
func (c *Chain) AddStep(s Step) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.index[s.Key()]; exists {
		return &DuplicateStepKeyError{Key: s.Key()}
	}
	c.index[s.Key()] = len(c.steps)
	c.steps = append(c.steps, s)
	return nil
}

// RemoveStep deletes the step with the given key, preserving the declared
// order of the remaining steps.
func (c *Chain) RemoveStep(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, exists := c.index[key]
	if !exists {
		return &UnknownStepError{ChainKey: c.key, StepKey: key}
	}
	c.steps = append(c.steps[:i], c.steps[i+1:]...)
	delete(c.index, key)
	for j := i; j < len(c.steps); j++ {
		c.index[c.steps[j].Key()] = j
	}
	return nil
}

// Steps returns a snapshot of the chain's steps in declared order.
func (c *Chain) Steps() []Step {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Step, len(c.steps))
	copy(out, c.steps)
	return out
}

// Len returns the number of steps.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.steps)
}

// Ordering returns the active ordering strategy.
func (c *Chain) Ordering() OrderingStrategy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ordering
}

// SetOrdering swaps the ordering strategy without touching the step set.
func (c *Chain) SetOrdering(o OrderingStrategy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ordering = o
}

// Processing returns the active processing strategy.
func (c *Chain) Processing() ProcessingStrategy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.processing
}

// SetProcessing swaps the processing strategy without touching the step set.
func (c *Chain) SetProcessing(p ProcessingStrategy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processing = p
}

// Config returns a copy of the chain-level configuration map.
func (c *Chain) Config() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.config))
	for k, v := range c.config {
		out[k] = v
	}
	return out
}

// Result is the full outcome of a chain invocation: the terminal output, the
// per-step results in execution order and, when tracing is enabled, the
// sealed trace context.
type Result struct {
	Output any
	Steps  []StepResult
	Trace  *trace.Context
}

// Run executes the chain to completion and returns the full result. For
// abort-on-failure strategies the error is the aborting *StepError (or
// *StepTimeoutError); BestEffort returns a nil error with failures tagged in
// Result.Steps.
func (c *Chain) Run(ctx context.Context, input map[string]any) (*Result, error) {
	return c.run(ctx, input, nil)
}

// Invoke executes the chain and returns the terminal result: the output
// binding designated at construction, or the result of the last step in
// execution order.
func (c *Chain) Invoke(ctx context.Context, input map[string]any) (any, error) {
	res, err := c.run(ctx, input, nil)
	if err != nil {
		return nil, err
	}
	return res.Output, nil
}

// AInvoke starts a cooperative invocation. Exactly one value is delivered on
// either the result or the error channel; both are closed afterwards.
func (c *Chain) AInvoke(ctx context.Context, input map[string]any) (<-chan any, <-chan error) {
	out := make(chan any, 1)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		res, err := c.run(ctx, input, nil)
		if err != nil {
			errCh <- err
			return
		}
		out <- res.Output
	}()
	return out, errCh
}

// BatchResult is one item of a batch invocation.
type BatchResult struct {
	Output any
	Err    error
}

// Batch executes the chain against independent input sets. Results preserve
// input order; a failing item never aborts its siblings.
func (c *Chain) Batch(ctx context.Context, inputs []map[string]any) []BatchResult {
	results := make([]BatchResult, len(inputs))
	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			results[i] = BatchResult{Err: err}
			continue
		}
		out, err := c.Invoke(ctx, input)
		results[i] = BatchResult{Output: out, Err: err}
	}
	return results
}

// ABatch is the concurrent form of Batch with bounded fan-out. Results are
// still delivered in input order.
func (c *Chain) ABatch(ctx context.Context, inputs []map[string]any) []BatchResult {
	results := make([]BatchResult, len(inputs))
	limit := c.batchConcurrency
	if limit <= 0 {
		limit = 4
	}
	g := new(errgroup.Group)
	g.SetLimit(limit)
	for i, input := range inputs {
		g.Go(func() error {
			out, err := c.Invoke(ctx, input)
			results[i] = BatchResult{Output: out, Err: err}
			return nil
		})
	}
	// Item failures live in the results slice, never in the group.
	_ = g.Wait()
	return results
}

// Stream executes the chain and emits one StepResult per completed step. The
// sequence is lazy, finite and non-restartable; the result channel is closed
// when the invocation finishes and a terminal failure, if any, is delivered
// on the error channel.
func (c *Chain) Stream(ctx context.Context, input map[string]any) (<-chan StepResult, <-chan error) {
	out := make(chan StepResult, c.streamBuffer)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		_, err := c.run(ctx, input, func(res StepResult) {
			select {
			case out <- res:
			case <-ctx.Done():
			}
		})
		if err != nil {
			errCh <- err
		}
	}()
	return out, errCh
}

// Schema is a declarative description of a chain produced without executing
// anything.
type Schema struct {
	Key        string       `json:"key"`
	Ordering   string       `json:"ordering"`
	Processing string       `json:"processing"`
	Output     string       `json:"output,omitempty"`
	Steps      []StepSchema `json:"steps"`
}

// StepSchema describes one step's invocation shape.
type StepSchema struct {
	Key       string   `json:"key"`
	Ref       string   `json:"ref,omitempty"`
	ArgCount  int      `json:"arg_count"`
	Kwargs    []string `json:"kwargs,omitempty"`
	DependsOn []string `json:"depends_on,omitempty"`
	Priority  int      `json:"priority,omitempty"`
}

// SchemaInfo returns the chain's declarative description: step keys,
// parameter shapes and strategy names.
func (c *Chain) SchemaInfo() Schema {
	c.mu.RLock()
	defer c.mu.RUnlock()

	schema := Schema{
		Key:        c.key,
		Ordering:   c.ordering.Name(),
		Processing: c.processing.Name(),
		Output:     c.output,
		Steps:      make([]StepSchema, 0, len(c.steps)),
	}
	edges, err := refEdges(c.steps)
	if err != nil {
		edges = map[string][]string{}
	}
	for _, s := range c.steps {
		schema.Steps = append(schema.Steps, StepSchema{
			Key:       s.Key(),
			Ref:       s.Ref(),
			ArgCount:  len(s.args),
			Kwargs:    sortedKeys(s.kwargs),
			DependsOn: edges[s.Key()],
			Priority:  s.Priority(),
		})
	}
	return schema
}

// run is the invocation core shared by Invoke, AInvoke, Batch, Stream. It
// resolves the plan, validates references and callables before any step
// executes, then hands execution to the processing strategy. The observer,
// when non-nil, receives each completed step result (possibly from
// concurrent goroutines under Parallel).
func (c *Chain) run(ctx context.Context, input map[string]any, observe func(StepResult)) (*Result, error) {
	c.mu.RLock()
	steps := make([]Step, len(c.steps))
	copy(steps, c.steps)
	ordering := c.ordering
	processing := c.processing
	output := c.output
	c.mu.RUnlock()

	plan, err := ordering.Plan(steps)
	if err != nil {
		return nil, err
	}
	if err := c.validate(steps, input, output); err != nil {
		return nil, err
	}

	var tc *trace.Context
	if c.tracer != nil {
		tc, err = c.tracer.StartTrace(c.key, map[string]any{
			"chain_key":  c.key,
			"ordering":   ordering.Name(),
			"processing": processing.Name(),
			"step_count": len(steps),
		})
		if err != nil {
			return nil, err
		}
		defer func() {
			c.tracer.EndTrace(tc)
			if c.onTrace != nil {
				c.onTrace(tc)
			}
		}()
	}

	byKey := make(map[string]Step, len(steps))
	for _, s := range steps {
		byKey[s.Key()] = s
	}
	ar := newArena(input)

	start := time.Now()
	results, runErr := processing.Execute(ctx, plan, c.stepRunner(byKey, ar, tc, observe))
	c.logger.Debug("chain run finished",
		"chain_key", c.key,
		"steps_executed", len(results),
		"duration", time.Since(start),
		"err", runErr,
	)
	if runErr != nil {
		return nil, runErr
	}

	res := &Result{Steps: results, Trace: tc}
	if output != "" {
		if v, ok := ar.get(output); ok {
			res.Output = v
		}
	} else if len(results) > 0 {
		res.Output = results[len(results)-1].Output
	}
	return res, nil
}

// validate fails fast on unresolvable references, callables and output
// bindings before execution begins: every ref a step consumes must be
// produced by another step or seeded by the invocation input, every callable
// must be non-nil, and a designated output binding must be publishable.
func (c *Chain) validate(steps []Step, input map[string]any, output string) error {
	producers := make(map[string]struct{}, len(steps))
	for _, s := range steps {
		if s.Ref() != "" {
			producers[s.Ref()] = struct{}{}
		}
	}
	for _, s := range steps {
		if s.Callable() == nil {
			return &StepError{StepKey: s.Key(), Err: fmt.Errorf("callable is not resolvable")}
		}
		for _, ref := range s.refs() {
			if _, fromStep := producers[ref]; fromStep {
				continue
			}
			if _, fromInput := input[ref]; fromInput {
				continue
			}
			return &UnresolvedRefError{StepKey: s.Key(), Ref: ref}
		}
	}
	if output != "" {
		if _, fromStep := producers[output]; !fromStep {
			if _, fromInput := input[output]; !fromInput {
				return &UnknownOutputError{ChainKey: c.key, Output: output}
			}
		}
	}
	return nil
}

// stepRunner builds the StepRunner handed to the processing strategy. The
// runner resolves Ref arguments and template placeholders from the arena,
// enforces the per-step timeout, records a span and publishes the result
// under the step's ref.
func (c *Chain) stepRunner(byKey map[string]Step, ar *arena, tc *trace.Context, observe func(StepResult)) StepRunner {
	return func(ctx context.Context, key string) StepResult {
		s := byKey[key]
		start := time.Now()

		var span *trace.Span
		if tc != nil {
			span = c.tracer.StartSpan(tc, key)
		}

		res := StepResult{Key: key}
		args, kwargs, err := c.bind(s, ar)
		if err != nil {
			res.Err = &StepError{StepKey: key, Err: err}
		} else {
			out, execErr := c.execute(ctx, s, args, kwargs)
			if execErr != nil {
				res.Err = execErr
			} else {
				res.Output = out
				if s.Ref() != "" {
					ar.put(s.Ref(), out)
				}
			}
		}
		res.Duration = time.Since(start)

		if span != nil {
			c.tracer.EndSpan(tc, span, res.Err)
		}
		if res.Err != nil {
			c.logger.Error("step failed", "chain_key", c.key, "step_key", key, "err", res.Err)
		} else {
			c.logger.Debug("step completed", "chain_key", c.key, "step_key", key, "duration", res.Duration)
		}
		if observe != nil {
			observe(res)
		}
		return res
	}
}

// bind resolves the step's positional and keyword arguments against the
// arena: Ref markers are replaced by the referenced values and, for steps
// opting in via WithTemplates, string arguments may carry {{.name}}
// placeholders. Strings in non-template steps pass through untouched.
func (c *Chain) bind(s Step, ar *arena) ([]any, map[string]any, error) {
	var snapshot map[string]any
	resolve := func(v any) (any, error) {
		switch t := v.(type) {
		case Ref:
			val, ok := ar.get(string(t))
			if !ok {
				return nil, fmt.Errorf("binding %q not present in arena", string(t))
			}
			return val, nil
		case string:
			if !s.templates {
				return v, nil
			}
			if snapshot == nil {
				snapshot = ar.snapshot()
			}
			return util.RenderTemplate(t, snapshot)
		default:
			return v, nil
		}
	}

	args := make([]any, len(s.args))
	for i, a := range s.args {
		v, err := resolve(a)
		if err != nil {
			return nil, nil, err
		}
		args[i] = v
	}
	kwargs := make(map[string]any, len(s.kwargs))
	for k, a := range s.kwargs {
		v, err := resolve(a)
		if err != nil {
			return nil, nil, err
		}
		kwargs[k] = v
	}
	return args, kwargs, nil
}

// execute invokes the callable, enforcing the step timeout without
// preempting the callable itself: on timeout the step keeps running in its
// goroutine but the invocation records a *StepTimeoutError and moves on per
// the processing strategy.
func (c *Chain) execute(ctx context.Context, s Step, args []any, kwargs map[string]any) (any, error) {
	if s.Timeout() <= 0 {
		out, err := s.Callable()(ctx, args, kwargs)
		if err != nil {
			return nil, &StepError{StepKey: s.Key(), Err: err}
		}
		return out, nil
	}

	stepCtx, cancel := context.WithTimeout(ctx, s.Timeout())
	defer cancel()

	type outcome struct {
		out any
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		out, err := s.Callable()(stepCtx, args, kwargs)
		done <- outcome{out: out, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			return nil, &StepError{StepKey: s.Key(), Err: o.err}
		}
		return o.out, nil
	case <-stepCtx.Done():
		if stepCtx.Err() == context.DeadlineExceeded {
			return nil, &StepTimeoutError{StepKey: s.Key(), Timeout: s.Timeout().String()}
		}
		return nil, &StepError{StepKey: s.Key(), Err: stepCtx.Err()}
	}
}
