package agent

import (
	"context"

	"github.com/hupe1980/swarmchain/core"
	"github.com/hupe1980/swarmchain/logging"
	"golang.org/x/sync/errgroup"
)

// BaseAgent bundles the identity and capability plumbing shared by the
// concrete agents in this package. Embed it and supply an Invoke method; the
// async, batch and stream command variants are derived through the package
// helpers. BaseAgent is immutable after construction and therefore safe for
// concurrent use.
type BaseAgent struct {
	id          string
	description string
	caps        core.CapabilitySet
	logger      logging.Logger
}

// NewBaseAgent constructs a BaseAgent with the given identity and capability
// tags.
func NewBaseAgent(id, description string, caps core.CapabilitySet, logger logging.Logger) BaseAgent {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return BaseAgent{id: id, description: description, caps: caps, logger: logger}
}

// ID returns the agent's registry identifier.
func (b *BaseAgent) ID() string { return b.id }

// Description returns the agent's purpose summary.
func (b *BaseAgent) Description() string { return b.description }

// Capabilities returns the agent's capability tags.
func (b *BaseAgent) Capabilities() core.CapabilitySet { return b.caps }

// Logger returns the agent's logger.
func (b *BaseAgent) Logger() logging.Logger { return b.logger }

// invokeFn is the single-request execution shared by the derived command
// helpers below.
type invokeFn func(ctx context.Context, req core.Request) (core.Response, error)

// asyncInvoke derives the cooperative invocation form: exactly one value on
// either channel, both closed afterwards.
func asyncInvoke(ctx context.Context, req core.Request, invoke invokeFn) (<-chan core.Response, <-chan error) {
	out := make(chan core.Response, 1)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		resp, err := invoke(ctx, req)
		if err != nil {
			errCh <- err
			return
		}
		out <- resp
	}()
	return out, errCh
}

// runBatch executes requests sequentially, preserving input order and
// isolating failures.
func runBatch(ctx context.Context, reqs []core.Request, invoke invokeFn) []core.BatchResult {
	results := make([]core.BatchResult, len(reqs))
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			results[i] = core.BatchResult{Err: err}
			continue
		}
		resp, err := invoke(ctx, req)
		results[i] = core.BatchResult{Response: resp, Err: err}
	}
	return results
}

// runABatch is the bounded concurrent form of runBatch with the same
// ordering contract.
func runABatch(ctx context.Context, reqs []core.Request, invoke invokeFn, limit int) []core.BatchResult {
	if limit <= 0 {
		limit = 4
	}
	results := make([]core.BatchResult, len(reqs))
	g := new(errgroup.Group)
	g.SetLimit(limit)
	for i, req := range reqs {
		g.Go(func() error {
			resp, err := invoke(ctx, req)
			results[i] = core.BatchResult{Response: resp, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// singleStream derives a lazy single-element stream from Invoke for agents
// without incremental output.
func singleStream(ctx context.Context, req core.Request, invoke invokeFn) (<-chan core.Response, <-chan error) {
	return asyncInvoke(ctx, req, invoke)
}
