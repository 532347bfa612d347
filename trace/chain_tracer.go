package trace

import (
	"context"
	"fmt"

	"github.com/hupe1980/swarmchain/core"
)

type contextKey struct{}

// WithContext attaches a trace context to a standard context so callables
// executed by a ChainTracer can annotate the trace they run under.
func WithContext(ctx context.Context, tc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext extracts the trace context attached by WithContext, or nil.
func FromContext(ctx context.Context) *Context {
	tc, _ := ctx.Value(contextKey{}).(*Context)
	return tc
}

// Call is one entry processed by ChainTracer: a function with bound
// arguments executed under a specific trace context.
type Call struct {
	Context  *Context
	Function core.Callable
	Args     []any
	Kwargs   map[string]any
}

// ChainTracer executes sequences of traced calls, recording a span per call
// on the call's own trace context. Methods return the receiver so call
// sequences compose fluently.
type ChainTracer struct {
	tracer *Tracer
}

// NewChainTracer creates a ChainTracer on top of the given Tracer.
func NewChainTracer(t *Tracer) *ChainTracer {
	return &ChainTracer{tracer: t}
}

// Tracer returns the underlying Tracer.
func (ct *ChainTracer) Tracer() *Tracer { return ct.tracer }

// ProcessChain executes the calls in listed order, feeding each its trace
// context through the standard context. The first failure aborts the
// remaining calls and is returned; on success the receiver is returned for
// further chaining.
func (ct *ChainTracer) ProcessChain(ctx context.Context, calls []Call) (*ChainTracer, error) {
	for i, call := range calls {
		if call.Function == nil {
			return ct, fmt.Errorf("trace: call %d has no function", i)
		}
		callCtx := ctx
		var span *Span
		if call.Context != nil {
			callCtx = WithContext(ctx, call.Context)
			span = ct.tracer.StartSpan(call.Context, fmt.Sprintf("call-%d", i))
		}
		_, err := call.Function(callCtx, call.Args, call.Kwargs)
		if call.Context != nil {
			ct.tracer.EndSpan(call.Context, span, err)
		}
		if err != nil {
			return ct, fmt.Errorf("trace: call %d failed: %w", i, err)
		}
	}
	return ct, nil
}
