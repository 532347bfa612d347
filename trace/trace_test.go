package trace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------- Lifecycle Tests --------------------

func TestTracer_StartTrace(t *testing.T) {
	tracer := New()
	tc, err := tracer.StartTrace("my-chain", map[string]any{"attempt": 1})
	require.NoError(t, err)

	assert.NotEmpty(t, tc.TraceID())
	assert.Equal(t, "my-chain", tc.Name())
	assert.False(t, tc.Started().IsZero())
	assert.True(t, tc.Ended().IsZero())
	assert.False(t, tc.Sealed())
	assert.Equal(t, 1, tc.Attributes()["attempt"])
}

func TestTracer_TraceIDsAreUnique(t *testing.T) {
	tracer := New()
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		tc, err := tracer.StartTrace("t", nil)
		require.NoError(t, err)
		_, dup := seen[tc.TraceID()]
		require.False(t, dup)
		seen[tc.TraceID()] = struct{}{}
	}
}

func TestTracer_StartTraceRejectsUnserializableAttr(t *testing.T) {
	tracer := New()
	_, err := tracer.StartTrace("t", map[string]any{"ch": make(chan int)})
	var attrErr *AttributeError
	require.ErrorAs(t, err, &attrErr)
	assert.Equal(t, "ch", attrErr.Key)
}

func TestTracer_AnnotateAndSeal(t *testing.T) {
	tracer := New()
	tc, err := tracer.StartTrace("t", nil)
	require.NoError(t, err)

	require.NoError(t, tracer.Annotate(tc, "phase", "warmup"))
	assert.Equal(t, "warmup", tc.Attributes()["phase"])

	tracer.EndTrace(tc)
	assert.True(t, tc.Sealed())
	assert.False(t, tc.Ended().IsZero())

	// Sealed contexts stay fully readable but reject every mutation.
	err = tracer.Annotate(tc, "phase", "late")
	var sealedErr *SealedError
	require.ErrorAs(t, err, &sealedErr)
	assert.Equal(t, tc.TraceID(), sealedErr.TraceID)
	assert.Equal(t, "warmup", tc.Attributes()["phase"])
}

func TestTracer_EndTraceIsIdempotent(t *testing.T) {
	tracer := New()
	tc, err := tracer.StartTrace("t", nil)
	require.NoError(t, err)

	tracer.EndTrace(tc)
	ended := tc.Ended()
	time.Sleep(5 * time.Millisecond)
	tracer.EndTrace(tc)
	assert.Equal(t, ended, tc.Ended())
}

// -------------------- Span Tests --------------------

func TestTracer_SpansRecordOrderAndFailure(t *testing.T) {
	tracer := New()
	tc, err := tracer.StartTrace("t", nil)
	require.NoError(t, err)

	s1 := tracer.StartSpan(tc, "fetch")
	tracer.EndSpan(tc, s1, nil)
	s2 := tracer.StartSpan(tc, "summarize")
	tracer.EndSpan(tc, s2, errors.New("boom"))

	spans := tc.Spans()
	require.Len(t, spans, 2)
	assert.Equal(t, "fetch", spans[0].Name)
	assert.Empty(t, spans[0].Error)
	assert.Equal(t, "summarize", spans[1].Name)
	assert.Equal(t, "boom", spans[1].Error)
	assert.Equal(t, []string{spans[0].ID, spans[1].ID}, tc.SpanIDs())
}

func TestTracer_SpanDroppedOnSealedTrace(t *testing.T) {
	tracer := New()
	tc, err := tracer.StartTrace("t", nil)
	require.NoError(t, err)
	tracer.EndTrace(tc)

	s := tracer.StartSpan(tc, "late")
	assert.Nil(t, s)
	assert.Empty(t, tc.Spans())

	// EndSpan tolerates the nil span.
	tracer.EndSpan(tc, s, nil)
}

// -------------------- ChainTracer Tests --------------------

func TestChainTracer_ProcessChain(t *testing.T) {
	tracer := New()
	ct := NewChainTracer(tracer)

	tc, err := tracer.StartTrace("batch", nil)
	require.NoError(t, err)

	var seen []*Context
	fn := func(ctx context.Context, _ []any, _ map[string]any) (any, error) {
		seen = append(seen, FromContext(ctx))
		return nil, nil
	}

	got, err := ct.ProcessChain(context.Background(), []Call{
		{Context: tc, Function: fn},
		{Context: tc, Function: fn},
	})
	require.NoError(t, err)
	assert.Same(t, ct, got)

	// Each call saw its trace context and produced one span.
	require.Len(t, seen, 2)
	assert.Same(t, tc, seen[0])
	assert.Same(t, tc, seen[1])
	spans := tc.Spans()
	require.Len(t, spans, 2)
	assert.Equal(t, "call-0", spans[0].Name)
	assert.Equal(t, "call-1", spans[1].Name)
}

func TestChainTracer_FirstFailureAborts(t *testing.T) {
	tracer := New()
	ct := NewChainTracer(tracer)
	tc, err := tracer.StartTrace("batch", nil)
	require.NoError(t, err)

	executed := 0
	ok := func(context.Context, []any, map[string]any) (any, error) {
		executed++
		return nil, nil
	}
	boom := func(context.Context, []any, map[string]any) (any, error) {
		executed++
		return nil, errors.New("boom")
	}

	_, err = ct.ProcessChain(context.Background(), []Call{
		{Context: tc, Function: ok},
		{Context: tc, Function: boom},
		{Context: tc, Function: ok},
	})
	require.Error(t, err)
	assert.Equal(t, 2, executed)

	spans := tc.Spans()
	require.Len(t, spans, 2)
	assert.Contains(t, spans[1].Error, "boom")
}

func TestWithContextRoundTrip(t *testing.T) {
	tc := &Context{traceID: "fixed"}
	ctx := WithContext(context.Background(), tc)
	assert.Same(t, tc, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}
