package trace

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/swarmchain/logging"
)

// Options configures a Tracer instance.
type Options struct {
	// Logger defaults to NoOpLogger if nil.
	Logger logging.Logger
}

// Tracer creates and manages trace contexts. A Tracer is stateless apart
// from its logger and safe for concurrent use; all per-invocation state
// lives in the Context it hands out.
type Tracer struct {
	logger logging.Logger
}

// New creates a Tracer.
func New(optFns ...func(o *Options)) *Tracer {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Tracer{logger: opts.Logger}
}

// StartTrace creates a live trace context with a freshly generated trace id.
// Initial attributes are validated for serializability; a bad value fails
// the call rather than being silently dropped.
func (t *Tracer) StartTrace(name string, attrs map[string]any) (*Context, error) {
	copied := make(map[string]any, len(attrs))
	for k, v := range attrs {
		if err := validateAttr(k, v); err != nil {
			return nil, err
		}
		copied[k] = v
	}
	tc := &Context{
		traceID: uuid.NewString(),
		name:    name,
		started: time.Now(),
		attrs:   copied,
	}
	t.logger.Debug("trace started", "trace_id", tc.traceID, "name", name)
	return tc, nil
}

// Annotate adds a key/value attribute to an unsealed context. It fails with
// *SealedError after EndTrace and with *AttributeError for values that
// cannot be serialized.
func (t *Tracer) Annotate(tc *Context, key string, value any) error {
	if err := validateAttr(key, value); err != nil {
		return err
	}
	return tc.annotate(key, value)
}

// StartSpan opens a child span on the context. It returns nil when the
// context is already sealed; EndSpan tolerates a nil span so callers need no
// special casing.
func (t *Tracer) StartSpan(tc *Context, name string) *Span {
	s := &Span{ID: uuid.NewString(), Name: name, Start: time.Now()}
	if !tc.addSpan(s) {
		t.logger.Warn("span dropped on sealed trace", "trace_id", tc.TraceID(), "span", name)
		return nil
	}
	return s
}

// EndSpan closes a span, recording its end time and failure, if any.
func (t *Tracer) EndSpan(_ *Context, s *Span, err error) {
	if s == nil {
		return
	}
	s.End = time.Now()
	if err != nil {
		s.Error = err.Error()
	}
}

// EndTrace seals the context. Further mutation fails; repeated calls after
// the first are a no-op.
func (t *Tracer) EndTrace(tc *Context) {
	if tc.seal(time.Now()) {
		t.logger.Debug("trace sealed", "trace_id", tc.TraceID(), "spans", len(tc.Spans()))
	}
}

// validateAttr rejects attribute values that do not survive JSON
// serialization (channels, functions, cyclic structures).
func validateAttr(key string, value any) error {
	if _, err := json.Marshal(value); err != nil {
		return &AttributeError{Key: key, Reason: err.Error()}
	}
	return nil
}
