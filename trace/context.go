package trace

import (
	"fmt"
	"sync"
	"time"
)

// SealedError reports a mutation attempted on a trace context after
// EndTrace. Annotating a sealed context is a programmer error and is
// surfaced immediately, never retried or swallowed.
type SealedError struct {
	TraceID string
}

// Error implements the error interface.
func (e *SealedError) Error() string {
	return fmt.Sprintf("trace: context %s is sealed", e.TraceID)
}

// AttributeError reports an attribute value that cannot be serialized into
// a trace. StartTrace and Annotate fail on such values rather than silently
// dropping data.
type AttributeError struct {
	Key    string
	Reason string
}

// Error implements the error interface.
func (e *AttributeError) Error() string {
	return fmt.Sprintf("trace: attribute %q: %s", e.Key, e.Reason)
}

// Span is one recorded step execution within a trace.
type Span struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Error string    `json:"error,omitempty"`
}

// Context is the per-invocation trace record: an opaque unique trace id, an
// ordered list of child spans and a mutable attribute map. It is created by
// Tracer.StartTrace, mutated during execution and sealed by Tracer.EndTrace,
// after which every accessor keeps working but all mutation fails.
type Context struct {
	mu      sync.Mutex
	traceID string
	name    string
	started time.Time
	ended   time.Time
	spans   []*Span
	attrs   map[string]any
	sealed  bool
}

// TraceID returns the opaque unique token identifying this invocation.
func (c *Context) TraceID() string { return c.traceID }

// Name returns the trace name given at StartTrace.
func (c *Context) Name() string { return c.name }

// Started returns the trace creation time.
func (c *Context) Started() time.Time { return c.started }

// Ended returns the seal time, zero while the context is live.
func (c *Context) Ended() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ended
}

// Sealed reports whether EndTrace has been called.
func (c *Context) Sealed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sealed
}

// Attributes returns a copy of the attribute map.
func (c *Context) Attributes() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]any, len(c.attrs))
	for k, v := range c.attrs {
		out[k] = v
	}
	return out
}

// Spans returns the recorded spans in start order. The returned slice is a
// copy; span values are shared and must be treated as read-only once the
// context is sealed.
func (c *Context) Spans() []*Span {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Span, len(c.spans))
	copy(out, c.spans)
	return out
}

// SpanIDs returns the ordered child span identifiers.
func (c *Context) SpanIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, len(c.spans))
	for i, s := range c.spans {
		ids[i] = s.ID
	}
	return ids
}

func (c *Context) annotate(key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed {
		return &SealedError{TraceID: c.traceID}
	}
	c.attrs[key] = value
	return nil
}

func (c *Context) addSpan(s *Span) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed {
		return false
	}
	c.spans = append(c.spans, s)
	return true
}

func (c *Context) seal(at time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed {
		return false
	}
	c.sealed = true
	c.ended = at
	return true
}
