package chain

import (
	"time"

	"github.com/hupe1980/swarmchain/core"
)

// Ref marks a positional or keyword argument as a reference to a result
// binding in the chain's execution arena. References establish the
// dependency edges used by DependencyOrder and the Parallel processing
// strategy.
type Ref string

// Step is an immutable unit of work within a chain: a callable plus bound
// positional and keyword arguments and an optional named result binding.
// Construction has no side effects; execution is performed only by the
// chain engine.
type Step struct {
	key       string
	callable  core.Callable
	args      []any
	kwargs    map[string]any
	ref       string
	priority  int
	timeout   time.Duration
	templates bool
}

// StepOption customizes a Step at construction time.
type StepOption func(*Step)

// WithArgs binds positional arguments. Values may be Ref markers resolved
// from the arena at execution time.
func WithArgs(args ...any) StepOption {
	return func(s *Step) { s.args = args }
}

// WithKwargs binds keyword arguments. Values may be Ref markers.
func WithKwargs(kwargs map[string]any) StepOption {
	return func(s *Step) { s.kwargs = kwargs }
}

// WithRef names the arena binding under which the step's result is published
// for downstream steps to consume.
func WithRef(ref string) StepOption {
	return func(s *Step) { s.ref = ref }
}

// WithPriority sets the priority used by the PriorityOrder strategy. Higher
// priorities run earlier among steps whose dependencies are satisfied.
func WithPriority(p int) StepOption {
	return func(s *Step) { s.priority = p }
}

// WithTimeout bounds the step's execution time. A zero duration means no
// timeout.
func WithTimeout(d time.Duration) StepOption {
	return func(s *Step) { s.timeout = d }
}

// WithTemplates enables {{.name}} placeholder rendering for the step's string
// arguments. Off by default, so literal strings containing braces reach the
// callable verbatim.
func WithTemplates() StepOption {
	return func(s *Step) { s.templates = true }
}

// NewStep constructs an immutable step. Key uniqueness is enforced by the
// chain the step is added to, not here.
func NewStep(key string, callable core.Callable, opts ...StepOption) Step {
	s := Step{key: key, callable: callable}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Key returns the step's unique identifier within its chain.
func (s Step) Key() string { return s.key }

// Callable returns the callable executed by this step.
func (s Step) Callable() core.Callable { return s.callable }

// Args returns a copy of the bound positional arguments.
func (s Step) Args() []any {
	out := make([]any, len(s.args))
	copy(out, s.args)
	return out
}

// Kwargs returns a copy of the bound keyword arguments.
func (s Step) Kwargs() map[string]any {
	out := make(map[string]any, len(s.kwargs))
	for k, v := range s.kwargs {
		out[k] = v
	}
	return out
}

// Ref returns the result binding name, or "" when the step publishes no
// result.
func (s Step) Ref() string { return s.ref }

// Priority returns the step's scheduling priority.
func (s Step) Priority() int { return s.priority }

// Timeout returns the per-step execution timeout (zero means unbounded).
func (s Step) Timeout() time.Duration { return s.timeout }

// Templates reports whether string arguments are rendered as templates.
func (s Step) Templates() bool { return s.templates }

// refs returns the binding names this step consumes, in argument order with
// kwargs sorted after positional args for determinism.
func (s Step) refs() []string {
	var out []string
	seen := map[string]struct{}{}
	add := func(v any) {
		if r, ok := v.(Ref); ok {
			if _, dup := seen[string(r)]; !dup {
				seen[string(r)] = struct{}{}
				out = append(out, string(r))
			}
		}
	}
	for _, a := range s.args {
		add(a)
	}
	for _, k := range sortedKeys(s.kwargs) {
		add(s.kwargs[k])
	}
	return out
}
