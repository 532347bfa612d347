package chain

import (
	"strings"
	"time"
)

// refMarker prefixes a serialized Ref argument inside a definition. A step
// argument of Ref("doc") round-trips as the string "@ref:doc".
const refMarker = "@ref:"

// StepDefinition is the serializable descriptor of one step. Callable names
// are resolved against a CallableResolver (typically a function registry)
// when the definition is built into a live chain.
type StepDefinition struct {
	Key       string         `json:"key" yaml:"key"`
	Callable  string         `json:"callable" yaml:"callable"`
	Args      []any          `json:"args,omitempty" yaml:"args,omitempty"`
	Kwargs    map[string]any `json:"kwargs,omitempty" yaml:"kwargs,omitempty"`
	Ref       string         `json:"ref,omitempty" yaml:"ref,omitempty"`
	Priority  int            `json:"priority,omitempty" yaml:"priority,omitempty"`
	Timeout   string         `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Templates bool           `json:"templates,omitempty" yaml:"templates,omitempty"`
}

// Definition is the serializable form of a chain: an ordered list of step
// descriptors plus the execution context (strategies, output binding and the
// chain-level configuration map). Definitions round-trip losslessly through
// every supported codec format.
type Definition struct {
	Key        string           `json:"key" yaml:"key"`
	Ordering   string           `json:"ordering,omitempty" yaml:"ordering,omitempty"`
	Processing string           `json:"processing,omitempty" yaml:"processing,omitempty"`
	Output     string           `json:"output,omitempty" yaml:"output,omitempty"`
	Config     map[string]any   `json:"config,omitempty" yaml:"config,omitempty"`
	Steps      []StepDefinition `json:"steps" yaml:"steps"`
}

// Validate checks the definition's structural invariants eagerly: unique
// step keys, resolvable strategy names, parsable timeouts, an acyclic
// dependency graph, a publishable output binding and an execution plan the
// named ordering strategy can actually produce. Load and Build never defer
// these failures to execution.
func (d Definition) Validate() error {
	ordering, ok := OrderingByName(d.Ordering)
	if !ok {
		return &SerializationFormatError{Format: d.Ordering, Reason: "unknown ordering strategy"}
	}
	if _, ok := ProcessingByName(d.Processing); !ok {
		return &SerializationFormatError{Format: d.Processing, Reason: "unknown processing strategy"}
	}

	seen := make(map[string]struct{}, len(d.Steps))
	produced := make(map[string]struct{}, len(d.Steps))
	for _, sd := range d.Steps {
		if _, dup := seen[sd.Key]; dup {
			return &DuplicateStepKeyError{Key: sd.Key}
		}
		seen[sd.Key] = struct{}{}
		if sd.Ref != "" {
			produced[sd.Ref] = struct{}{}
		}
		if sd.Timeout != "" {
			if _, err := time.ParseDuration(sd.Timeout); err != nil {
				return &SerializationFormatError{Format: sd.Timeout, Reason: "invalid step timeout"}
			}
		}
	}
	if d.Output != "" {
		if _, ok := produced[d.Output]; !ok {
			return &UnknownOutputError{ChainKey: d.Key, Output: d.Output}
		}
	}

	steps, err := d.skeletonSteps()
	if err != nil {
		return err
	}
	// Cycle detection over the ref graph, independent of the ordering.
	if _, err := (DependencyOrder{}).Plan(steps); err != nil {
		return err
	}
	// The definition's own strategy must be able to plan the step set, so a
	// declared order consuming a ref before its producer fails here instead
	// of at invocation.
	if _, err := ordering.Plan(steps); err != nil {
		return err
	}
	return nil
}

// skeletonSteps builds callable-less steps carrying only the reference
// structure, for structural validation.
func (d Definition) skeletonSteps() ([]Step, error) {
	steps := make([]Step, 0, len(d.Steps))
	for _, sd := range d.Steps {
		opts := []StepOption{WithArgs(decodeArgs(sd.Args)...), WithKwargs(decodeKwargs(sd.Kwargs))}
		if sd.Ref != "" {
			opts = append(opts, WithRef(sd.Ref))
		}
		if sd.Priority != 0 {
			opts = append(opts, WithPriority(sd.Priority))
		}
		steps = append(steps, NewStep(sd.Key, nil, opts...))
	}
	return steps, nil
}

// DefinitionOf captures a live chain back into its serializable form. The
// callable name of each step is taken from the names map (step key →
// registry identifier); steps missing from the map serialize with an empty
// callable and cannot be rebuilt.
func DefinitionOf(c *Chain, names map[string]string) Definition {
	def := Definition{
		Key:        c.Key(),
		Ordering:   c.Ordering().Name(),
		Processing: c.Processing().Name(),
		Output:     c.output,
		Config:     c.Config(),
		Steps:      make([]StepDefinition, 0, c.Len()),
	}
	for _, s := range c.Steps() {
		sd := StepDefinition{
			Key:       s.Key(),
			Callable:  names[s.Key()],
			Args:      encodeArgs(s.Args()),
			Kwargs:    encodeKwargs(s.Kwargs()),
			Ref:       s.Ref(),
			Priority:  s.Priority(),
			Templates: s.Templates(),
		}
		if s.Timeout() > 0 {
			sd.Timeout = s.Timeout().String()
		}
		def.Steps = append(def.Steps, sd)
	}
	return def
}

func encodeArgs(args []any) []any {
	if len(args) == 0 {
		return nil
	}
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = encodeValue(a)
	}
	return out
}

func encodeKwargs(kwargs map[string]any) map[string]any {
	if len(kwargs) == 0 {
		return nil
	}
	out := make(map[string]any, len(kwargs))
	for k, v := range kwargs {
		out[k] = encodeValue(v)
	}
	return out
}

func encodeValue(v any) any {
	if r, ok := v.(Ref); ok {
		return refMarker + string(r)
	}
	return v
}

func decodeArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = decodeValue(a)
	}
	return out
}

func decodeKwargs(kwargs map[string]any) map[string]any {
	out := make(map[string]any, len(kwargs))
	for k, v := range kwargs {
		out[k] = decodeValue(v)
	}
	return out
}

func decodeValue(v any) any {
	if s, ok := v.(string); ok && strings.HasPrefix(s, refMarker) {
		return Ref(strings.TrimPrefix(s, refMarker))
	}
	return v
}
