package tool

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/swarmchain/core"
	"github.com/hupe1980/swarmchain/internal/util"
)

// ParameterSpec describes one declared parameter of a registered function,
// in declaration order.
type ParameterSpec struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Default  any    `json:"default,omitempty" yaml:"default,omitempty"`
	Required bool   `json:"required" yaml:"required"`
}

// FunctionDefinition declares an invocable function: a unique identifier,
// ordered parameter specs, a return type, an execution context map and the
// underlying callable. Definitions are registered once and referenced by
// identifier from any number of chain steps.
type FunctionDefinition struct {
	Identifier       string          `json:"identifier" yaml:"identifier"`
	Parameters       []ParameterSpec `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	ReturnType       string          `json:"return_type,omitempty" yaml:"return_type,omitempty"`
	ExecutionContext map[string]any  `json:"execution_context,omitempty" yaml:"execution_context,omitempty"`
	Callable         core.Callable   `json:"-" yaml:"-"`
}

// DuplicateFunctionError reports a second registration under an identifier.
type DuplicateFunctionError struct {
	Identifier string
}

// Error implements the error interface.
func (e *DuplicateFunctionError) Error() string {
	return fmt.Sprintf("tool: function %q already registered", e.Identifier)
}

// FunctionRegistry stores function definitions keyed by identifier and
// resolves them into chain callables that validate arguments against their
// parameter specs. It implements chain.CallableResolver and is safe for
// concurrent use.
type FunctionRegistry struct {
	mu    sync.RWMutex
	funcs map[string]FunctionDefinition
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{funcs: make(map[string]FunctionDefinition)}
}

// Register adds a definition. A definition without a callable or with an
// already-taken identifier is rejected.
func (r *FunctionRegistry) Register(def FunctionDefinition) error {
	if def.Identifier == "" {
		return fmt.Errorf("tool: function definition requires an identifier")
	}
	if def.Callable == nil {
		return fmt.Errorf("tool: function %q has no callable", def.Identifier)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[def.Identifier]; exists {
		return &DuplicateFunctionError{Identifier: def.Identifier}
	}
	r.funcs[def.Identifier] = def
	return nil
}

// RegisterFunc is a shorthand for registering a bare callable with no
// declared parameters.
func (r *FunctionRegistry) RegisterFunc(identifier string, fn core.Callable) error {
	return r.Register(FunctionDefinition{Identifier: identifier, Callable: fn})
}

// Get returns the definition registered under identifier.
func (r *FunctionRegistry) Get(identifier string) (FunctionDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.funcs[identifier]
	return def, ok
}

// Identifiers lists the registered identifiers in sorted order.
func (r *FunctionRegistry) Identifiers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.funcs))
	for id := range r.funcs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve implements chain.CallableResolver: the returned callable applies
// parameter defaults, validates required parameters and types against the
// definition's specs, then invokes the underlying function.
func (r *FunctionRegistry) Resolve(identifier string) (core.Callable, bool) {
	r.mu.RLock()
	def, ok := r.funcs[identifier]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
		bound, err := bindParameters(def, args, kwargs)
		if err != nil {
			return nil, err
		}
		return def.Callable(ctx, args, bound)
	}, true
}

// bindParameters merges positional args (by spec order) and kwargs into a
// single validated parameter map. Functions with no declared specs accept
// anything.
func bindParameters(def FunctionDefinition, args []any, kwargs map[string]any) (map[string]any, error) {
	bound := make(map[string]any, len(kwargs)+len(args))
	for k, v := range kwargs {
		bound[k] = v
	}
	if len(def.Parameters) == 0 {
		return bound, nil
	}

	for i, spec := range def.Parameters {
		if i < len(args) {
			bound[spec.Name] = args[i]
		}
		if _, present := bound[spec.Name]; !present && spec.Default != nil {
			bound[spec.Name] = spec.Default
		}
	}
	for _, spec := range def.Parameters {
		value, present := bound[spec.Name]
		if !present {
			if spec.Required {
				return nil, &util.ValidationError{Field: spec.Name, Message: "required parameter is missing"}
			}
			continue
		}
		if !util.ValueMatchesType(value, spec.Type) {
			return nil, &util.ValidationError{
				Field:   spec.Name,
				Value:   value,
				Message: fmt.Sprintf("expected type %s, got %T", spec.Type, value),
			}
		}
	}
	return bound, nil
}

// AsTool exposes a registered function as a core.Tool whose parameter schema
// is derived from the definition's specs.
func (r *FunctionRegistry) AsTool(identifier, description string) (core.Tool, error) {
	r.mu.RLock()
	def, ok := r.funcs[identifier]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("tool: function %q is not registered", identifier)
	}

	properties := make(map[string]any, len(def.Parameters))
	var required []string
	for _, spec := range def.Parameters {
		properties[spec.Name] = map[string]any{"type": spec.Type}
		if spec.Required {
			required = append(required, spec.Name)
		}
	}
	schema := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		schema["required"] = required
	}

	return NewFunctionTool(identifier, description, schema, func(ctx context.Context, args map[string]any) (any, error) {
		bound, err := bindParameters(def, nil, args)
		if err != nil {
			return nil, err
		}
		return def.Callable(ctx, nil, bound)
	}), nil
}
