// Package model holds shared plumbing for the provider bindings satisfying
// the core.Model capability contract. Providers live in sub-packages
// (openai, anthropic); the orchestration core depends only on core.Model and
// never on a concrete binding.
package model

import (
	"context"
	"fmt"

	"github.com/hupe1980/swarmchain/core"
)

// ErrFitUnsupported is returned by provider bindings whose API exposes no
// tuning surface.
var ErrFitUnsupported = fmt.Errorf("model: fit is not supported by this provider")

// Option keys recognized in the options map passed to Predict. Unknown keys
// are ignored by the bindings.
const (
	// OptionTemperature overrides sampling temperature (float64).
	OptionTemperature = "temperature"
	// OptionMaxTokens overrides the completion token limit (int or int64).
	OptionMaxTokens = "max_tokens"
)

// Float64Option extracts a float64 option, tolerating int values.
func Float64Option(options map[string]any, key string, fallback float64) float64 {
	switch v := options[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return fallback
	}
}

// Int64Option extracts an int64 option, tolerating int and float64 values.
func Int64Option(options map[string]any, key string, fallback int64) int64 {
	switch v := options[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return fallback
	}
}

// Static is a deterministic core.Model for tests and offline chains: Predict
// echoes the input through a user-supplied transform.
type Static struct {
	name      string
	transform func(input string) string
}

// NewStatic creates a Static model. A nil transform echoes the input.
func NewStatic(name string, transform func(input string) string) *Static {
	if transform == nil {
		transform = func(input string) string { return input }
	}
	return &Static{name: name, transform: transform}
}

// ModelName implements core.Model.
func (m *Static) ModelName() string { return m.name }

// SetModelName implements core.Model.
func (m *Static) SetModelName(name string) { m.name = name }

// Predict implements core.Model.
func (m *Static) Predict(_ context.Context, input string, _ map[string]any) (string, error) {
	return m.transform(input), nil
}

// Fit implements core.Model.
func (m *Static) Fit(context.Context, []core.TrainingSample) error {
	return ErrFitUnsupported
}
