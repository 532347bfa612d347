package core

import "context"

// Model is the minimal capability contract for a predictive model plugged
// into a chain or a swarm. The orchestration core never inspects a model
// beyond this surface; provider bindings live under the model package.
type Model interface {
	// ModelName returns the currently configured model identifier.
	ModelName() string

	// SetModelName reconfigures the model identifier used for subsequent
	// predictions.
	SetModelName(name string)

	// Predict produces a completion for the given input. Options are
	// provider-specific keyword arguments (temperature, max tokens, ...).
	Predict(ctx context.Context, input string, options map[string]any) (string, error)

	// Fit adapts the model to the given training samples. Bindings for
	// providers without a tuning surface return an error.
	Fit(ctx context.Context, samples []TrainingSample) error
}

// TrainingSample is a single input/target pair for Model.Fit.
type TrainingSample struct {
	Input  string `json:"input"`
	Target string `json:"target"`
}
