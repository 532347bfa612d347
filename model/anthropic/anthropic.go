// Package anthropic provides a core.Model binding for the Anthropic Claude
// Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/swarmchain/core"
	"github.com/hupe1980/swarmchain/model"
)

// Compile time check to ensure Model satisfies the core.Model interface.
var _ core.Model = (*Model)(nil)

// Options configures the Anthropic model binding (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model        anthropic.Model
	Temperature  float64
	MaxTokens    int64
	APIKey       string
	SystemPrompt string
}

// Model wraps the Anthropic Messages API behind core.Model.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel creates a new Anthropic model using the official client
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Model{
		client: &client,
		opts:   opts,
	}
}

// NewModelFromClient creates a new Anthropic model from an existing client
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{
		client: client,
		opts:   opts,
	}
}

// ModelName implements core.Model.
func (m *Model) ModelName() string { return string(m.opts.Model) }

// SetModelName implements core.Model.
func (m *Model) SetModelName(name string) { m.opts.Model = anthropic.Model(name) }

// Predict implements core.Model. It sends the input as a single user message
// and returns the concatenated text blocks of the response.
func (m *Model) Predict(ctx context.Context, input string, options map[string]any) (string, error) {
	temperature := model.Float64Option(options, model.OptionTemperature, m.opts.Temperature)
	maxTokens := model.Int64Option(options, model.OptionMaxTokens, m.opts.MaxTokens)

	params := anthropic.MessageNewParams{
		Model:       m.opts.Model,
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(input))},
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
	}
	if m.opts.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: m.opts.SystemPrompt}}
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}

	return sb.String(), nil
}

// Fit implements core.Model. The Messages API has no tuning surface.
func (m *Model) Fit(context.Context, []core.TrainingSample) error {
	return model.ErrFitUnsupported
}
