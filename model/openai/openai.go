// Package openai provides a core.Model binding for the OpenAI Chat
// Completions API. Predict issues a single non-streaming completion; per-call
// option maps may override temperature and the completion token limit.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/hupe1980/swarmchain/core"
	"github.com/hupe1980/swarmchain/model"
)

// Compile time check to ensure Model satisfies the core.Model interface.
var _ core.Model = (*Model)(nil)

// Options configure the OpenAI model binding.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	SystemPrompt        string
}

// Model wraps the OpenAI Chat Completions API behind core.Model.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new OpenAI model using the official client
func NewModel(optFns ...func(o *Options)) *Model {
	client := openai.NewClient()
	return NewModelFromClient(&client, optFns...)
}

// NewModelFromClient creates a new OpenAI model from an existing client
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// ModelName implements core.Model.
func (m *Model) ModelName() string { return m.opts.Model }

// SetModelName implements core.Model.
func (m *Model) SetModelName(name string) { m.opts.Model = name }

// Predict implements core.Model. It sends the input as a single user message
// and returns the concatenated text of the first choice.
func (m *Model) Predict(ctx context.Context, input string, options map[string]any) (string, error) {
	temperature := model.Float64Option(options, model.OptionTemperature, m.opts.Temperature)
	maxTokens := model.Int64Option(options, model.OptionMaxTokens, m.opts.MaxCompletionTokens)

	var messages []openai.ChatCompletionMessageParamUnion
	if m.opts.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(m.opts.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(input))

	resp, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               m.opts.Model,
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// Fit implements core.Model. The Chat Completions API has no tuning surface.
func (m *Model) Fit(context.Context, []core.TrainingSample) error {
	return model.ErrFitUnsupported
}
