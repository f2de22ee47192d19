package openai

import (
	"context"
	"log/slog"

	"github.com/civita/caseflow/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Oracle implements ai.Oracle using OpenAI-compatible chat APIs.
// Responses are returned verbatim; decoding and schema recovery happen
// at the call site via ai.DecodeObject.
type Oracle struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

// newOracle is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newOracle(config *ai.Config) (*Oracle, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.OracleHost),
		openai.WithToken("none"),
		openai.WithModel(config.OracleModel),
	)
	if err != nil {
		return nil, err
	}

	return &Oracle{
		client:      client,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "openai-oracle"),
	}, nil
}

// NewOracle creates a new oracle using the provided configuration.
//
// Returns ai.Oracle interface to enforce abstraction.
func NewOracle(config *ai.Config) (ai.Oracle, error) {
	return newOracle(config)
}

// Complete generates a completion for the prompt. JSON mode is requested
// so responses lean toward parseable objects, but callers must still
// decode defensively.
func (o *Oracle) Complete(ctx context.Context, prompt string) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}

	response, err := o.client.GenerateContent(ctx, content,
		llms.WithTemperature(o.temperature), llms.WithJSONMode())
	if err != nil {
		o.logger.Error("failed to generate completion", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		o.logger.Debug("no choices returned from model")
		return "", nil
	}

	return response.Choices[0].Content, nil
}
