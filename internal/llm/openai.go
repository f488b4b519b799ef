package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider generates completions through the OpenAI chat completions
// API. The client is shared with the knowledge embedder.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIProvider binds an OpenAI chat model with fixed sampling
// parameters. A nil client marks the binding unconfigured; it fails with
// ErrProviderUnconfigured at first use.
func NewOpenAIProvider(client *openai.Client, model string, temperature float32) *OpenAIProvider {
	return &OpenAIProvider{
		client:      client,
		model:       model,
		temperature: temperature,
	}
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return "openai" }

// Generate implements Provider.
func (p *OpenAIProvider) Generate(ctx context.Context, messages []Message) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("%w: openai: missing OPENAI_API_KEY", ErrProviderUnconfigured)
	}

	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: p.temperature,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: openai: %w", ErrGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai: no choices returned", ErrGeneration)
	}
	return resp.Choices[0].Message.Content, nil
}
