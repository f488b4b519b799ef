package llm

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

// GoogleProvider generates completions through the Gemini API. The genai
// client is expensive to construct, so it is built lazily on first use and
// reused for the life of the process.
type GoogleProvider struct {
	apiKey      string
	model       string
	temperature float32

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGoogleProvider binds a Gemini model with fixed sampling parameters.
// An empty apiKey marks the binding unconfigured.
func NewGoogleProvider(apiKey, model string, temperature float32) *GoogleProvider {
	return &GoogleProvider{
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
	}
}

// Name implements Provider.
func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) init(ctx context.Context) (*genai.Client, error) {
	p.once.Do(func() {
		p.client, p.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  p.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return p.client, p.initErr
}

// Generate implements Provider.
func (p *GoogleProvider) Generate(ctx context.Context, messages []Message) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("%w: google: missing GOOGLE_API_KEY", ErrProviderUnconfigured)
	}

	client, err := p.init(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: google: creating client: %w", ErrGeneration, err)
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(p.temperature),
	}
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			cfg.SystemInstruction = genai.NewContentFromText(m.Content, genai.RoleUser)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	resp, err := client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: google: %w", ErrGeneration, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: google: empty response", ErrGeneration)
	}
	return text, nil
}
