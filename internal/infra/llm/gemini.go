package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/boddenberg/masrofi-bfa-go/internal/domain"

	"google.golang.org/genai"
)

// GeminiProvider calls Google's Gemini models through the GenAI SDK.
type GeminiProvider struct {
	client *genai.Client
}

var _ Provider = (*GeminiProvider)(nil)

// GeminiOption adjusts the client config before the client is created.
type GeminiOption func(*genai.ClientConfig)

// WithGeminiEndpoint points the client at baseURL using httpClient.
// Either may be empty.
func WithGeminiEndpoint(baseURL string, httpClient *http.Client) GeminiOption {
	return func(cc *genai.ClientConfig) {
		if baseURL != "" {
			cc.HTTPOptions.BaseURL = baseURL
		}
		if httpClient != nil {
			cc.HTTPClient = httpClient
		}
	}
}

// NewGeminiProvider creates the Gemini client for apiKey.
func NewGeminiProvider(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiProvider, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cc)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

// Name implements Provider.
func (p *GeminiProvider) Name() string { return "gemini" }

// Generate asks for a JSON-only reply so the reconciler always has a target.
func (p *GeminiProvider) Generate(ctx context.Context, model string, req *domain.CompletionRequest) (*domain.Completion, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.4)),
		ResponseMIMEType: "application/json",
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	result, err := p.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), config)
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}

	completion := &domain.Completion{Text: result.Text()}
	if usage := result.UsageMetadata; usage != nil {
		completion.PromptTokens = int(usage.PromptTokenCount)
		completion.CompletionTokens = int(usage.CandidatesTokenCount)
	}
	return completion, nil
}
