package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/boddenberg/masrofi-bfa-go/internal/domain"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider speaks the chat-completions protocol. With a custom base URL
// it also serves OpenAI-compatible gateways (universal keys, proxies, local models).
type OpenAIProvider struct {
	client    *openai.Client
	maxTokens int
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates the client. baseURL and httpClient are optional.
func NewOpenAIProvider(apiKey, baseURL string, httpClient *http.Client, maxTokens int) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAIProvider{
		client:    openai.NewClientWithConfig(cfg),
		maxTokens: maxTokens,
	}
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return "openai" }

// Generate implements Provider. The session id travels as the end-user field.
func (p *OpenAIProvider) Generate(ctx context.Context, model string, req *domain.CompletionRequest) (*domain.Completion, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: p.maxTokens,
		User:      req.SessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from openai")
	}

	return &domain.Completion{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}
