package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/boddenberg/masrofi-bfa-go/internal/domain"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider calls Claude models through the Messages API.
type AnthropicProvider struct {
	client    anthropic.Client
	maxTokens int64
}

var _ Provider = (*AnthropicProvider)(nil)

// NewAnthropicProvider creates the client. SDK-level retries are disabled:
// a failed call is reported, never repeated.
func NewAnthropicProvider(apiKey string, maxTokens int, opts ...option.RequestOption) *AnthropicProvider {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	return &AnthropicProvider{
		client:    anthropic.NewClient(append(base, opts...)...),
		maxTokens: int64(maxTokens),
	}
}

// Name implements Provider.
func (p *AnthropicProvider) Name() string { return "anthropic" }

// Generate implements Provider.
func (p *AnthropicProvider) Generate(ctx context.Context, model string, req *domain.CompletionRequest) (*domain.Completion, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return &domain.Completion{
		Text:             sb.String(),
		PromptTokens:     int(message.Usage.InputTokens),
		CompletionTokens: int(message.Usage.OutputTokens),
	}, nil
}
