// Package llm talks to the chat-completion services behind the AI routes.
//
// The Gateway owns the credential, the per-call deadline and the circuit
// breaker; providers only translate one stateless prompt into one SDK call.
// Every call carries its own session id, so no conversation state is ever
// shared between requests.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/masrofi-bfa-go/internal/domain"
	"github.com/boddenberg/masrofi-bfa-go/internal/infra/observability"
	"github.com/boddenberg/masrofi-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("infra/llm")

// DefaultTimeout bounds a call when Config.Timeout is unset.
const DefaultTimeout = 60 * time.Second

// Provider generates a completion with one vendor SDK.
type Provider interface {
	Name() string
	Generate(ctx context.Context, model string, req *domain.CompletionRequest) (*domain.Completion, error)
}

// Config holds the gateway settings.
type Config struct {
	APIKey       string
	DefaultModel string // provider/model
	Timeout      time.Duration
}

// Gateway routes prompts to the provider named by the model selector.
type Gateway struct {
	apiKey       string
	defaultModel string
	timeout      time.Duration
	providers    map[string]Provider
	cb           *gobreaker.CircuitBreaker
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewGateway creates the gateway with its providers injected.
func NewGateway(cfg Config, cb *gobreaker.CircuitBreaker, metrics *observability.Metrics, logger *zap.Logger, providers ...Provider) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Gateway{
		apiKey:       cfg.APIKey,
		defaultModel: cfg.DefaultModel,
		timeout:      cfg.Timeout,
		providers:    byName,
		cb:           cb,
		metrics:      metrics,
		logger:       logger,
	}
}

// Configured reports whether a credential is present.
func (g *Gateway) Configured() bool {
	return strings.TrimSpace(g.apiKey) != ""
}

// Complete sends one prompt and waits for the full reply.
//
// The call is detached from the caller's cancellation (a client hanging up
// does not abort it) but is always bounded by the gateway timeout. Nothing is
// retried.
func (g *Gateway) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.Completion, error) {
	if !g.Configured() {
		return nil, &domain.ErrConfiguration{Setting: "LLM_API_KEY"}
	}

	providerName, model := ParseModel(req.Model, g.defaultModel)
	provider, ok := g.providers[providerName]
	if !ok {
		return nil, &domain.ErrConfiguration{
			Setting: "LLM_MODEL",
			Reason:  fmt.Sprintf("unsupported provider %q", providerName),
		}
	}

	call := *req
	if call.SessionID == "" {
		call.SessionID = domain.NewSessionID("chat")
	}

	ctx, span := tracer.Start(ctx, "Gateway.Complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", providerName),
		attribute.String("llm.model", model),
		attribute.String("llm.session_id", call.SessionID),
	)

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
	defer cancel()

	service := "llm/" + providerName
	start := time.Now()
	result, err := g.cb.Execute(func() (any, error) {
		c, err := provider.Generate(callCtx, model, &call)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(c.Text) == "" {
			return nil, errors.New("empty completion")
		}
		return c, nil
	})
	g.metrics.RecordRequestDuration(service, time.Since(start))

	if err != nil {
		g.metrics.IncrExternalError(service)
		switch {
		case resilience.IsOpen(err):
			err = &domain.ErrCircuitOpen{Service: service}
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded):
			err = &domain.ErrTimeout{Operation: service}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.logger.Error("llm call failed",
			zap.String("provider", providerName),
			zap.String("model", model),
			zap.String("session_id", call.SessionID),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return nil, &domain.ErrUpstream{Service: service, Err: err}
	}

	completion := result.(*domain.Completion)
	completion.Provider = providerName
	completion.Model = model
	completion.SessionID = call.SessionID
	g.metrics.RecordTokens(completion.PromptTokens, completion.CompletionTokens)

	g.logger.Debug("llm call OK",
		zap.String("provider", providerName),
		zap.String("model", model),
		zap.String("session_id", call.SessionID),
		zap.Int("prompt_tokens", completion.PromptTokens),
		zap.Int("completion_tokens", completion.CompletionTokens),
		zap.Duration("latency", time.Since(start)),
	)
	return completion, nil
}

// ParseModel splits a "provider/model" selector. A selector without a
// provider prefix uses the provider of fallback.
func ParseModel(selector, fallback string) (provider, model string) {
	if selector == "" {
		selector = fallback
	}
	if p, m, ok := strings.Cut(selector, "/"); ok && p != "" && m != "" {
		return strings.ToLower(p), m
	}
	fp, _, _ := strings.Cut(fallback, "/")
	return strings.ToLower(fp), selector
}
