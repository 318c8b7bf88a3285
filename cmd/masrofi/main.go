package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/masrofi-bfa-go/internal/config"
	"github.com/boddenberg/masrofi-bfa-go/internal/handler"
	"github.com/boddenberg/masrofi-bfa-go/internal/infra/llm"
	"github.com/boddenberg/masrofi-bfa-go/internal/infra/observability"
	"github.com/boddenberg/masrofi-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/masrofi-bfa-go/internal/infra/store"
	"github.com/boddenberg/masrofi-bfa-go/internal/service"

	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("status_store", cfg.StatusStore),
		zap.String("llm_model", cfg.LLMModel),
		zap.Bool("llm_configured", cfg.LLMConfigured()),
		zap.Duration("llm_timeout", cfg.LLMTimeout),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(cfg.OTLPEndpoint, "masrofi-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- LLM gateway ---
	providers, err := buildProviders(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to create LLM provider", zap.Error(err))
	}
	if !cfg.LLMConfigured() {
		logger.Warn("LLM_API_KEY not set: /api/ai/analyze will fail and /api/ai/tips will serve canned tips")
	}
	gateway := llm.NewGateway(
		llm.Config{APIKey: cfg.LLMAPIKey, DefaultModel: cfg.LLMModel, Timeout: cfg.LLMTimeout},
		resilience.NewCircuitBreaker("llm", cfg.Breaker()),
		metrics,
		logger,
		providers...,
	)

	// --- Status store ---
	statusStore, err := store.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open status store", zap.Error(err))
	}

	// --- Services ---
	advisor := service.NewAdvisor(gateway, cfg.LLMModel, metrics, logger)
	statusSvc := service.NewStatusService(statusStore, logger)

	// --- Router ---
	router := handler.NewRouter(advisor, statusSvc, metrics, logger)

	// --- Server ---
	// WriteTimeout leaves room for the LLM deadline.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.LLMTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	// --- Graceful shutdown: HTTP server, then store, then tracer ---
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server forced shutdown: %w", err))
		}
		if err := statusStore.Close(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("close status store: %w", err))
		}
		if err := shutdownTracer(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("flush tracer: %w", err))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		logger.Error("shutdown with errors", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// buildProviders creates the client for the provider named in LLM_MODEL.
// Without a key no client is created and the gateway reports itself unconfigured.
func buildProviders(ctx context.Context, cfg *config.Config) ([]llm.Provider, error) {
	if !cfg.LLMConfigured() {
		return nil, nil
	}

	name, _ := llm.ParseModel(cfg.LLMModel, cfg.LLMModel)
	switch name {
	case "gemini":
		p, err := llm.NewGeminiProvider(ctx, cfg.LLMAPIKey, llm.WithGeminiEndpoint(cfg.LLMBaseURL, nil))
		if err != nil {
			return nil, err
		}
		return []llm.Provider{p}, nil
	case "anthropic":
		var opts []option.RequestOption
		if cfg.LLMBaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.LLMBaseURL))
		}
		return []llm.Provider{llm.NewAnthropicProvider(cfg.LLMAPIKey, cfg.LLMMaxTokens, opts...)}, nil
	case "openai":
		return []llm.Provider{llm.NewOpenAIProvider(cfg.LLMAPIKey, cfg.LLMBaseURL, nil, cfg.LLMMaxTokens)}, nil
	default:
		return nil, fmt.Errorf("unsupported provider %q in LLM_MODEL", name)
	}
}
