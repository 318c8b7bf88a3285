package store

import (
	"context"
	"fmt"
	"net/http"

	"github.com/boddenberg/masrofi-bfa-go/internal/config"
	"github.com/boddenberg/masrofi-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/masrofi-bfa-go/internal/infra/supabase"
	"github.com/boddenberg/masrofi-bfa-go/internal/port"

	"go.uber.org/zap"
)

// New opens the backend selected by cfg.StatusStore.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (port.StatusStore, error) {
	switch cfg.StatusStore {
	case config.StoreMongo:
		return NewMongo(ctx, cfg.MongoURL, cfg.DBName, logger)
	case config.StorePostgres:
		return NewPostgres(ctx, cfg.DatabaseURL, logger)
	case config.StoreSupabase:
		cb := resilience.NewCircuitBreaker("supabase", cfg.Breaker())
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		client := supabase.NewClient(httpClient, cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseServiceKey, cb, logger)
		logger.Info("using supabase status store", zap.String("url", cfg.SupabaseURL))
		return supabase.NewStatusStore(client), nil
	case config.StoreMemory:
		logger.Warn("using in-memory status store; records are lost on restart")
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown status store %q", cfg.StatusStore)
	}
}
