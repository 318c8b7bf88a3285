// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/masrofi-bfa-go/internal/domain"
)

// LLMGateway sends a single prompt to the configured chat-completion service.
type LLMGateway interface {
	Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.Completion, error)
	Configured() bool
}

// StatusStore is the append/scan collection behind /api/status.
// Implemented by the Mongo, Postgres, Supabase and in-memory adapters.
type StatusStore interface {
	Insert(ctx context.Context, rec *domain.StatusRecord) error
	List(ctx context.Context, skip, limit int) ([]domain.StatusRecord, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
