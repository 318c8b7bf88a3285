package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/masrofi-bfa-go/internal/domain"
	"github.com/boddenberg/masrofi-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatusService creates and lists status check-ins.
type StatusService struct {
	store  port.StatusStore
	logger *zap.Logger
	now    func() time.Time
}

// NewStatusService creates the service over store.
func NewStatusService(store port.StatusStore, logger *zap.Logger) *StatusService {
	return &StatusService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Create stores a new record for clientName and returns it. Any name is
// accepted, including an empty one.
func (s *StatusService) Create(ctx context.Context, clientName string) (*domain.StatusRecord, error) {
	ctx, span := tracer.Start(ctx, "StatusService.Create")
	defer span.End()

	rec := &domain.StatusRecord{
		ID:         uuid.NewString(),
		ClientName: clientName,
		Timestamp:  s.now().UTC(),
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		s.logger.Error("failed to insert status record", zap.String("client_name", clientName), zap.Error(err))
		return nil, fmt.Errorf("insert status record: %w", err)
	}
	return rec, nil
}

// List returns at most MaxStatusPageSize records starting at skip.
// A limit of zero means the maximum.
func (s *StatusService) List(ctx context.Context, skip, limit int) ([]domain.StatusRecord, error) {
	ctx, span := tracer.Start(ctx, "StatusService.List")
	defer span.End()

	if skip < 0 {
		return nil, &domain.ErrValidation{Field: "skip", Message: "must not be negative"}
	}
	if limit < 0 {
		return nil, &domain.ErrValidation{Field: "limit", Message: "must not be negative"}
	}
	if limit == 0 || limit > domain.MaxStatusPageSize {
		limit = domain.MaxStatusPageSize
	}

	records, err := s.store.List(ctx, skip, limit)
	if err != nil {
		s.logger.Error("failed to list status records", zap.Error(err))
		return nil, fmt.Errorf("list status records: %w", err)
	}
	if records == nil {
		records = []domain.StatusRecord{}
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Ping checks that the store is reachable.
func (s *StatusService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
