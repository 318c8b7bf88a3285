package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/boddenberg/masrofi-bfa-go/internal/domain"
	"github.com/boddenberg/masrofi-bfa-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
)

const statusTable = "status_checks"

// StatusStore keeps status records in the status_checks table.
type StatusStore struct {
	client *Client
}

var _ port.StatusStore = (*StatusStore)(nil)

// NewStatusStore creates the store over client.
func NewStatusStore(client *Client) *StatusStore {
	return &StatusStore{client: client}
}

// Insert implements port.StatusStore.
func (s *StatusStore) Insert(ctx context.Context, rec *domain.StatusRecord) error {
	ctx, span := tracer.Start(ctx, "Supabase.InsertStatus")
	defer span.End()

	if _, err := s.client.execute(ctx, http.MethodPost, statusTable, rec); err != nil {
		return &domain.ErrStorage{Backend: "supabase", Op: "insert", Err: err}
	}
	return nil
}

// List implements port.StatusStore. Rows come back in table order.
func (s *StatusStore) List(ctx context.Context, skip, limit int) ([]domain.StatusRecord, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListStatus")
	defer span.End()
	span.SetAttributes(attribute.Int("skip", skip), attribute.Int("limit", limit))

	path := fmt.Sprintf("%s?select=id,client_name,timestamp&offset=%d&limit=%d", statusTable, skip, limit)
	body, err := s.client.execute(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, &domain.ErrStorage{Backend: "supabase", Op: "list", Err: err}
	}

	records := []domain.StatusRecord{}
	if len(body) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &domain.ErrStorage{Backend: "supabase", Op: "list", Err: fmt.Errorf("decode rows: %w", err)}
	}
	return records, nil
}

// Ping implements port.StatusStore.
func (s *StatusStore) Ping(ctx context.Context) error {
	if _, err := s.client.doRequest(ctx, http.MethodGet, statusTable+"?select=id&limit=1", nil); err != nil {
		return &domain.ErrStorage{Backend: "supabase", Op: "ping", Err: err}
	}
	return nil
}

// Close implements port.StatusStore.
func (s *StatusStore) Close(context.Context) error {
	s.client.httpClient.CloseIdleConnections()
	return nil
}
