// Package store holds the status_checks backends: MongoDB, Postgres and an
// in-process slice. The Supabase backend lives in infra/supabase.
package store

import (
	"context"
	"sync"

	"github.com/boddenberg/masrofi-bfa-go/internal/domain"
	"github.com/boddenberg/masrofi-bfa-go/internal/port"
)

// Memory keeps records in insertion order. Contents are lost on restart.
type Memory struct {
	mu      sync.RWMutex
	records []domain.StatusRecord
}

var _ port.StatusStore = (*Memory)(nil)

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{}
}

// Insert implements port.StatusStore.
func (m *Memory) Insert(_ context.Context, rec *domain.StatusRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, *rec)
	return nil
}

// List implements port.StatusStore.
func (m *Memory) List(_ context.Context, skip, limit int) ([]domain.StatusRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if skip >= len(m.records) {
		return []domain.StatusRecord{}, nil
	}
	end := len(m.records)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}

	out := make([]domain.StatusRecord, end-skip)
	copy(out, m.records[skip:end])
	return out, nil
}

// Ping implements port.StatusStore.
func (m *Memory) Ping(context.Context) error { return nil }

// Close implements port.StatusStore.
func (m *Memory) Close(context.Context) error { return nil }
