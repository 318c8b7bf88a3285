package store

import (
	"context"
	"fmt"

	"github.com/boddenberg/masrofi-bfa-go/internal/domain"
	"github.com/boddenberg/masrofi-bfa-go/internal/port"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const createStatusTable = `
CREATE TABLE IF NOT EXISTS status_checks (
	seq         BIGSERIAL PRIMARY KEY,
	id          TEXT NOT NULL UNIQUE,
	client_name TEXT NOT NULL,
	timestamp   TIMESTAMPTZ NOT NULL
)`

// Postgres stores records in the status_checks table.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

var _ port.StatusStore = (*Postgres)(nil)

// NewPostgres opens a pool for dsn and creates the table if missing.
func NewPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if _, err := pool.Exec(ctx, createStatusTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create status_checks table: %w", err)
	}

	logger.Info("connected to postgres")
	return &Postgres{pool: pool, logger: logger}, nil
}

// Insert implements port.StatusStore.
func (p *Postgres) Insert(ctx context.Context, rec *domain.StatusRecord) error {
	ctx, span := tracer.Start(ctx, "Postgres.Insert")
	defer span.End()

	_, err := p.pool.Exec(ctx,
		`INSERT INTO status_checks (id, client_name, timestamp) VALUES ($1, $2, $3)`,
		rec.ID, rec.ClientName, rec.Timestamp,
	)
	if err != nil {
		return &domain.ErrStorage{Backend: "postgres", Op: "insert", Err: err}
	}
	return nil
}

// List implements port.StatusStore. Rows come back in insertion order.
func (p *Postgres) List(ctx context.Context, skip, limit int) ([]domain.StatusRecord, error) {
	ctx, span := tracer.Start(ctx, "Postgres.List")
	defer span.End()

	rows, err := p.pool.Query(ctx,
		`SELECT id, client_name, timestamp FROM status_checks ORDER BY seq OFFSET $1 LIMIT $2`,
		skip, limit,
	)
	if err != nil {
		return nil, &domain.ErrStorage{Backend: "postgres", Op: "list", Err: err}
	}
	defer rows.Close()

	records := []domain.StatusRecord{}
	for rows.Next() {
		var rec domain.StatusRecord
		if err := rows.Scan(&rec.ID, &rec.ClientName, &rec.Timestamp); err != nil {
			return nil, &domain.ErrStorage{Backend: "postgres", Op: "list", Err: err}
		}
		rec.Timestamp = rec.Timestamp.UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.ErrStorage{Backend: "postgres", Op: "list", Err: err}
	}
	return records, nil
}

// Ping implements port.StatusStore.
func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return &domain.ErrStorage{Backend: "postgres", Op: "ping", Err: err}
	}
	return nil
}

// Close releases the pool.
func (p *Postgres) Close(context.Context) error {
	p.pool.Close()
	return nil
}
