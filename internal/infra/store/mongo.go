package store

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/masrofi-bfa-go/internal/domain"
	"github.com/boddenberg/masrofi-bfa-go/internal/port"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("infra/store")

const statusCollection = "status_checks"

// statusDocument is the stored shape. The record id is kept in its own
// field next to Mongo's _id.
type statusDocument struct {
	ID         string    `bson:"id"`
	ClientName string    `bson:"client_name"`
	Timestamp  time.Time `bson:"timestamp"`
}

// Mongo stores records in the status_checks collection.
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *zap.Logger
}

var _ port.StatusStore = (*Mongo)(nil)

// NewMongo connects to uri and verifies the connection.
func NewMongo(ctx context.Context, uri, database string, logger *zap.Logger) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("connected to mongo", zap.String("database", database))
	return &Mongo{
		client:     client,
		collection: client.Database(database).Collection(statusCollection),
		logger:     logger,
	}, nil
}

// Insert implements port.StatusStore.
func (m *Mongo) Insert(ctx context.Context, rec *domain.StatusRecord) error {
	ctx, span := tracer.Start(ctx, "Mongo.Insert")
	defer span.End()

	doc := statusDocument{ID: rec.ID, ClientName: rec.ClientName, Timestamp: rec.Timestamp}
	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		return &domain.ErrStorage{Backend: "mongo", Op: "insert", Err: err}
	}
	return nil
}

// List implements port.StatusStore. Documents come back in natural order.
func (m *Mongo) List(ctx context.Context, skip, limit int) ([]domain.StatusRecord, error) {
	ctx, span := tracer.Start(ctx, "Mongo.List")
	defer span.End()

	opts := options.Find().SetSkip(int64(skip)).SetLimit(int64(limit))
	cursor, err := m.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, &domain.ErrStorage{Backend: "mongo", Op: "list", Err: err}
	}
	defer cursor.Close(ctx)

	var docs []statusDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, &domain.ErrStorage{Backend: "mongo", Op: "list", Err: err}
	}

	records := make([]domain.StatusRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, domain.StatusRecord{
			ID:         d.ID,
			ClientName: d.ClientName,
			Timestamp:  d.Timestamp.UTC(),
		})
	}
	return records, nil
}

// Ping implements port.StatusStore.
func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return &domain.ErrStorage{Backend: "mongo", Op: "ping", Err: err}
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
