package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	apperrors "github.com/davidchen92/lostpoint/pkg/errors"
	"github.com/davidchen92/lostpoint/pkg/logger"
)

// Config describes the MongoDB connection and collection layout.
type Config struct {
	URI              string
	Database         string
	ItemsCollection  string
	RateCollection   string
	Timeout          time.Duration
	RateRecordExpiry time.Duration
}

// Mongo wraps the driver client and exposes the typed collection stores.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	cfg    Config
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, cfg Config) (*Mongo, error) {
	cfg.URI = strings.TrimSpace(cfg.URI)
	if cfg.URI == "" {
		return nil, errors.New("store: mongodb uri is required")
	}
	if strings.TrimSpace(cfg.Database) == "" {
		return nil, errors.New("store: database name is required")
	}
	if cfg.ItemsCollection == "" {
		cfg.ItemsCollection = "lost_items"
	}
	if cfg.RateCollection == "" {
		cfg.RateCollection = "rate_records"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RateRecordExpiry <= 0 {
		cfg.RateRecordExpiry = 24 * time.Hour
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.Timeout).
		SetConnectTimeout(cfg.Timeout).
		SetRetryWrites(true).
		SetRetryReads(true)

	dialCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(dialCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}

	if err := client.Ping(dialCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	log := logger.WithModule("store")
	log.Info("mongodb connected",
		zap.String("uri", maskURI(cfg.URI)),
		zap.String("database", cfg.Database),
	)

	return &Mongo{
		client: client,
		db:     client.Database(cfg.Database),
		cfg:    cfg,
	}, nil
}

// Items returns the lost item gateway.
func (m *Mongo) Items() *LostItemStore {
	return &LostItemStore{coll: m.db.Collection(m.cfg.ItemsCollection)}
}

// RateRecords returns the quota accounting store.
func (m *Mongo) RateRecords() *MongoRateRecordStore {
	return &MongoRateRecordStore{coll: m.db.Collection(m.cfg.RateCollection)}
}

// EnsureIndexes provisions the spatial, text, equality and TTL indexes the
// query paths rely on. Failures are reported but are not fatal; queries
// degrade to collection scans until the indexes exist.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	items := m.db.Collection(m.cfg.ItemsCollection)
	itemIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{
			{Key: "description", Value: "text"},
			{Key: "notes", Value: "text"},
			{Key: "found_at_address", Value: "text"},
		}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	if _, err := items.Indexes().CreateMany(ctx, itemIndexes); err != nil {
		return fmt.Errorf("store: item indexes: %w", err)
	}

	rates := m.db.Collection(m.cfg.RateCollection)
	expiry := int32(m.cfg.RateRecordExpiry / time.Second)
	rateIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(expiry),
		},
	}
	if _, err := rates.Indexes().CreateMany(ctx, rateIndexes); err != nil {
		return fmt.Errorf("store: rate record indexes: %w", err)
	}

	return nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// storeError maps driver failures onto the application taxonomy. Anything
// that is not a missing document is treated as the store being unreachable.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.ErrNotFound
	}
	return apperrors.ErrStoreUnavailable.WithInternal(err)
}

// maskURI hides credentials embedded in a connection string before logging.
func maskURI(uri string) string {
	at := strings.LastIndex(uri, "@")
	if at == -1 {
		return uri
	}
	scheme := strings.Index(uri, "://")
	if scheme == -1 || scheme+3 > at {
		return uri
	}
	return uri[:scheme+3] + "***" + uri[at:]
}
