package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/davidchen92/lostpoint/internal/models"
)

// MongoRateRecordStore implements RateRecordStore on the rate_records
// collection. Records are never mutated; a TTL index expires them after 24h.
type MongoRateRecordStore struct {
	coll *mongo.Collection
}

// NewMongoRateRecordStore wraps an existing collection handle.
func NewMongoRateRecordStore(coll *mongo.Collection) *MongoRateRecordStore {
	return &MongoRateRecordStore{coll: coll}
}

// CountBetween counts a user's post events with created_at in [from, to).
func (s *MongoRateRecordStore) CountBetween(ctx context.Context, userID string, from, to time.Time) (int64, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{
		"user_id": userID,
		"created_at": bson.M{
			"$gte": from,
			"$lt":  to,
		},
	})
	if err != nil {
		return 0, storeError(err)
	}
	return count, nil
}

// Insert appends a post event for the user.
func (s *MongoRateRecordStore) Insert(ctx context.Context, userID string, at time.Time) error {
	_, err := s.coll.InsertOne(ctx, models.RateRecord{
		UserID:    userID,
		CreatedAt: at,
	})
	if err != nil {
		return storeError(err)
	}
	return nil
}
