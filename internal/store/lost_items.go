package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/davidchen92/lostpoint/internal/models"
	apperrors "github.com/davidchen92/lostpoint/pkg/errors"
)

// LostItemStore implements ItemStore on a MongoDB collection.
type LostItemStore struct {
	coll *mongo.Collection
}

// NewLostItemStore wraps an existing collection handle. Useful for tests that
// provision their own database.
func NewLostItemStore(coll *mongo.Collection) *LostItemStore {
	return &LostItemStore{coll: coll}
}

// Create persists the item, deriving the GeoJSON point and creation timestamp
// server-side. The category must already be normalised by the caller.
func (s *LostItemStore) Create(ctx context.Context, item *models.LostItem) (string, error) {
	item.Location = models.NewGeoPoint(item.Longitude, item.Latitude)
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	result, err := s.coll.InsertOne(ctx, item)
	if err != nil {
		return "", storeError(err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", apperrors.ErrStoreUnavailable.WithInternal(
			fmt.Errorf("unexpected inserted id type %T", result.InsertedID))
	}

	item.ID = oid
	return oid.Hex(), nil
}

// Find applies the optional category, region and text filters AND-combined,
// sorted newest first, with skip/limit pagination.
func (s *LostItemStore) Find(ctx context.Context, filter models.ItemFilter) ([]models.LostItem, error) {
	query := bson.M{}

	if filter.Category != "" {
		query["category"] = filter.Category
	}

	if filter.Region != nil {
		query["location"] = bson.M{
			"$geoWithin": bson.M{
				"$box": bson.A{
					bson.A{filter.Region.MinLng, filter.Region.MinLat},
					bson.A{filter.Region.MaxLng, filter.Region.MaxLat},
				},
			},
		}
	}

	if filter.SearchText != "" {
		query["$text"] = bson.M{"$search": filter.SearchText}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(filter.Skip)).
		SetLimit(int64(filter.Limit))

	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, storeError(err)
	}
	defer cursor.Close(ctx)

	items := make([]models.LostItem, 0, filter.Limit)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, storeError(err)
	}
	return items, nil
}

// FindByID looks a single item up by its hex identifier.
func (s *LostItemStore) FindByID(ctx context.Context, id string) (*models.LostItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrInvalidID
	}

	var item models.LostItem
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&item); err != nil {
		return nil, storeError(err)
	}
	return &item, nil
}

// FindNear returns up to NearbyResultCap items within radiusKm of the point,
// nearest first ($nearSphere results are distance-ordered).
func (s *LostItemStore) FindNear(ctx context.Context, longitude, latitude, radiusKm float64) ([]models.LostItem, error) {
	query := bson.M{
		"location": bson.M{
			"$nearSphere": bson.M{
				"$geometry":    models.NewGeoPoint(longitude, latitude),
				"$maxDistance": radiusKm * 1000,
			},
		},
	}

	cursor, err := s.coll.Find(ctx, query, options.Find().SetLimit(NearbyResultCap))
	if err != nil {
		return nil, storeError(err)
	}
	defer cursor.Close(ctx)

	items := make([]models.LostItem, 0, NearbyResultCap)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, storeError(err)
	}
	return items, nil
}
