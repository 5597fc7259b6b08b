package store

import (
	"context"
	"time"

	"github.com/davidchen92/lostpoint/internal/models"
)

// NearbyResultCap bounds FindNear result sets to keep payloads small.
const NearbyResultCap = 50

// ItemStore is the gateway contract to the lost item collection. It owns no
// state; callers translate its errors per the fail-open/fail-closed rules.
type ItemStore interface {
	// Create persists a new item, assigns the creation timestamp and derives
	// the spatial point from the raw coordinates. Returns the generated id.
	Create(ctx context.Context, item *models.LostItem) (string, error)
	// Find applies the AND-combined filters, sorted by creation time
	// descending, then skip/limit. An empty result is not an error.
	Find(ctx context.Context, filter models.ItemFilter) ([]models.LostItem, error)
	// FindByID fails with ErrInvalidID for malformed ids and ErrNotFound for
	// well-formed ids without a matching document.
	FindByID(ctx context.Context, id string) (*models.LostItem, error)
	// FindNear returns items within radiusKm of the point, nearest first,
	// capped at NearbyResultCap.
	FindNear(ctx context.Context, longitude, latitude, radiusKm float64) ([]models.LostItem, error)
}

// RateRecordStore persists the per-user post events the daily quota counts.
type RateRecordStore interface {
	CountBetween(ctx context.Context, userID string, from, to time.Time) (int64, error)
	Insert(ctx context.Context, userID string, at time.Time) error
}
