package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/davidchen92/lostpoint/internal/cache"
	"github.com/davidchen92/lostpoint/internal/models"
	"github.com/davidchen92/lostpoint/internal/store"
	apperrors "github.com/davidchen92/lostpoint/pkg/errors"
	"github.com/davidchen92/lostpoint/pkg/logger"
	"github.com/davidchen92/lostpoint/pkg/metrics"
)

// DefaultCacheTTL bounds how long a cached query result may be served.
const DefaultCacheTTL = 5 * time.Minute

// LostItemService orchestrates reads and writes between the HTTP surface,
// the result cache, the item store and the daily quota limiter. It owns no
// data: the store owns items and rate records, the cache owns its entries.
type LostItemService struct {
	items    store.ItemStore
	limiter  RateLimiter
	results  cache.Store
	cacheTTL time.Duration
	log      *zap.Logger
}

// NewLostItemService wires the orchestrator. All collaborators are injected;
// there is no hidden process-wide state.
func NewLostItemService(items store.ItemStore, limiter RateLimiter, results cache.Store, cacheTTL time.Duration) (*LostItemService, error) {
	if items == nil {
		return nil, errors.New("lost item service: item store is required")
	}
	if limiter == nil {
		return nil, errors.New("lost item service: rate limiter is required")
	}
	if results == nil {
		return nil, errors.New("lost item service: result cache is required")
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}

	return &LostItemService{
		items:    items,
		limiter:  limiter,
		results:  results,
		cacheTTL: cacheTTL,
		log:      logger.WithModule("lostitems"),
	}, nil
}

// Create persists a new lost item for userID. The write path is strictly
// ordered: quota check, persist, cache invalidation, quota record. The
// invalidation runs before the record step so no subsequent read can observe
// a cached result predating the write. A failed record never rolls the
// already-durable item back.
func (s *LostItemService) Create(ctx context.Context, userID string, item *models.LostItem) (string, error) {
	item.Normalise()

	decision := s.limiter.Check(ctx, userID)
	if !decision.Admitted {
		return "", apperrors.ErrQuotaExceeded
	}

	id, err := s.items.Create(ctx, item)
	if err != nil {
		return "", err
	}

	s.invalidateQueryCaches(ctx)

	if err := s.limiter.Record(ctx, userID); err != nil {
		s.log.Warn("failed to record post for quota accounting",
			zap.String("user_id", userID),
			zap.String("item_id", id),
			zap.Error(err),
		)
	}

	metrics.ItemsCreated.Inc()
	return id, nil
}

// List returns items matching the filter, cache-aside: identical filters
// within the TTL window are served from the cache without a store query.
func (s *LostItemService) List(ctx context.Context, filter models.ItemFilter) ([]models.LostItem, error) {
	filter.Normalise()
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	key := cache.Fingerprint(cache.KindListItems, listParams(filter))
	if items, ok := s.cachedItems(ctx, cache.KindListItems, key); ok {
		return items, nil
	}

	items, err := s.items.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.cacheItems(ctx, key, items)
	return items, nil
}

// Get returns a single item by id. Malformed ids fail with ErrInvalidID,
// well-formed ids without a document with ErrNotFound.
func (s *LostItemService) Get(ctx context.Context, id string) (*models.LostItem, error) {
	key := cache.Fingerprint(cache.KindItemByID, map[string]any{"id": id})

	if data, ok := s.cacheGet(ctx, cache.KindItemByID, key); ok {
		var item models.LostItem
		if err := json.Unmarshal(data, &item); err == nil {
			return &item, nil
		}
	}

	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(item); err == nil {
		s.cacheSet(ctx, key, data)
	}
	return item, nil
}

// Nearby returns items within radiusKm of the point, nearest first.
func (s *LostItemService) Nearby(ctx context.Context, longitude, latitude, radiusKm float64) ([]models.LostItem, error) {
	key := cache.Fingerprint(cache.KindNearbyItems, map[string]any{
		"lng":    longitude,
		"lat":    latitude,
		"radius": radiusKm,
	})
	if items, ok := s.cachedItems(ctx, cache.KindNearbyItems, key); ok {
		return items, nil
	}

	items, err := s.items.FindNear(ctx, longitude, latitude, radiusKm)
	if err != nil {
		return nil, err
	}

	s.cacheItems(ctx, key, items)
	return items, nil
}

// listParams flattens the filter into the fingerprint parameter set. Every
// field is always present so construction order can never change the key.
func listParams(filter models.ItemFilter) map[string]any {
	params := map[string]any{
		"category": filter.Category,
		"search":   filter.SearchText,
		"limit":    filter.Limit,
		"skip":     filter.Skip,
	}
	if filter.Region != nil {
		params["min_lat"] = filter.Region.MinLat
		params["max_lat"] = filter.Region.MaxLat
		params["min_lng"] = filter.Region.MinLng
		params["max_lng"] = filter.Region.MaxLng
	}
	return params
}

// cacheGet consults the result cache. Cache failures are swallowed and
// logged: the system degrades to slower-but-correct, never to unavailable.
func (s *LostItemService) cacheGet(ctx context.Context, kind, key string) ([]byte, bool) {
	data, ok, err := s.results.Get(ctx, key)
	if err != nil {
		s.log.Warn("result cache degraded; bypassing", zap.String("kind", kind), zap.Error(err))
		metrics.CacheLookups.WithLabelValues(kind, "error").Inc()
		return nil, false
	}
	if !ok {
		metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
	return data, true
}

func (s *LostItemService) cacheSet(ctx context.Context, key string, data []byte) {
	if err := s.results.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.log.Warn("failed to populate result cache", zap.Error(err))
	}
}

func (s *LostItemService) cachedItems(ctx context.Context, kind, key string) ([]models.LostItem, bool) {
	data, ok := s.cacheGet(ctx, kind, key)
	if !ok {
		return nil, false
	}

	var items []models.LostItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.log.Warn("discarding undecodable cache entry", zap.String("kind", kind), zap.Error(err))
		return nil, false
	}
	return items, true
}

func (s *LostItemService) cacheItems(ctx context.Context, key string, items []models.LostItem) {
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	s.cacheSet(ctx, key, data)
}

// invalidateQueryCaches evicts every list and nearby result after a write.
// The eviction is coarse on purpose: a write anywhere may surface in any list
// or nearby query, and serving a result predating the write is worse than a
// round of cache misses.
func (s *LostItemService) invalidateQueryCaches(ctx context.Context) {
	for _, prefix := range []string{cache.KindListItems, cache.KindNearbyItems} {
		if err := s.results.DeletePrefix(ctx, prefix); err != nil {
			s.log.Warn("cache invalidation failed", zap.String("prefix", prefix), zap.Error(err))
		}
	}
}
