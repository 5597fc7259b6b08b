package services

import (
	"context"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/davidchen92/lostpoint/internal/models"
	apperrors "github.com/davidchen92/lostpoint/pkg/errors"
)

// opLog records the order of collaborator calls so tests can assert the
// persist -> invalidate -> record sequencing.
type opLog struct {
	ops []string
}

func (l *opLog) add(op string) {
	l.ops = append(l.ops, op)
}

type fakeItemStore struct {
	log       *opLog
	items     []models.LostItem
	createErr error
	findErr   error
	findCalls int
	nextID    int
}

func (f *fakeItemStore) Create(_ context.Context, item *models.LostItem) (string, error) {
	if f.log != nil {
		f.log.add("persist")
	}
	if f.createErr != nil {
		return "", f.createErr
	}

	f.nextID++
	item.ID = primitive.NewObjectID()
	item.CreatedAt = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC).Add(time.Duration(f.nextID) * time.Minute)
	f.items = append([]models.LostItem{*item}, f.items...)
	return item.ID.Hex(), nil
}

func (f *fakeItemStore) Find(_ context.Context, filter models.ItemFilter) ([]models.LostItem, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}

	matched := make([]models.LostItem, 0, len(f.items))
	for _, item := range f.items {
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		matched = append(matched, item)
	}
	return matched, nil
}

func (f *fakeItemStore) FindByID(_ context.Context, id string) (*models.LostItem, error) {
	f.findCalls++
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, apperrors.ErrInvalidID
	}
	for _, item := range f.items {
		if item.ID.Hex() == id {
			cpy := item
			return &cpy, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeItemStore) FindNear(_ context.Context, _, _, _ float64) ([]models.LostItem, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.items, nil
}

type fakeLimiter struct {
	log       *opLog
	decision  Decision
	recordErr error
	checks    int
	records   []string
}

func (f *fakeLimiter) Check(_ context.Context, _ string) Decision {
	f.checks++
	return f.decision
}

func (f *fakeLimiter) Record(_ context.Context, userID string) error {
	if f.log != nil {
		f.log.add("record")
	}
	f.records = append(f.records, userID)
	return f.recordErr
}

// loggingCache wraps a real cache store and records invalidations for
// ordering assertions.
type loggingCache struct {
	inner interface {
		Get(ctx context.Context, key string) ([]byte, bool, error)
		Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
		Delete(ctx context.Context, keys ...string) error
		DeletePrefix(ctx context.Context, prefix string) error
	}
	log *opLog
}

func (c *loggingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, key)
}

func (c *loggingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, key, value, ttl)
}

func (c *loggingCache) Delete(ctx context.Context, keys ...string) error {
	return c.inner.Delete(ctx, keys...)
}

func (c *loggingCache) DeletePrefix(ctx context.Context, prefix string) error {
	if c.log != nil {
		c.log.add("invalidate:" + prefix)
	}
	return c.inner.DeletePrefix(ctx, prefix)
}

// brokenCache fails every operation, standing in for an unreachable backend.
type brokenCache struct {
	err error
}

func (c *brokenCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, c.err }
func (c *brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return c.err
}
func (c *brokenCache) Delete(context.Context, ...string) error      { return c.err }
func (c *brokenCache) DeletePrefix(context.Context, string) error   { return c.err }

// fakeRateRecords backs RateLimitService tests with canned counts.
type fakeRateRecords struct {
	counts   map[string]int64
	countErr error
	inserted []models.RateRecord

	lastFrom time.Time
	lastTo   time.Time
}

func (f *fakeRateRecords) CountBetween(_ context.Context, userID string, from, to time.Time) (int64, error) {
	f.lastFrom, f.lastTo = from, to
	if f.countErr != nil {
		return 0, f.countErr
	}

	// Count only inserted records that fall inside the window, plus any
	// canned base count.
	count := f.counts[userID]
	for _, rec := range f.inserted {
		if rec.UserID == userID && !rec.CreatedAt.Before(from) && rec.CreatedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (f *fakeRateRecords) Insert(_ context.Context, userID string, at time.Time) error {
	f.inserted = append(f.inserted, models.RateRecord{UserID: userID, CreatedAt: at})
	return nil
}

func newTestItem(category string) *models.LostItem {
	return &models.LostItem{
		Longitude:      -122.4,
		Latitude:       37.8,
		ImageURL:       "https://img.example/" + strconv.Itoa(int(time.Now().UnixNano())),
		Description:    "black leather wallet",
		Category:       category,
		FoundAtAddress: "Market St, San Francisco",
		FinderInfo: models.FinderInfo{
			Name:  "Ana",
			Email: "ana@example.com",
			Phone: "4155550100",
		},
	}
}
