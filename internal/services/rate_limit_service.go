package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/davidchen92/lostpoint/internal/store"
	"github.com/davidchen92/lostpoint/pkg/logger"
	"github.com/davidchen92/lostpoint/pkg/metrics"
)

// DefaultMaxPostsPerDay is the daily posting quota applied when none is configured.
const DefaultMaxPostsPerDay = 2

// Decision is the typed outcome of a quota check. Degraded marks a fail-open
// admission taken because quota accounting was unavailable, so the policy is
// visible to callers and testable instead of hidden in a catch-all.
type Decision struct {
	Admitted bool
	Count    int64
	Limit    int
	Degraded bool
}

// RateLimiter gates writes with a daily posting quota.
type RateLimiter interface {
	Check(ctx context.Context, userID string) Decision
	Record(ctx context.Context, userID string) error
}

// RateLimitService counts a user's posts within the current calendar day and
// admits while the count stays under the configured maximum. It holds no
// state of its own; the records live in the store and expire after 24 hours.
type RateLimitService struct {
	records   store.RateRecordStore
	maxPerDay int
	clock     func() time.Time
	log       *zap.Logger
}

// NewRateLimitService constructs the daily quota limiter.
func NewRateLimitService(records store.RateRecordStore, maxPerDay int) (*RateLimitService, error) {
	if records == nil {
		return nil, errors.New("rate limit service: record store is required")
	}
	if maxPerDay <= 0 {
		maxPerDay = DefaultMaxPostsPerDay
	}

	return &RateLimitService{
		records:   records,
		maxPerDay: maxPerDay,
		clock:     time.Now,
		log:       logger.WithModule("ratelimit"),
	}, nil
}

// Check counts the user's posts since local midnight and admits while the
// count is below the daily maximum. The boundary is wall-clock midnight, not
// a rolling 24h window: a post at 23:59 does not block one at 00:01.
//
// If the count query fails the check fails OPEN: the post is admitted and the
// decision marked Degraded. The service must stay usable when only quota
// accounting is unhealthy.
func (s *RateLimitService) Check(ctx context.Context, userID string) Decision {
	from, to := dayWindow(s.clock())

	count, err := s.records.CountBetween(ctx, userID, from, to)
	if err != nil {
		s.log.Warn("quota count failed; admitting fail-open",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		metrics.QuotaDecisions.WithLabelValues("degraded").Inc()
		return Decision{Admitted: true, Limit: s.maxPerDay, Degraded: true}
	}

	admitted := count < int64(s.maxPerDay)
	if admitted {
		metrics.QuotaDecisions.WithLabelValues("admit").Inc()
	} else {
		metrics.QuotaDecisions.WithLabelValues("deny").Inc()
	}

	return Decision{Admitted: admitted, Count: count, Limit: s.maxPerDay}
}

// Record appends a post event for the user. It never blocks the caller's
// request: failures are reported for logging only.
func (s *RateLimitService) Record(ctx context.Context, userID string) error {
	return s.records.Insert(ctx, userID, s.clock())
}

// dayWindow returns [midnight, next midnight) in the local timezone of now.
func dayWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}
