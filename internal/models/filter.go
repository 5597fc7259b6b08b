package models

import (
	"strings"

	apperrors "github.com/davidchen92/lostpoint/pkg/errors"
)

const (
	// DefaultListLimit is applied when no limit is requested.
	DefaultListLimit = 50
	// MaxListLimit caps a single page of results.
	MaxListLimit = 100
)

// RegionBounds is a rectangular spatial filter. A filter carries either all
// four bounds or none; partial bounds are a caller error handled before a
// RegionBounds value is ever constructed.
type RegionBounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

// ItemFilter captures the optional list-query filters. All present filters
// are AND-combined by the store.
type ItemFilter struct {
	Category   string        `json:"category,omitempty"`
	Region     *RegionBounds `json:"region,omitempty"`
	SearchText string        `json:"search,omitempty"`
	Limit      int           `json:"limit"`
	Skip       int           `json:"skip"`
}

// Normalise canonicalises the filter: the category matches the write-time
// normalised form, free text is trimmed and limit/skip fall back to defaults.
func (f *ItemFilter) Normalise() {
	f.Category = NormaliseCategory(f.Category)
	f.SearchText = strings.TrimSpace(f.SearchText)

	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
}

// Validate rejects out-of-range bounds and pagination values.
func (f *ItemFilter) Validate() error {
	if f.Skip < 0 {
		return apperrors.NewBadRequest("skip must not be negative")
	}
	if f.Limit < 0 || f.Limit > MaxListLimit {
		return apperrors.NewBadRequest("limit must be between 1 and 100")
	}

	if f.Region != nil {
		r := f.Region
		if r.MinLat < -90 || r.MaxLat > 90 || r.MinLat > r.MaxLat {
			return apperrors.NewBadRequest("invalid latitude bounds")
		}
		if r.MinLng < -180 || r.MaxLng > 180 || r.MinLng > r.MaxLng {
			return apperrors.NewBadRequest("invalid longitude bounds")
		}
	}

	return nil
}
