package app

import (
	"strings"

	"github.com/davidchen92/lostpoint/internal/store"
)

// StoreConfig converts the application MongoDB configuration into the store package representation.
func (c MongoConfig) StoreConfig() store.Config {
	return store.Config{
		URI:              strings.TrimSpace(c.URI),
		Database:         strings.TrimSpace(c.Database),
		ItemsCollection:  strings.TrimSpace(c.ItemsCollection),
		RateCollection:   strings.TrimSpace(c.RateCollection),
		Timeout:          c.Timeout,
		RateRecordExpiry: c.RateRecordExpiry,
	}
}
