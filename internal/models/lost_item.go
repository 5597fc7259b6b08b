package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FinderInfo describes how to reach the person who found the item.
type FinderInfo struct {
	Name  string `bson:"name" json:"name" validate:"required,min=2,max=100"`
	Email string `bson:"email" json:"email" validate:"required,email"`
	Phone string `bson:"phone" json:"phone" validate:"required,min=10,max=15"`
}

// GeoPoint is the GeoJSON point stored alongside the raw coordinates so the
// 2dsphere index can serve containment and nearest queries.
type GeoPoint struct {
	Type        string     `bson:"type" json:"type"`
	Coordinates [2]float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds a GeoJSON point from a longitude/latitude pair.
func NewGeoPoint(longitude, latitude float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{longitude, latitude}}
}

// LostItem is the persisted lost item posting.
type LostItem struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Longitude      float64            `bson:"longitude" json:"longitude"`
	Latitude       float64            `bson:"latitude" json:"latitude"`
	Location       GeoPoint           `bson:"location" json:"-"`
	ImageURL       string             `bson:"image_url" json:"image_url"`
	Description    string             `bson:"description" json:"description"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Category       string             `bson:"category" json:"category"`
	FoundAtAddress string             `bson:"found_at_address" json:"found_at_address"`
	FinderInfo     FinderInfo         `bson:"finder_info" json:"finder_info"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// Normalise lower-cases and trims the category. It is applied once, at write
// time; category-filtered reads must match on the normalised form.
func (i *LostItem) Normalise() {
	i.Category = NormaliseCategory(i.Category)
}

// NormaliseCategory canonicalises a category value.
func NormaliseCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// RateRecord marks a single post event for daily quota accounting. Records
// expire store-side 24 hours after creation via a TTL index.
type RateRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
