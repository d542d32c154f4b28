package domain

import (
	"context"
	"time"
)

type PlaceSource interface {
	// Read paths
	GetPlaces(ctx context.Context, near Coordinate, radiusKm float64) ([]Place, error)
	GetPlace(ctx context.Context, id string) (Place, error)

	// Write path (ingestion)
	UpsertPlaces(ctx context.Context, ps []Place) error
}

type EventSource interface {
	SearchEvents(ctx context.Context, near Coordinate) ([]Event, error)
}

type TravelMode string

const (
	ModeWalking TravelMode = "walking"
	ModeDriving TravelMode = "driving"
)

// TravelTimeEntry is the routing backend's answer for one place from one
// reference location. A nil duration means the mode was not resolved.
type TravelTimeEntry struct {
	PlaceID string
	Walking *time.Duration
	Driving *time.Duration
}

type TravelTimeSource interface {
	// ComputeTravelTimes may hang on upstream misbehavior; callers bound it
	// with their own deadline and must tolerate an unresolved result.
	ComputeTravelTimes(ctx context.Context, place Place, from Coordinate, modes []TravelMode) (TravelTimeEntry, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
