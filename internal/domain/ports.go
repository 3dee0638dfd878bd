package domain

import "context"

type LocationRepository interface {
	// Write paths
	UpsertLocation(ctx context.Context, l Location) (int64, error)
	DeleteLocation(ctx context.Context, slug string) error
	LogMiss(ctx context.Context, slug string, status int, reason string) error

	// Read paths
	GetLocation(ctx context.Context, slug string) (Location, error)
	ListLocations(ctx context.Context, q LocationsQuery) (LocationsPage, error)
}

// LocationSource is the upstream feed locations are ingested from.
type LocationSource interface {
	ListSlugs(ctx context.Context) ([]string, error)
	GetLocation(ctx context.Context, slug string) (map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type GeoIndex interface {
	Add(ctx context.Context, slug string, c Coords) error
	Remove(ctx context.Context, slug string) error
	Nearby(ctx context.Context, c Coords, radiusKm float64, limit int) ([]GeoHit, error)
}

// Read models & queries
type LocationsQuery struct {
	Limit int
}

type LocationsPage struct {
	Items []Location `json:"items"`
}

type GeoHit struct {
	Slug       string  `json:"slug"`
	DistanceKm float64 `json:"distance_km"`
}

type NearbyLocation struct {
	Location
	DistanceKm float64 `json:"distance_km"`
	Open       bool    `json:"open"`
}
