package redisad

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"bakery_locations/internal/domain"
)

const geoKey = "locations:geo"

// GeoIndex keeps one GEO member per location slug.
type GeoIndex struct {
	c   *redis.Client
	key string
}

func NewGeoIndex(c *redis.Client) *GeoIndex { return &GeoIndex{c: c, key: geoKey} }

func (g *GeoIndex) Add(ctx context.Context, slug string, c domain.Coords) error {
	if err := g.c.GeoAdd(ctx, g.key, &redis.GeoLocation{
		Name:      slug,
		Latitude:  c.Lat,
		Longitude: c.Lon,
	}).Err(); err != nil {
		return fmt.Errorf("geoadd %s: %w", slug, err)
	}
	return nil
}

func (g *GeoIndex) Remove(ctx context.Context, slug string) error {
	return g.c.ZRem(ctx, g.key, slug).Err()
}

// Nearby returns members within radiusKm of c, nearest first.
func (g *GeoIndex) Nearby(ctx context.Context, c domain.Coords, radiusKm float64, limit int) ([]domain.GeoHit, error) {
	res, err := g.c.GeoRadius(ctx, g.key, c.Lon, c.Lat, &redis.GeoRadiusQuery{
		Radius:   radiusKm,
		Unit:     "km",
		WithDist: true,
		Count:    limit,
		Sort:     "ASC",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("georadius: %w", err)
	}
	out := make([]domain.GeoHit, 0, len(res))
	for _, loc := range res {
		out = append(out, domain.GeoHit{Slug: loc.Name, DistanceKm: loc.Dist})
	}
	return out, nil
}
