package app_test

import (
	"context"
	"encoding/json"
	"sort"

	"bakery_locations/internal/domain"
)

// ---- fakes ----

type miss struct {
	slug   string
	status int
	reason string
}

type fakeRepo struct {
	locs    map[string]domain.Location
	misses  []miss
	upserts int
	gets    int
	nextID  int64
	err     error
}

func newFakeRepo(ls ...domain.Location) *fakeRepo {
	r := &fakeRepo{locs: map[string]domain.Location{}}
	for _, l := range ls {
		r.locs[l.Slug] = l
	}
	return r
}

func (f *fakeRepo) UpsertLocation(ctx context.Context, l domain.Location) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.upserts++
	f.nextID++
	l.ID = f.nextID
	f.locs[l.Slug] = l
	return l.ID, nil
}

func (f *fakeRepo) DeleteLocation(ctx context.Context, slug string) error {
	if _, ok := f.locs[slug]; !ok {
		return domain.ErrNotFound
	}
	delete(f.locs, slug)
	return nil
}

func (f *fakeRepo) LogMiss(ctx context.Context, slug string, status int, reason string) error {
	f.misses = append(f.misses, miss{slug, status, reason})
	return nil
}

func (f *fakeRepo) GetLocation(ctx context.Context, slug string) (domain.Location, error) {
	f.gets++
	l, ok := f.locs[slug]
	if !ok {
		return domain.Location{}, domain.ErrNotFound
	}
	return l, nil
}

func (f *fakeRepo) ListLocations(ctx context.Context, q domain.LocationsQuery) (domain.LocationsPage, error) {
	var out []domain.Location
	for _, l := range f.locs {
		if l.Live {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return domain.LocationsPage{Items: out}, nil
}

// fakeCache stores JSON like the redis adapter so round trips are realistic.
type fakeCache struct {
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

type fakeGeo struct {
	members map[string]domain.Coords
	hits    []domain.GeoHit
}

func (g *fakeGeo) Add(ctx context.Context, slug string, c domain.Coords) error {
	if g.members == nil {
		g.members = map[string]domain.Coords{}
	}
	g.members[slug] = c
	return nil
}

func (g *fakeGeo) Remove(ctx context.Context, slug string) error {
	delete(g.members, slug)
	return nil
}

func (g *fakeGeo) Nearby(ctx context.Context, c domain.Coords, radiusKm float64, limit int) ([]domain.GeoHit, error) {
	return g.hits, nil
}

type fakeSource struct {
	payloads map[string]map[string]any
	err      error
}

func (s *fakeSource) ListSlugs(ctx context.Context) ([]string, error) {
	var out []string
	for k := range s.payloads {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (s *fakeSource) GetLocation(ctx context.Context, slug string) (map[string]any, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.payloads[slug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// ---- helpers ----

func tod(h, m int) *domain.TimeOfDay {
	t := domain.NewTimeOfDay(h, m, 0)
	return &t
}

func reykjavik() domain.Location {
	return domain.Location{
		Slug: "reykjavik", Title: "Reykjavik", Address: "Laugavegur 1", Live: true,
		Coords: domain.Coords{Lat: 64.144367, Lon: -21.939182},
		Hours: domain.Schedule{
			{Day: domain.Monday, Opening: tod(9, 0), Closing: tod(17, 0), SortOrder: 1},
			{Day: domain.Sunday, Closed: true, SortOrder: 0},
		},
	}
}
