package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"bakery_locations/internal/adapters/observability"
	"bakery_locations/internal/domain"
)

// listLimits are the list page sizes whose cache entries writes evict.
var listLimits = []int{10, 50, 100, 200}

func locationKey(slug string) string { return "location:" + slug }
func locationsKey(limit int) string  { return fmt.Sprintf("locations:%d", limit) }

type QueryService struct {
	repo     domain.LocationRepository
	cache    domain.Cache
	geo      domain.GeoIndex
	cacheTTL time.Duration
	now      func() time.Time
}

func NewQueryService(r domain.LocationRepository, c domain.Cache, g domain.GeoIndex, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, geo: g, cacheTTL: ttl, now: time.Now}
}

// WithClock replaces the clock used when no instant is supplied.
func (s *QueryService) WithClock(now func() time.Time) *QueryService {
	s.now = now
	return s
}

func (s *QueryService) GetLocation(ctx context.Context, slug string) (domain.Location, error) {
	key := locationKey(slug)
	var l domain.Location
	if ok, _ := s.cache.Get(ctx, key, &l); ok {
		return l, nil
	}
	l, err := s.repo.GetLocation(ctx, slug)
	if err != nil {
		return domain.Location{}, err
	}
	_ = s.cache.Set(ctx, key, l, int(s.cacheTTL.Seconds()))
	return l, nil
}

// ListLocations returns live locations ordered by title.
func (s *QueryService) ListLocations(ctx context.Context, q domain.LocationsQuery) (domain.LocationsPage, error) {
	key := locationsKey(q.Limit)
	var out domain.LocationsPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	page, err := s.repo.ListLocations(ctx, q)
	if err != nil {
		return domain.LocationsPage{}, err
	}
	// copy slice to avoid aliasing the repo's backing array
	cp := domain.LocationsPage{Items: make([]domain.Location, len(page.Items))}
	copy(cp.Items, page.Items)
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}

// Status evaluates the open state of slug at *at, or at the service clock when at is nil.
func (s *QueryService) Status(ctx context.Context, slug string, at *time.Time) (domain.LocationStatus, error) {
	l, err := s.GetLocation(ctx, slug)
	if err != nil {
		return domain.LocationStatus{}, err
	}
	now := s.now()
	if at != nil {
		now = *at
	}
	st := domain.LocationStatus{Slug: slug, At: now, Open: domain.IsOpen(l.Hours, now)}
	if e, ok := l.Hours.Entry(domain.WeekdayOf(now.Weekday())); ok {
		st.Today = &e
	}
	observability.ObserveOpen(st.Open)
	return st, nil
}

// Hours renders the schedule of slug in editorial order, labelled with tz.
func (s *QueryService) Hours(ctx context.Context, slug, tz string) ([]string, error) {
	l, err := s.GetLocation(ctx, slug)
	if err != nil {
		return nil, err
	}
	return l.Hours.Sorted().Format(tz), nil
}

// Nearby resolves geo hits into locations with their current open state.
// Hits whose location has since disappeared are skipped.
func (s *QueryService) Nearby(ctx context.Context, c domain.Coords, radiusKm float64, limit int) ([]domain.NearbyLocation, error) {
	if s.geo == nil {
		return nil, errors.New("geo index not configured")
	}
	hits, err := s.geo.Nearby(ctx, c, radiusKm, limit)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]domain.NearbyLocation, 0, len(hits))
	for _, h := range hits {
		l, err := s.GetLocation(ctx, h.Slug)
		if errors.Is(err, domain.ErrNotFound) {
			log.Debug().Str("slug", h.Slug).Msg("geo hit without location")
			continue
		}
		if err != nil {
			return nil, err
		}
		open := domain.IsOpen(l.Hours, now)
		observability.ObserveOpen(open)
		out = append(out, domain.NearbyLocation{Location: l, DistanceKm: h.DistanceKm, Open: open})
	}
	return out, nil
}
