package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"bakery_locations/internal/adapters/observability"
	"bakery_locations/internal/domain"
)

// CommandService owns the editorial write path for locations.
type CommandService struct {
	repo  domain.LocationRepository
	cache domain.Cache
	geo   domain.GeoIndex
}

func NewCommandService(r domain.LocationRepository, c domain.Cache, g domain.GeoIndex) *CommandService {
	return &CommandService{repo: r, cache: c, geo: g}
}

// SaveLocation validates and persists l, then refreshes the geo index and caches.
func (s *CommandService) SaveLocation(ctx context.Context, l domain.Location) (domain.Location, error) {
	if err := l.Validate(); err != nil {
		return domain.Location{}, err
	}
	id, err := s.repo.UpsertLocation(ctx, l)
	if err != nil {
		return domain.Location{}, fmt.Errorf("upsert location %s: %w", l.Slug, err)
	}
	l.ID = id

	if s.geo != nil {
		if err := s.geo.Add(ctx, l.Slug, l.Coords); err != nil {
			// the row is saved; a stale geo member is repaired on the next save
			log.Warn().Err(err).Str("slug", l.Slug).Msg("geo index add failed")
		}
	}
	s.invalidate(ctx, l.Slug)
	return l, nil
}

func (s *CommandService) DeleteLocation(ctx context.Context, slug string) error {
	if err := s.repo.DeleteLocation(ctx, slug); err != nil {
		return err
	}
	if s.geo != nil {
		if err := s.geo.Remove(ctx, slug); err != nil {
			log.Warn().Err(err).Str("slug", slug).Msg("geo index remove failed")
		}
	}
	s.invalidate(ctx, slug)
	return nil
}

func (s *CommandService) invalidate(ctx context.Context, slug string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, locationKey(slug))
	for _, lim := range listLimits {
		_ = s.cache.Del(ctx, locationsKey(lim))
	}
}

// IngestionService pulls locations from the upstream feed into the store.
type IngestionService struct {
	src  domain.LocationSource
	repo domain.LocationRepository
	cmd  *CommandService
}

func NewIngestionService(src domain.LocationSource, r domain.LocationRepository, cmd *CommandService) *IngestionService {
	return &IngestionService{src: src, repo: r, cmd: cmd}
}

// IngestLocation fetches, maps and saves one location. Missing and malformed
// upstream entries are recorded as misses and do not fail the run.
func (s *IngestionService) IngestLocation(ctx context.Context, slug string) error {
	p, err := s.src.GetLocation(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			observability.ObserveIngest("miss")
			_ = s.repo.LogMiss(ctx, slug, 404, "not found")
			// evict so we don't keep serving an old snapshot
			s.cmd.invalidate(ctx, slug)
			return nil
		}
		observability.ObserveIngest("error")
		return err
	}

	l, err := mapLocation(slug, p)
	if err == nil {
		_, err = s.cmd.SaveLocation(ctx, l)
	}
	if err != nil {
		if domain.IsInvalid(err) {
			observability.ObserveIngest("invalid")
			_ = s.repo.LogMiss(ctx, slug, 422, err.Error())
			return nil
		}
		observability.ObserveIngest("error")
		return err
	}
	observability.ObserveIngest("ok")
	return nil
}

// ListSlugs exposes the feed's slug list to the ingestor command.
func (s *IngestionService) ListSlugs(ctx context.Context) ([]string, error) {
	return s.src.ListSlugs(ctx)
}
