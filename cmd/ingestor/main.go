package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"bakery_locations/internal/adapters/feed"
	"bakery_locations/internal/adapters/observability"
	redisad "bakery_locations/internal/adapters/redis"
	"bakery_locations/internal/app"
	"bakery_locations/internal/shared"
	mysqlrepo "bakery_locations/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.FeedBase).
		Int("workers", cfg.Workers).
		Msg("ingestor starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := feed.New(cfg.FeedBase, cfg.FeedKey, cfg.FeedRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize feed client")
	}
	rc := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	cmd := app.NewCommandService(repo, redisad.NewWithClient(rc), redisad.NewGeoIndex(rc))
	ing := app.NewIngestionService(client, repo, cmd)

	slugs, err := ing.ListSlugs(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list locations failed")
	}
	log.Info().Int("locations", len(slugs)).Msg("feed listed")

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, slug := range slugs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(slug string) {
			defer wg.Done()
			defer sem.Release(1)

			if err := ing.IngestLocation(ctx, slug); err != nil {
				log.Warn().Str("slug", slug).Err(err).Msg("ingest failed")
				return
			}
			log.Info().Str("slug", slug).Msg("ingest ok")
		}(slug)
	}

	wg.Wait()
	log.Info().Msg("ingestion completed")
}
