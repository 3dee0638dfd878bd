package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "bakery_locations/internal/adapters/http_server"
	"bakery_locations/internal/adapters/observability"
	redisad "bakery_locations/internal/adapters/redis"
	"bakery_locations/internal/app"
	"bakery_locations/internal/shared"
	mysqlrepo "bakery_locations/internal/storage/mysql"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	// shared by the router's /metrics and the metrics listener
	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	rc := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	cache := redisad.NewWithClient(rc)
	geo := redisad.NewGeoIndex(rc)
	q := app.NewQueryService(repo, cache, geo, cfg.CacheTTL)
	c := app.NewCommandService(repo, cache, geo)

	// http
	srv := server.New(server.Options{RateLimitRPS: cfg.RateLimitRPS, RateLimitBurst: cfg.RateLimitBurst})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, C: c, TimeZone: cfg.DisplayTimeZone})

	log.Info().Str("addr", cfg.HTTPAddr).Str("tz", cfg.DisplayTimeZone).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
