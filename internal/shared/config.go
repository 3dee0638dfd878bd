package shared

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv          string  `koanf:"app_env"`
	HTTPAddr        string  `koanf:"http_addr"`
	MetricsAddr     string  `koanf:"metrics_addr"`
	MySQLDSN        string  `koanf:"mysql_dsn"`
	RedisAddr       string  `koanf:"redis_addr"`
	RedisDB         int     `koanf:"redis_db"`
	RedisPass       string  `koanf:"redis_password"`
	FeedBase        string  `koanf:"feed_base_url"`
	FeedKey         string  `koanf:"feed_api_key"`
	FeedRPS         int     `koanf:"feed_rps"`
	Workers         int     `koanf:"ingest_workers"`
	CacheTTLSeconds int     `koanf:"cache_ttl_seconds"`
	RateLimitRPS    float64 `koanf:"rate_limit_rps"`
	RateLimitBurst  int     `koanf:"rate_limit_burst"`
	// DisplayTimeZone only labels rendered hours; open/closed checks never read it.
	DisplayTimeZone string `koanf:"display_time_zone"`

	CacheTTL time.Duration `koanf:"-"`
}

func Defaults() Config {
	return Config{
		AppEnv:          "prod",
		HTTPAddr:        ":8080",
		MetricsAddr:     "",
		MySQLDSN:        "root:root@tcp(localhost:3306)/bakery?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		RedisAddr:       "localhost:6379",
		FeedBase:        "http://localhost:9000/api/v1",
		FeedRPS:         5,
		Workers:         8,
		CacheTTLSeconds: 900,
		RateLimitRPS:    50,
		RateLimitBurst:  100,
		DisplayTimeZone: "UTC",
	}
}

// Load layers defaults, an optional YAML file (BAKERY_CONFIG) and the environment.
// Keys are the lower-cased env names, e.g. HTTP_ADDR -> http_addr.
func Load() (Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("BAKERY_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, err
		}
	}
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return Config{}, err
	}

	c := Defaults()
	if err := k.UnmarshalWithConf("", &c, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, err
	}
	c.CacheTTL = time.Duration(c.CacheTTLSeconds) * time.Second

	if c.HTTPAddr == "" {
		return Config{}, errors.New("http_addr must not be empty")
	}
	if c.Workers <= 0 {
		return Config{}, errors.New("ingest_workers must be positive")
	}
	if c.DisplayTimeZone == "" {
		c.DisplayTimeZone = "UTC"
	}
	if c.FeedKey == "" {
		log.Warn().Msg("FEED_API_KEY is empty")
	}
	return c, nil
}
