package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	EventsBase  string
	EventsKey   string
	EventsRPS   int
	RoutingBase string
	RoutingKey  string
	RoutingRPS  int
	Workers     int
	CacheTTL    time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/discovery?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),
		EventsBase:  env("EVENTS_BASE_URL", ""),
		EventsKey:   env("EVENTS_API_KEY", ""),
		EventsRPS:   atoi("EVENTS_RPS", 5),
		RoutingBase: env("ROUTING_BASE_URL", ""),
		RoutingKey:  env("ROUTING_API_KEY", ""),
		RoutingRPS:  atoi("ROUTING_RPS", 5),
		Workers:     atoi("INGEST_WORKERS", 8),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if c.RoutingBase == "" {
		log.Warn().Msg("ROUTING_BASE_URL is empty; travel times disabled")
	}
	if c.EventsBase == "" {
		log.Warn().Msg("EVENTS_BASE_URL is empty; event discovery disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
