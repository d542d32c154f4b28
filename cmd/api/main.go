package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"place_discovery/internal/adapters/events"
	server "place_discovery/internal/adapters/http_server"
	"place_discovery/internal/adapters/observability"
	redisad "place_discovery/internal/adapters/redis"
	"place_discovery/internal/adapters/routing"
	"place_discovery/internal/app"
	"place_discovery/internal/domain"
	"place_discovery/internal/shared"
	mysqlrepo "place_discovery/internal/storage/mysql"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, using process environment")
	}
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	st, err := shared.LoadSettings()
	if err != nil {
		log.Fatal().Err(err).Msg("load settings failed")
	}

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
	repo := mysqlrepo.New(db, st.NearbyLimit)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(context.Background()); err != nil {
		log.Warn().Err(err).Msg("redis ping failed; lookups fall back to the geo source")
	}

	var eventsSrc domain.EventSource
	if st.EventsEnabled && cfg.EventsBase != "" {
		ev, err := events.New(cfg.EventsBase, cfg.EventsKey, cfg.EventsRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("events client init failed")
		}
		eventsSrc = ev
	}

	var travel *app.TravelTimeCache
	if cfg.RoutingBase != "" {
		rt, err := routing.New(cfg.RoutingBase, cfg.RoutingKey, cfg.RoutingRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("routing client init failed")
		}
		travel = app.NewTravelTimeCache(rt, time.Duration(st.TravelBudgetMS)*time.Millisecond)
	}

	store := app.NewPlaceStore(repo, eventsSrc, travel, cache, st.SearchRadiusKm, cfg.CacheTTL)
	defer store.Close()

	unsubscribe := store.Subscribe(func(displayed []domain.Place) {
		log.Debug().Int("displayed", len(displayed)).Msg("collection updated")
	})
	defer unsubscribe()

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Store: store})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
