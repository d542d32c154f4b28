package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"place_discovery/internal/adapters/observability"
	redisad "place_discovery/internal/adapters/redis"
	"place_discovery/internal/app"
	"place_discovery/internal/shared"
	mysqlrepo "place_discovery/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, using process environment")
	}
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	st, err := shared.LoadSettings()
	if err != nil {
		log.Fatal().Err(err).Msg("load settings failed")
	}

	seedPath := os.Getenv("SEED_FILE")
	if seedPath == "" {
		log.Fatal().Msg("SEED_FILE is not set")
	}
	raw, err := os.ReadFile(seedPath)
	if err != nil {
		log.Fatal().Err(err).Str("file", seedPath).Msg("read seed file failed")
	}
	var payloads []map[string]any
	if err := json.Unmarshal(raw, &payloads); err != nil {
		log.Fatal().Err(err).Msg("seed file is not a JSON array of objects")
	}

	log.Info().
		Str("file", seedPath).
		Int("payloads", len(payloads)).
		Int("workers", cfg.Workers).
		Int("batch", st.IngestBatch).
		Msg("ingestor starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	if err := mysqlrepo.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure schema failed")
	}

	repo := mysqlrepo.New(db, st.NearbyLimit)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	ing := app.NewIngestionService(repo, cache)

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup
	var total atomic.Int64

	for start := 0; start < len(payloads); start += st.IngestBatch {
		end := start + st.IngestBatch
		if end > len(payloads) {
			end = len(payloads)
		}
		batch := payloads[start:end]

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(offset int, batch []map[string]any) {
			defer wg.Done()
			defer sem.Release(int64(1))

			n, err := ing.IngestPlaces(ctx, batch)
			if err != nil {
				log.Warn().Int("offset", offset).Err(err).Msg("batch ingest failed")
				return
			}
			total.Add(int64(n))
			log.Info().Int("offset", offset).Int("stored", n).Msg("batch ok")
		}(start, batch)
	}

	wg.Wait()
	log.Info().Int64("stored", total.Load()).Msg("ingestion completed")
}
