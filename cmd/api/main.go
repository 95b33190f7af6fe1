// Command api runs the taskboard HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/chamomile/taskboard/internal/api"
	"github.com/chamomile/taskboard/internal/api/middleware"
	mongodb "github.com/chamomile/taskboard/internal/infrastructure/db/mongo"
	redisdb "github.com/chamomile/taskboard/internal/infrastructure/db/redis"
	"github.com/chamomile/taskboard/internal/pkg/config"
	"github.com/chamomile/taskboard/internal/token"
	"github.com/chamomile/taskboard/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

const (
	shutdownTimeout = 10 * time.Second
	janitorInterval = 5 * time.Minute
)

// @title           Taskboard API
// @version         1.0
// @description     Personal task tracking: JWT auth, per-user todo/doing/done board.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in              header
// @name            Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Development(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	client, db, err := mongodb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	if err := mongodb.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user indexes failed")
	}
	if err := mongodb.NewTaskRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("task indexes failed")
	}

	// --- Rate limit counters: shared Redis when configured, else in-process ---
	var (
		rdb   *goredis.Client
		store middleware.CounterStore
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redisdb.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer func() {
			_ = rdb.Close()
		}()
		store = redisdb.NewCounterStore(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("rate limiting backed by redis")
	} else {
		mem := middleware.NewMemoryStore()
		mem.StartJanitor(ctx, janitorInterval)
		store = mem
		log.Info().Msg("rate limiting backed by in-process counters")
	}

	issuer := token.NewIssuer(cfg.JWTSecret, token.DefaultTTL, log)

	e := api.NewRouter(db, rdb, store, issuer, cfg, log)

	// --- Serve until signalled ---
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
