package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invoicing-backend/internal/adapters/replay/redisledger"
	pg "invoicing-backend/internal/adapters/storage/postgres"
	"invoicing-backend/internal/config"
	"invoicing-backend/internal/platform/logger"
	"invoicing-backend/internal/platform/metrics"
	"invoicing-backend/internal/router"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewFromEnv().Error("config error", map[string]any{"error": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
		Env:    cfg.Env,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres opcional: sin DB_DSN corre in-memory (modo dev)
	var db *sql.DB
	if cfg.DatabaseDSN != "" {
		mctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err = pg.Migrate(mctx, cfg.DatabaseDSN, log)
		cancel()
		if err != nil {
			log.Error("migration failed", map[string]any{"error": err})
			os.Exit(1)
		}

		db, err = pg.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Error("postgres unavailable", map[string]any{"error": err})
			os.Exit(1)
		}
		defer db.Close()
	} else {
		log.Warn("DB_DSN not set, using in-memory storage", nil)
	}

	var rdb *redis.Client
	if cfg.CapabilitySingleUse && cfg.RedisAddr != "" {
		rdb, err = redisledger.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			log.Error("redis unavailable", map[string]any{"error": err})
			os.Exit(1)
		}
		defer rdb.Close()
	}

	opts := router.Options{
		Config:  cfg,
		Logger:  log,
		Metrics: metrics.New("invoicing"),
		DB:      db,
	}
	if rdb != nil {
		opts.Redis = rdb
	}
	h, err := router.NewRouter(opts)
	if err != nil {
		log.Error("router error", map[string]any{"error": err})
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		log.Info("starting server", map[string]any{
			"addr":                  srv.Addr,
			"storage":               storageName(db),
			"capability_single_use": cfg.CapabilitySingleUse,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", map[string]any{"error": err})
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", map[string]any{"error": err})
	}
	log.Info("server stopped", nil)
}

func storageName(db *sql.DB) string {
	if db != nil {
		return "postgres"
	}
	return "memory"
}
