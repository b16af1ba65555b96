// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the Viva Bem na Estrada backend.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"vivabem/internal/auth"
	"vivabem/internal/cache"
	"vivabem/internal/config"
	"vivabem/internal/database"
	"vivabem/internal/handlers"
	"vivabem/internal/logger"
	"vivabem/internal/metrics"
	"vivabem/internal/middleware"
	"vivabem/internal/router"
	"vivabem/internal/session"
	"vivabem/internal/storage"
	"vivabem/internal/store"
	"vivabem/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "vivabem: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	flush, err := logger.Install(cfg.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer flush()

	log := zap.S()
	log.Infow("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	m, metricsHandler, err := metrics.Setup("vivabem")
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// PostgreSQL is optional: without it reads are empty and writes fail
	// with "service unavailable".
	var db *sql.DB
	if dsn := cfg.DSN(); dsn != "" {
		db, err = database.Connect(ctx, dsn)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		if cfg.IsDev() {
			if err := database.Seed(ctx, db); err != nil {
				return err
			}
		}
	} else {
		log.Warn("database not configured, content is empty and writes are disabled")
	}

	// Valkey backs sessions and the query cache. Without it the public site
	// still works uncached and admin login reports unavailable.
	valkey, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		log.Warnw("valkey unavailable, sessions and query cache disabled", "error", err)
	} else {
		defer valkey.Close()
	}

	posts := store.NewPostStore(db)
	videos := store.NewVideoStore(db)
	ebooks := store.NewEbookStore(db)
	subscribers := store.NewSubscriberStore(db)
	users := store.NewUserStore(db)

	secureCookies := !cfg.IsDev()
	sessions := session.NewStore(valkey, cfg.SessionTTL, secureCookies)

	gate, err := auth.New(auth.Options{
		Password:     cfg.AdminPassword,
		PasswordHash: cfg.AdminPasswordHash,
		TOTPSecret:   cfg.AdminTOTPSecret,
		OwnerOpenID:  cfg.AdminOpenID,
		LoginDelay:   cfg.LoginDelay,
		Metrics:      m,
	}, sessions, users)
	if err != nil {
		return err
	}

	uploads, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
	if err != nil {
		return fmt.Errorf("init s3 storage: %w", err)
	}
	if uploads == nil {
		log.Warn("s3 storage not configured, image uploads disabled")
	} else {
		log.Infow("s3 storage configured", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	}

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPM, m).TrustProxies(proxies)
	defer limiter.Stop()

	var queryCache *cache.QueryCache
	if valkey != nil {
		queryCache = cache.NewQueryCache(valkey, cfg.QueryCacheTTL, m)
	}

	rpc := handlers.NewRPC(handlers.Deps{
		Posts:       posts,
		Videos:      videos,
		Ebooks:      ebooks,
		Subscribers: subscribers,
		Stats:       store.NewStatsStore(db),
		Auth:        gate,
		Uploads:     uploads,
		Cache:       queryCache,
		Limiter:     limiter,
		Metrics:     m,
	})
	export := handlers.NewExport(subscribers)

	r := router.New(router.Options{
		Sessions:      sessions,
		RPC:           rpc,
		Export:        export.NewsletterCSV,
		Metrics:       metricsHandler,
		Static:        web.Static(),
		CORSOrigins:   cfg.CORSOrigins,
		SecureCookies: secureCookies,
		Checks:        healthChecks(db, valkey),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

// healthChecks lists the configured backing services for /health.
func healthChecks(db *sql.DB, valkey *redis.Client) map[string]router.Check {
	checks := map[string]router.Check{}
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	if valkey != nil {
		checks["valkey"] = func(ctx context.Context) error {
			return valkey.Ping(ctx).Err()
		}
	}
	return checks
}
