// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the MathLab HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Build security, metrics and identity providers.
//  7. Wire domain services and HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/taibuivan/mathlab/internal/api"
	"github.com/taibuivan/mathlab/internal/learning/leaderboard"
	"github.com/taibuivan/mathlab/internal/learning/lesson"
	"github.com/taibuivan/mathlab/internal/learning/problem"
	"github.com/taibuivan/mathlab/internal/platform/calendar"
	"github.com/taibuivan/mathlab/internal/platform/config"
	"github.com/taibuivan/mathlab/internal/platform/constants"
	"github.com/taibuivan/mathlab/internal/platform/metrics"
	"github.com/taibuivan/mathlab/internal/platform/migration"
	pgstore "github.com/taibuivan/mathlab/internal/platform/postgres"
	redisstore "github.com/taibuivan/mathlab/internal/platform/redis"
	"github.com/taibuivan/mathlab/internal/platform/respond"
	"github.com/taibuivan/mathlab/internal/platform/sec"
	"github.com/taibuivan/mathlab/internal/users/account"
	"github.com/taibuivan/mathlab/internal/users/auth"
	"github.com/taibuivan/mathlab/internal/users/social"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}
	respond.ExposeCauses(cfg.IsDevelopment())

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("timezone", cfg.Timezone),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Lives as long as the process; stops background janitors on shutdown.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Security, Metrics, Providers ───────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)
	must(log, err, "initialize jwt service")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	clock := calendar.New(cfg.Location())

	providers := map[auth.Provider]social.Provider{
		auth.ProviderKakao:  social.NewKakaoClient(social.KakaoConfig{ProfileURL: cfg.KakaoAPIURL}),
		auth.ProviderGoogle: social.Disabled{},
		auth.ProviderApple:  social.Disabled{},
	}
	if cfg.GoogleClientID != "" {
		google, err := social.NewGoogleVerifier(appCtx, cfg.GoogleClientID)
		must(log, err, "initialize google verifier")
		providers[auth.ProviderGoogle] = google
	}
	if cfg.AppleClientID != "" {
		apple, err := social.NewAppleVerifier(appCtx, cfg.AppleClientID)
		must(log, err, "initialize apple verifier")
		providers[auth.ProviderApple] = apple
	}

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(context context.Context) error {
			return pgstore.Ping(context, pool)
		},
		CheckCache: func(context context.Context) error {
			return redisstore.Ping(context, rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	leaderboardService := leaderboard.NewService(
		leaderboard.NewRepository(pool),
		leaderboard.NewRedisCache(rdb),
		clock, collector, log,
	)

	accountService := account.NewService(account.NewAccountRepository(pool), leaderboardService, collector, log)
	lessonService := lesson.NewService(lesson.NewLessonRepository(pool), leaderboardService, collector, log)
	problemService := problem.NewService(problem.NewProblemRepository(pool), leaderboardService, collector, log)

	authService := auth.NewService(auth.Dependencies{
		Users:     auth.NewUserRepository(pool),
		Sessions:  auth.NewSessionStore(rdb),
		Lessons:   lessonService,
		Tokens:    tokens,
		Hasher:    sec.NewHasher(cfg.BcryptCost),
		Providers: providers,
		Clock:     clock,
		Metrics:   collector,
		Logger:    log,
	}, auth.Settings{
		RefreshTTL:               tokens.RefreshTTL(),
		RequireVerifiedEmailLink: cfg.SocialLinkRequireVerifiedEmail,
	})

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:    liveness,
		Readiness:   readiness,
		Metrics:     metrics.Handler(registry),
		Auth:        auth.NewHandler(authService),
		Account:     account.NewHandler(accountService),
		Lesson:      lesson.NewHandler(lessonService),
		Problem:     problem.NewHandler(problemService),
		Leaderboard: leaderboard.NewHandler(leaderboardService),
	}

	server := api.NewServer(appCtx, cfg, log, tokens, collector, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("server_shutting_down", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

// newLogger builds the JSON logger tagged with the application name.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
