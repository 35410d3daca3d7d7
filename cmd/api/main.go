// Package main is the entry point for the Web Scheduler API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/nsorokin/web-scheduler/backend/internal/audit"
	"github.com/nsorokin/web-scheduler/backend/internal/config"
	"github.com/nsorokin/web-scheduler/backend/internal/handler"
	"github.com/nsorokin/web-scheduler/backend/internal/middleware"
	"github.com/nsorokin/web-scheduler/backend/internal/repo"
	"github.com/nsorokin/web-scheduler/backend/internal/service"
	"github.com/nsorokin/web-scheduler/backend/migrations"
	"github.com/nsorokin/web-scheduler/backend/spec"
)

// maxBodySize caps request bodies at 1 MiB. Schedule and tag payloads are
// small; anything larger is not a legitimate request.
const maxBodySize = 1 << 20

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog is the stdlib structured logger introduced in Go 1.21.
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately — the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Migrations -------------------------------------------------------
	// Goose runs the embedded SQL migrations on startup. This keeps schema
	// and code deployed together; a failed migration aborts the process
	// before the server accepts any traffic.
	if err := runMigrations(cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	// --- Repositories & services ------------------------------------------
	tagRepo := repo.NewTagRepo(pool)
	tagValueRepo := repo.NewTagValueRepo(pool)
	scheduleRepo := repo.NewScheduleRepo(pool)
	auditRepo := repo.NewAuditRepo(pool)
	txManager := repo.NewTxManager(pool)

	// The recorder decouples audit writes from request handling. Entries are
	// queued and inserted by a background goroutine; a full queue drops the
	// entry rather than stalling the mutation that produced it.
	recorder := audit.NewRecorder(auditRepo, logger, cfg.AuditQueueSize)
	recorder.Start()

	tagService := service.NewTagService(tagRepo, txManager, recorder)
	tagValueService := service.NewTagValueService(tagRepo, tagValueRepo, txManager, recorder)
	scheduleService := service.NewScheduleService(scheduleRepo, tagValueRepo, txManager, recorder)
	auditService := service.NewAuditService(auditRepo)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodySize))

	srvHandler := handler.NewServer(tagService, tagValueService, scheduleService, auditService)
	r.Mount("/", srvHandler.Routes())
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(spec.OpenAPI)
	})

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	// Drain queued audit entries after in-flight requests have finished, so
	// mutations that completed during shutdown still get their log rows.
	recorder.Close()
	slog.Info("server stopped")
}

// runMigrations applies all pending embedded migrations. Goose needs a
// *sql.DB, so a short-lived connection is opened via the pgx stdlib driver
// and closed once migration is done.
func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}

	_, err = provider.Up(context.Background())
	return err
}
