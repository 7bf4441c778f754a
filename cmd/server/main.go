package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"route-planner-service/internal/adapters/cache"
	"route-planner-service/internal/adapters/repositories"
	"route-planner-service/internal/api"
	"route-planner-service/internal/config"
	"route-planner-service/internal/platform/db"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/services"
	"strings"
	"syscall"
	"time"
)

// main is the application composition root.
// It wires concrete adapters (SQLite or Postgres, Redis) behind ports and starts the HTTP server.
func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	obs.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	if cfg.DBDriver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
	}

	conn, dialect, err := db.Connect(cfg.DBDriver, cfg.DBPath, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	stops := repositories.NewStopRepository(conn, dialect)
	plans := repositories.NewPlanRepository(conn, dialect)

	// Initialize schema and seed demo stops on startup for local runs.
	if err := initAndSeed(conn, dialect, stops, cfg.SeedPath); err != nil {
		return err
	}

	planner := services.NewPlanner(stops, plans, nil, cfg.MatrixWorkers)

	if strings.TrimSpace(cfg.RedisURL) != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.OpenRedis(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			return err
		}
		defer client.Close()

		planner.Cache = cache.NewRedisPlanCache(client, cfg.PlanCacheTTL)
		slog.Info("plan cache enabled", "ttl", cfg.PlanCacheTTL.String())
	}

	router := api.NewRouter(planner, stops, cfg.DefaultVehicles)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "db", dialect.String())
		errc <- srv.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// initAndSeed creates the schema and loads the seed file when the stop table is empty.
func initAndSeed(conn *sql.DB, dialect db.Dialect, stops *repositories.StopRepository, seedPath string) error {
	if err := repositories.InitSchema(conn, dialect); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	existing, err := stops.ListStops(context.Background())
	if err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	if len(existing) > 0 || strings.TrimSpace(seedPath) == "" {
		return nil
	}

	if err := repositories.SeedFromJSON(context.Background(), stops, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	slog.Info("stops seeded", "path", seedPath)
	return nil
}
