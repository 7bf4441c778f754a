package main

import (
	"context"
	"log/slog"
	"os"
	"route-planner-service/internal/adapters/repositories"
	"route-planner-service/internal/config"
	"route-planner-service/internal/platform/db"
	"route-planner-service/internal/platform/obs"
	"strings"

	"github.com/joho/godotenv"
)

// dbtool initialises the postgres schema and replaces the stored stops with the seed file.
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found (using environment variables)")
	}
	obs.SetupLogger(config.Get("LOG_LEVEL", "info"), config.Get("LOG_FORMAT", "text"))

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		fatal("open database", "err", err)
	}
	defer conn.Close()

	slog.Info("initializing database schema")
	if err := repositories.InitSchema(conn, db.Postgres); err != nil {
		fatal("schema initialization failed", "err", err)
	}
	slog.Info("schema ready")

	seedPath := config.Get("SEED_PATH", "data/seeds/stops.json")
	slog.Info("seeding stops", "path", seedPath)
	repo := repositories.NewStopRepository(conn, db.Postgres)
	if err := repositories.SeedFromJSON(context.Background(), repo, seedPath); err != nil {
		fatal("seeding failed", "err", err)
	}
	slog.Info("seeding complete")
}

func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}
