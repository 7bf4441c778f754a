package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"route-planner-service/internal/platform/db"
)

// InitSchema creates the stop, plan and geocode cache tables if they do not exist.
func InitSchema(conn *sql.DB, dialect db.Dialect) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	realType := "REAL"
	if dialect == db.Postgres {
		realType = "DOUBLE PRECISION"
	}

	statements := []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS stops (
			position INTEGER PRIMARY KEY,
			stop_id TEXT NOT NULL UNIQUE,
			lat %[1]s NOT NULL,
			lon %[1]s NOT NULL
		);`, realType),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS geocode_cache (
			address TEXT PRIMARY KEY,
			lon %[1]s NOT NULL,
			lat %[1]s NOT NULL
		);`, realType),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS route_plans (
			plan_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			num_vehicles INTEGER NOT NULL,
			depot INTEGER NOT NULL,
			improved BOOLEAN NOT NULL,
			empty BOOLEAN NOT NULL,
			total_km %[1]s NOT NULL,
			stops_json TEXT NOT NULL
		);`, realType),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS route_plan_visits (
			plan_id TEXT NOT NULL REFERENCES route_plans(plan_id) ON DELETE CASCADE,
			vehicle INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			stop_index INTEGER NOT NULL,
			leg_km %[1]s NOT NULL,
			PRIMARY KEY (plan_id, vehicle, seq)
		);`, realType),
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
