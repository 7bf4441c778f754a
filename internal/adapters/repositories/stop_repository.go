package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/db"
	"strings"
)

// SQL-backed implementation of the StopRepository port.
// Stops are kept in insertion order; position 0 is the default depot.
type StopRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewStopRepository(conn *sql.DB, dialect db.Dialect) *StopRepository {
	return &StopRepository{DB: conn, Dialect: dialect}
}

// Return all stops ordered by position.
func (s *StopRepository) ListStops(ctx context.Context) ([]domain.Stop, error) {
	if s.DB == nil {
		return nil, errors.New("stop repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT stop_id, lat, lon
	FROM stops
	ORDER BY position;
	`)
	if err != nil {
		return nil, fmt.Errorf("list stops: query stops table: %w", err)
	}
	defer rows.Close()

	stops := make([]domain.Stop, 0, 64)
	for rows.Next() {
		var st domain.Stop
		if err := rows.Scan(&st.ID, &st.Coordinates.Lat, &st.Coordinates.Lon); err != nil {
			return nil, fmt.Errorf("list stops: scan row: %w", err)
		}
		stops = append(stops, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stops: row iteration: %w", err)
	}

	return stops, nil
}

// ReplaceStops swaps the stored stop list for stops in one transaction.
func (s *StopRepository) ReplaceStops(ctx context.Context, stops []domain.Stop) error {
	if s.DB == nil {
		return errors.New("stop repository: DB is nil")
	}

	// Validate ids and coordinates up front so a bad list never half-replaces the table.
	if _, err := domain.NewStopSet(stops, 0); err != nil {
		return fmt.Errorf("replace stops: %w", err)
	}
	for _, st := range stops {
		if err := st.Coordinates.Validate(); err != nil {
			return fmt.Errorf("replace stops: stop %q: %w", st.ID, err)
		}
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace stops: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stops;`); err != nil {
		return fmt.Errorf("replace stops: clear table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.Dialect.Rebind(`
	INSERT INTO stops (position, stop_id, lat, lon)
	VALUES (?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("replace stops: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, st := range stops {
		id := strings.TrimSpace(st.ID)
		if _, err := stmt.ExecContext(ctx, i, id, st.Coordinates.Lat, st.Coordinates.Lon); err != nil {
			return fmt.Errorf("replace stops: insert stop_id=%q: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace stops: commit tx: %w", err)
	}

	return nil
}

type StopSeed struct {
	StopID    string  `json:"stop_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Populate the stops table from a JSON file of StopSeed entries; the first entry is the depot.
func SeedFromJSON(ctx context.Context, repo *StopRepository, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed stops: read %q: %w", jsonPath, err)
	}

	var data []StopSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed stops: parse json: %w", err)
	}

	stops := make([]domain.Stop, 0, len(data))
	for _, item := range data {
		stops = append(stops, domain.Stop{
			ID:          strings.TrimSpace(item.StopID),
			Coordinates: domain.Coordinates{Lat: item.Latitude, Lon: item.Longitude},
		})
	}

	if err := repo.ReplaceStops(ctx, stops); err != nil {
		return fmt.Errorf("seed stops: %w", err)
	}
	return nil
}
