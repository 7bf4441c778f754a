package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/db"
	"route-planner-service/internal/ports"
	"time"
)

// SQL-backed implementation of the PlanRepository port.
type PlanRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewPlanRepository(conn *sql.DB, dialect db.Dialect) *PlanRepository {
	return &PlanRepository{DB: conn, Dialect: dialect}
}

// SavePlan stores the plan header and one row per visit.
func (s *PlanRepository) SavePlan(ctx context.Context, r *domain.PlanResult) error {
	if s.DB == nil {
		return errors.New("plan repository: DB is nil")
	}
	if r == nil || r.PlanID == "" {
		return errors.New("save plan: plan id must not be empty")
	}

	stopsJSON, err := json.Marshal(r.Stops)
	if err != nil {
		return fmt.Errorf("save plan %s: encode stops: %w", r.PlanID, err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save plan %s: begin tx: %w", r.PlanID, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, s.Dialect.Rebind(`
	INSERT INTO route_plans (plan_id, created_at, num_vehicles, depot, improved, empty, total_km, stops_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`), r.PlanID, r.CreatedAt.UTC().Format(time.RFC3339Nano), r.NumVehicles, r.Depot, r.Improved, r.Empty, r.TotalKm, string(stopsJSON))
	if err != nil {
		return fmt.Errorf("save plan %s: insert header: %w", r.PlanID, err)
	}

	stmt, err := tx.PrepareContext(ctx, s.Dialect.Rebind(`
	INSERT INTO route_plan_visits (plan_id, vehicle, seq, stop_index, leg_km)
	VALUES (?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save plan %s: prepare visits: %w", r.PlanID, err)
	}
	defer stmt.Close()

	for _, route := range r.Routes {
		for seq, st := range route.Stops {
			if _, err := stmt.ExecContext(ctx, r.PlanID, route.Vehicle, seq, st.Index, st.LegKm); err != nil {
				return fmt.Errorf("save plan %s: insert vehicle=%d seq=%d: %w", r.PlanID, route.Vehicle, seq, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save plan %s: commit tx: %w", r.PlanID, err)
	}
	return nil
}

// GetPlan loads a stored plan; unknown ids yield ports.ErrPlanNotFound.
func (s *PlanRepository) GetPlan(ctx context.Context, planID string) (*domain.PlanResult, error) {
	if s.DB == nil {
		return nil, errors.New("plan repository: DB is nil")
	}

	var (
		res       = &domain.PlanResult{PlanID: planID}
		createdAt string
		stopsJSON string
	)
	err := s.DB.QueryRowContext(ctx, s.Dialect.Rebind(`
	SELECT created_at, num_vehicles, depot, improved, empty, total_km, stops_json
	FROM route_plans
	WHERE plan_id = ?;
	`), planID).Scan(&createdAt, &res.NumVehicles, &res.Depot, &res.Improved, &res.Empty, &res.TotalKm, &stopsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan %s: query header: %w", planID, err)
	}

	if res.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("get plan %s: parse created_at %q: %w", planID, createdAt, err)
	}
	if err := json.Unmarshal([]byte(stopsJSON), &res.Stops); err != nil {
		return nil, fmt.Errorf("get plan %s: decode stops: %w", planID, err)
	}

	rows, err := s.DB.QueryContext(ctx, s.Dialect.Rebind(`
	SELECT vehicle, stop_index, leg_km
	FROM route_plan_visits
	WHERE plan_id = ?
	ORDER BY vehicle, seq;
	`), planID)
	if err != nil {
		return nil, fmt.Errorf("get plan %s: query visits: %w", planID, err)
	}
	defer rows.Close()

	res.Routes = make([]domain.PlannedRoute, 0, res.NumVehicles)
	for rows.Next() {
		var vehicle, idx int
		var leg float64
		if err := rows.Scan(&vehicle, &idx, &leg); err != nil {
			return nil, fmt.Errorf("get plan %s: scan visit: %w", planID, err)
		}
		if idx < 0 || idx >= len(res.Stops) {
			return nil, fmt.Errorf("get plan %s: visit references stop %d of %d", planID, idx, len(res.Stops))
		}

		if n := len(res.Routes); n == 0 || res.Routes[n-1].Vehicle != vehicle {
			res.Routes = append(res.Routes, domain.PlannedRoute{Vehicle: vehicle})
		}
		pr := &res.Routes[len(res.Routes)-1]
		st := res.Stops[idx]
		pr.Stops = append(pr.Stops, domain.RouteStop{
			Index:       idx,
			StopID:      st.ID,
			Coordinates: st.Coordinates,
			LegKm:       leg,
		})
		pr.Sequence = append(pr.Sequence, idx)
		pr.TotalKm += leg
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get plan %s: row iteration: %w", planID, err)
	}

	return res, nil
}
