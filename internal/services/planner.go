package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type PlanRequest struct {
	NumVehicles int
	Depot       int
	Improve     bool
	// Stops overrides the repository when non-empty.
	Stops []domain.Stop
}

// Planner runs the full pipeline: stops -> matrix -> solve -> (improve) -> store.
// Plans and Cache are optional.
type Planner struct {
	Stops    ports.StopRepository
	Plans    ports.PlanRepository
	Cache    ports.PlanCache
	Improver Improver
	Workers  int

	now   func() time.Time
	newID func() string
}

func NewPlanner(stops ports.StopRepository, plans ports.PlanRepository, cache ports.PlanCache, workers int) *Planner {
	return &Planner{
		Stops:    stops,
		Plans:    plans,
		Cache:    cache,
		Improver: TwoOpt{},
		Workers:  workers,
	}
}

func (p *Planner) Plan(ctx context.Context, req PlanRequest) (_ *domain.PlanResult, err error) {
	defer obs.Time(ctx, "planner.Plan")(&err)
	defer func() {
		if err != nil {
			obs.PlansTotal.WithLabelValues("error").Inc()
		}
	}()

	stops := req.Stops
	if len(stops) == 0 {
		if p.Stops == nil {
			return nil, fmt.Errorf("plan routes: %w: no stops given and no stop repository", domain.ErrInvalidStopSet)
		}
		stops, err = p.Stops.ListStops(ctx)
		if err != nil {
			return nil, fmt.Errorf("plan routes: list stops: %w", err)
		}
	}

	set, err := domain.NewStopSet(stops, req.Depot)
	if err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}

	key := fingerprint(set, req)
	if p.Cache != nil {
		cached, err := p.Cache.Get(ctx, key)
		switch {
		case err == nil:
			obs.PlansTotal.WithLabelValues("cached").Inc()
			slog.Debug("route plan cache hit", "req_id", obs.RequestID(ctx), "plan_id", cached.PlanID)
			return cached, nil
		case !errors.Is(err, ports.ErrPlanNotFound):
			slog.Warn("plan cache read failed", "req_id", obs.RequestID(ctx), "err", err)
		}
	}

	start := time.Now()
	matrix, err := BuildDistanceMatrix(ctx, set, p.Workers)
	if err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}
	obs.StageDuration.WithLabelValues("matrix").Observe(time.Since(start).Seconds())

	start = time.Now()
	plan, err := Solve(matrix, req.NumVehicles, set.Depot())
	if err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}
	obs.StageDuration.WithLabelValues("solve").Observe(time.Since(start).Seconds())

	improved := false
	// A depot-only set has nothing to reorder.
	if req.Improve && set.HasWork() {
		imp := p.Improver
		if imp == nil {
			imp = TwoOpt{}
		}
		start = time.Now()
		plan, err = imp.Improve(matrix, plan)
		if err != nil {
			return nil, fmt.Errorf("plan routes: improve: %w", err)
		}
		obs.StageDuration.WithLabelValues("improve").Observe(time.Since(start).Seconds())
		improved = true
	}

	routes, total := domain.ResolvePlan(set, matrix, plan)
	result := &domain.PlanResult{
		PlanID:      p.id(),
		CreatedAt:   p.clock().UTC(),
		NumVehicles: req.NumVehicles,
		Depot:       set.Depot(),
		Improved:    improved,
		Stops:       set.Stops(),
		Routes:      routes,
		TotalKm:     total,
		Empty:       plan.Empty(),
	}

	if p.Plans != nil {
		if err := p.Plans.SavePlan(ctx, result); err != nil {
			return nil, fmt.Errorf("plan routes: save plan: %w", err)
		}
	}

	if p.Cache != nil {
		if err := p.Cache.Put(ctx, key, result); err != nil {
			slog.Warn("plan cache write failed", "req_id", obs.RequestID(ctx), "err", err)
		}
	}

	outcome := "solved"
	if result.Empty {
		outcome = "empty"
	}
	obs.PlansTotal.WithLabelValues(outcome).Inc()
	slog.Info("route plan built",
		"req_id", obs.RequestID(ctx),
		"plan_id", result.PlanID,
		"stops", set.Len(),
		"vehicles", req.NumVehicles,
		"total_km", strconv.FormatFloat(total, 'f', 3, 64),
		"empty", result.Empty,
	)

	return result, nil
}

// GetPlan loads a stored result. It returns ports.ErrPlanNotFound for unknown ids.
func (p *Planner) GetPlan(ctx context.Context, planID string) (*domain.PlanResult, error) {
	if p.Plans == nil {
		return nil, fmt.Errorf("get plan %q: %w", planID, ports.ErrPlanNotFound)
	}
	res, err := p.Plans.GetPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("get plan %q: %w", planID, err)
	}
	return res, nil
}

func (p *Planner) id() string {
	if p.newID != nil {
		return p.newID()
	}
	return uuid.NewString()
}

func (p *Planner) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}

// fingerprint identifies a planning instance for the plan cache.
func fingerprint(set domain.StopSet, req PlanRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "v=%d|d=%d|i=%t", req.NumVehicles, set.Depot(), req.Improve)
	for i := 0; i < set.Len(); i++ {
		s := set.At(i)
		fmt.Fprintf(h, "|%s,%s,%s",
			s.ID,
			strconv.FormatFloat(s.Coordinates.Lat, 'g', -1, 64),
			strconv.FormatFloat(s.Coordinates.Lon, 'g', -1, 64),
		)
	}
	return hex.EncodeToString(h.Sum(nil))
}
