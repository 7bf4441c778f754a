package services

import (
	"context"
	"errors"
	"reflect"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
	"testing"
	"time"
)

type memStops struct {
	stops []domain.Stop
	err   error
}

func (m *memStops) ListStops(ctx context.Context) ([]domain.Stop, error) { return m.stops, m.err }

type memPlans struct {
	saved map[string]*domain.PlanResult
}

func (m *memPlans) SavePlan(ctx context.Context, r *domain.PlanResult) error {
	if m.saved == nil {
		m.saved = map[string]*domain.PlanResult{}
	}
	m.saved[r.PlanID] = r
	return nil
}

func (m *memPlans) GetPlan(ctx context.Context, id string) (*domain.PlanResult, error) {
	r, ok := m.saved[id]
	if !ok {
		return nil, ports.ErrPlanNotFound
	}
	return r, nil
}

type memCache struct {
	entries map[string]*domain.PlanResult
	gets    int
}

func (m *memCache) Get(ctx context.Context, key string) (*domain.PlanResult, error) {
	m.gets++
	r, ok := m.entries[key]
	if !ok {
		return nil, ports.ErrPlanNotFound
	}
	return r, nil
}

func (m *memCache) Put(ctx context.Context, key string, r *domain.PlanResult) error {
	if m.entries == nil {
		m.entries = map[string]*domain.PlanResult{}
	}
	m.entries[key] = r
	return nil
}

func phoenixStops() []domain.Stop {
	return []domain.Stop{
		{ID: "HUB", Coordinates: domain.Coordinates{Lat: 33.4484, Lon: -112.0740}},
		{ID: "A", Coordinates: domain.Coordinates{Lat: 33.4500, Lon: -112.0600}},
		{ID: "B", Coordinates: domain.Coordinates{Lat: 33.5000, Lon: -112.0000}},
		{ID: "C", Coordinates: domain.Coordinates{Lat: 33.3000, Lon: -111.9000}},
	}
}

func newTestPlanner(stops ports.StopRepository, plans ports.PlanRepository, cache ports.PlanCache) *Planner {
	p := NewPlanner(stops, plans, cache, 2)
	p.now = func() time.Time { return time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC) }
	n := 0
	p.newID = func() string {
		n++
		return "plan-" + string(rune('0'+n))
	}
	return p
}

func TestPlannerPlanFromRepository(t *testing.T) {
	plans := &memPlans{}
	p := newTestPlanner(&memStops{stops: phoenixStops()}, plans, nil)

	res, err := p.Plan(context.Background(), PlanRequest{NumVehicles: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.PlanID != "plan-1" || res.NumVehicles != 2 || res.Empty {
		t.Fatalf("unexpected result header: %+v", res)
	}
	if len(res.Routes) != 2 {
		t.Fatalf("routes = %d, want 2", len(res.Routes))
	}
	if err := res.Plan().CheckCoverage(len(res.Stops)); err != nil {
		t.Fatalf("coverage: %v", err)
	}
	if res.Routes[0].Stops[0].StopID != "HUB" {
		t.Fatalf("route does not start at the hub: %+v", res.Routes[0].Stops[0])
	}
	if res.TotalKm <= 0 {
		t.Fatalf("total km = %v, want positive", res.TotalKm)
	}

	stored, err := p.GetPlan(context.Background(), "plan-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != res {
		t.Fatalf("stored plan differs from returned plan")
	}
}

func TestPlannerRequestStopsOverrideRepository(t *testing.T) {
	repo := &memStops{err: errors.New("should not be called")}
	p := newTestPlanner(repo, nil, nil)

	res, err := p.Plan(context.Background(), PlanRequest{NumVehicles: 1, Stops: phoenixStops()[:2]})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Routes[0].Sequence; !reflect.DeepEqual(got, []int{0, 1, 0}) {
		t.Fatalf("sequence = %v", got)
	}
}

func TestPlannerDepotOnlyIsEmpty(t *testing.T) {
	p := newTestPlanner(&memStops{stops: phoenixStops()[:1]}, nil, nil)

	res, err := p.Plan(context.Background(), PlanRequest{NumVehicles: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Empty || res.TotalKm != 0 {
		t.Fatalf("expected empty plan, got %+v", res)
	}
}

func TestPlannerDepotOnlySkipsImprove(t *testing.T) {
	p := newTestPlanner(&memStops{stops: phoenixStops()[:1]}, nil, nil)

	res, err := p.Plan(context.Background(), PlanRequest{NumVehicles: 1, Improve: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Empty || res.Improved {
		t.Fatalf("depot-only plan: empty = %v improved = %v, want true false", res.Empty, res.Improved)
	}

	res, err = p.Plan(context.Background(), PlanRequest{NumVehicles: 1, Improve: true, Stops: phoenixStops()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Improved {
		t.Fatalf("expected improve pass to run when there are stops to visit")
	}
}

func TestPlannerUsesCache(t *testing.T) {
	cache := &memCache{}
	p := newTestPlanner(&memStops{stops: phoenixStops()}, nil, cache)

	first, err := p.Plan(context.Background(), PlanRequest{NumVehicles: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.Plan(context.Background(), PlanRequest{NumVehicles: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != first {
		t.Fatalf("second request was not served from the cache")
	}

	third, err := p.Plan(context.Background(), PlanRequest{NumVehicles: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third == first {
		t.Fatalf("different vehicle count must not share a cache entry")
	}
}

func TestPlannerImprove(t *testing.T) {
	p := newTestPlanner(&memStops{stops: phoenixStops()}, nil, nil)

	plain, err := p.Plan(context.Background(), PlanRequest{NumVehicles: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	improved, err := p.Plan(context.Background(), PlanRequest{NumVehicles: 1, Improve: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !improved.Improved {
		t.Fatalf("expected improved flag")
	}
	if improved.TotalKm > plain.TotalKm+1e-9 {
		t.Fatalf("improved total %v > plain total %v", improved.TotalKm, plain.TotalKm)
	}
}

func TestPlannerErrors(t *testing.T) {
	p := newTestPlanner(&memStops{stops: phoenixStops()}, nil, nil)

	if _, err := p.Plan(context.Background(), PlanRequest{NumVehicles: 0}); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("zero vehicles: err = %v", err)
	}
	if _, err := p.Plan(context.Background(), PlanRequest{NumVehicles: 1, Depot: 9}); !errors.Is(err, domain.ErrInvalidStopSet) {
		t.Fatalf("bad depot: err = %v", err)
	}

	bad := phoenixStops()
	bad[2].Coordinates.Lon = 200
	if _, err := p.Plan(context.Background(), PlanRequest{NumVehicles: 1, Stops: bad}); !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Fatalf("bad coordinate: err = %v", err)
	}

	if _, err := p.GetPlan(context.Background(), "missing"); !errors.Is(err, ports.ErrPlanNotFound) {
		t.Fatalf("missing plan: err = %v", err)
	}

	failing := newTestPlanner(&memStops{err: errors.New("db down")}, nil, nil)
	if _, err := failing.Plan(context.Background(), PlanRequest{NumVehicles: 1}); err == nil {
		t.Fatalf("expected repository error")
	}
}
