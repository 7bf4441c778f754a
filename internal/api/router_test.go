package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"route-planner-service/internal/api/dto"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
	"route-planner-service/internal/services"
	"strings"
	"testing"
	"time"
)

type fakeStops struct {
	stops []domain.Stop
	err   error
}

func (f *fakeStops) ListStops(ctx context.Context) ([]domain.Stop, error) {
	return f.stops, f.err
}

type fakePlanner struct {
	got     services.PlanRequest
	results map[string]*domain.PlanResult
	err     error
}

func (f *fakePlanner) Plan(ctx context.Context, req services.PlanRequest) (*domain.PlanResult, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	empty := len(req.Stops) == 1
	res := &domain.PlanResult{
		PlanID:      "plan-1",
		CreatedAt:   time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		NumVehicles: req.NumVehicles,
		Depot:       req.Depot,
		Empty:       empty,
		Routes: []domain.PlannedRoute{{
			Vehicle:  0,
			Sequence: []int{0, 1, 0},
			TotalKm:  4,
			Stops: []domain.RouteStop{
				{Index: 0, StopID: "D"},
				{Index: 1, StopID: "A", LegKm: 2},
				{Index: 0, StopID: "D", LegKm: 2},
			},
		}},
		TotalKm: 4,
	}
	return res, nil
}

func (f *fakePlanner) GetPlan(ctx context.Context, id string) (*domain.PlanResult, error) {
	if r, ok := f.results[id]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("get plan %q: %w", id, ports.ErrPlanNotFound)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := NewRouter(&fakePlanner{}, &fakeStops{}, 1)

	rec := do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("missing %s header", requestIDHeader)
	}

	rec = do(t, h, http.MethodPost, "/health", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health status = %d, want 405", rec.Code)
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	h := NewRouter(&fakePlanner{}, &fakeStops{}, 1)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("request id = %q, want abc-123", got)
	}
}

func TestListStops(t *testing.T) {
	stops := &fakeStops{stops: []domain.Stop{
		{ID: "D", Coordinates: domain.Coordinates{Lat: 1, Lon: 2}},
		{ID: "A", Coordinates: domain.Coordinates{Lat: 3, Lon: 4}},
	}}
	h := NewRouter(&fakePlanner{}, stops, 1)

	rec := do(t, h, http.MethodGet, "/stops", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var res dto.ListStopsResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Stops) != 2 || res.Stops[1].StopID != "A" || res.Stops[1].Longitude != 4 {
		t.Fatalf("unexpected stops: %+v", res.Stops)
	}

	stops.err = errors.New("db down")
	rec = do(t, h, http.MethodGet, "/stops", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestCreatePlan(t *testing.T) {
	p := &fakePlanner{}
	h := NewRouter(p, &fakeStops{}, 3)

	body := `{"num_vehicles": 2, "depot": 0, "improve": true,
		"stops": [{"stop_id": " D ", "latitude": 1, "longitude": 2}, {"stop_id": "A", "latitude": 1.1, "longitude": 2.1}]}`
	rec := do(t, h, http.MethodPost, "/plans", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	if p.got.NumVehicles != 2 || !p.got.Improve || len(p.got.Stops) != 2 || p.got.Stops[0].ID != "D" {
		t.Fatalf("planner got %+v", p.got)
	}

	var res dto.PlanResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.PlanID != "plan-1" || res.TotalKm != 4 || len(res.Routes) != 1 || res.Message != "" {
		t.Fatalf("unexpected response: %+v", res)
	}
	if got := res.Routes[0].Sequence; len(got) != 3 || got[1] != 1 {
		t.Fatalf("sequence = %v", got)
	}
}

func TestCreatePlanDefaultsVehicles(t *testing.T) {
	p := &fakePlanner{}
	h := NewRouter(p, &fakeStops{}, 3)

	rec := do(t, h, http.MethodPost, "/plans", `{}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if p.got.NumVehicles != 3 {
		t.Fatalf("num vehicles = %d, want default 3", p.got.NumVehicles)
	}
}

func TestCreatePlanEmptyMessage(t *testing.T) {
	h := NewRouter(&fakePlanner{}, &fakeStops{}, 1)

	rec := do(t, h, http.MethodPost, "/plans", `{"stops":[{"stop_id":"D","latitude":0,"longitude":0}]}`)
	var res dto.PlanResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Empty || res.Message != "No solution found." {
		t.Fatalf("empty = %v message = %q", res.Empty, res.Message)
	}
}

func TestCreatePlanBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"num_vehicles":`},
		{"unknown field", `{"trucks": 2}`},
		{"two objects", `{} {}`},
		{"zero vehicles", `{"num_vehicles": 0}`},
		{"too many vehicles", `{"num_vehicles": 51}`},
	}

	h := NewRouter(&fakePlanner{}, &fakeStops{}, 1)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/plans", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCreatePlanErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("solve: %w", domain.ErrInvalidConfiguration), http.StatusBadRequest},
		{fmt.Errorf("matrix: %w", domain.ErrInvalidCoordinate), http.StatusBadRequest},
		{fmt.Errorf("plan: %w", domain.ErrInvalidStopSet), http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		h := NewRouter(&fakePlanner{err: tt.err}, &fakeStops{}, 1)
		rec := do(t, h, http.MethodPost, "/plans", `{}`)
		if rec.Code != tt.want {
			t.Fatalf("err %v: status = %d, want %d", tt.err, rec.Code, tt.want)
		}
	}
}

func TestGetPlan(t *testing.T) {
	p := &fakePlanner{results: map[string]*domain.PlanResult{
		"known": {PlanID: "known", NumVehicles: 1},
	}}
	h := NewRouter(p, &fakeStops{}, 1)

	rec := do(t, h, http.MethodGet, "/plans/known", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/plans/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	rec = do(t, h, http.MethodDelete, "/plans/known", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE status = %d, want 405", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewRouter(&fakePlanner{}, &fakeStops{}, 1)
	do(t, h, http.MethodGet, "/health", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("metrics output misses http_requests_total")
	}
}

func TestRouteLabel(t *testing.T) {
	tests := map[string]string{
		"/plans":       "/plans",
		"/plans/abc":   "/plans/{id}",
		"/health":      "/health",
		"/favicon.ico": "other",
	}
	for in, want := range tests {
		if got := routeLabel(in); got != want {
			t.Fatalf("routeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
