package domain

import (
	"fmt"
	"time"
)

// Route is the ordered visit sequence of one vehicle, as stop indices.
// It always begins and ends at the depot; an idle vehicle has [depot, depot].
type Route struct {
	Vehicle int   `json:"vehicle"`
	Stops   []int `json:"stops"`
}

// Cost sums the matrix cost of every leg of the route.
func (r Route) Cost(m DistanceMatrix) float64 {
	total := 0.0
	for i := 1; i < len(r.Stops); i++ {
		total += m[r.Stops[i-1]][r.Stops[i]]
	}
	return total
}

// Idle reports whether the route never leaves the depot.
func (r Route) Idle() bool { return len(r.Stops) <= 2 }

// Represents the planned routes for a whole fleet.
// A RoutePlan is the output of the route solver, holds one Route per vehicle
// in vehicle order and is not modified once returned. Improvement passes
// produce a new RoutePlan of the same shape.
type RoutePlan struct {
	Depot  int     `json:"depot"`
	Routes []Route `json:"routes"`
}

// Cost is the total matrix cost over all routes.
func (p *RoutePlan) Cost(m DistanceMatrix) float64 {
	total := 0.0
	for _, r := range p.Routes {
		total += r.Cost(m)
	}
	return total
}

// Empty reports the "no solution" outcome: every vehicle stays at the depot.
func (p *RoutePlan) Empty() bool {
	for _, r := range p.Routes {
		if !r.Idle() {
			return false
		}
	}
	return true
}

// Sequences returns the plain per-vehicle index sequences.
func (p *RoutePlan) Sequences() [][]int {
	out := make([][]int, 0, len(p.Routes))
	for _, r := range p.Routes {
		out = append(out, append([]int(nil), r.Stops...))
	}
	return out
}

// Clone returns a deep copy that can be modified freely.
func (p *RoutePlan) Clone() *RoutePlan {
	out := &RoutePlan{Depot: p.Depot, Routes: make([]Route, len(p.Routes))}
	for i, r := range p.Routes {
		out.Routes[i] = Route{Vehicle: r.Vehicle, Stops: append([]int(nil), r.Stops...)}
	}
	return out
}

// CheckCoverage verifies the plan against an instance of n stops: every route
// starts and ends at the depot and every other stop is visited exactly once.
func (p *RoutePlan) CheckCoverage(n int) error {
	seen := make([]bool, n)
	for _, r := range p.Routes {
		if len(r.Stops) < 2 || r.Stops[0] != p.Depot || r.Stops[len(r.Stops)-1] != p.Depot {
			return fmt.Errorf("route of vehicle %d does not start and end at depot %d: %v", r.Vehicle, p.Depot, r.Stops)
		}
		for _, s := range r.Stops[1 : len(r.Stops)-1] {
			if s < 0 || s >= n {
				return fmt.Errorf("route of vehicle %d references stop %d outside [0, %d)", r.Vehicle, s, n)
			}
			if s == p.Depot {
				return fmt.Errorf("route of vehicle %d passes through the depot mid-route", r.Vehicle)
			}
			if seen[s] {
				return fmt.Errorf("stop %d visited more than once", s)
			}
			seen[s] = true
		}
	}
	for i, ok := range seen {
		if i != p.Depot && !ok {
			return fmt.Errorf("stop %d is not visited", i)
		}
	}
	return nil
}

// RouteStop is a resolved visit of a route, ready for reports and API responses.
type RouteStop struct {
	Index       int         `json:"index"`
	StopID      string      `json:"stop_id"`
	Coordinates Coordinates `json:"coordinates"`
	LegKm       float64     `json:"leg_km"`
}

// PlannedRoute is a Route with its stops resolved against the StopSet.
type PlannedRoute struct {
	Vehicle  int         `json:"vehicle"`
	Stops    []RouteStop `json:"stops"`
	TotalKm  float64     `json:"total_km"`
	Sequence []int       `json:"sequence"`
}

// PlanResult is a stored, identified outcome of one planning request.
type PlanResult struct {
	PlanID      string         `json:"plan_id"`
	CreatedAt   time.Time      `json:"created_at"`
	NumVehicles int            `json:"num_vehicles"`
	Depot       int            `json:"depot"`
	Improved    bool           `json:"improved"`
	Stops       []Stop         `json:"stops"`
	Routes      []PlannedRoute `json:"routes"`
	TotalKm     float64        `json:"total_km"`
	Empty       bool           `json:"empty"`
}

// Plan rebuilds the bare RoutePlan from the resolved routes.
func (r *PlanResult) Plan() *RoutePlan {
	p := &RoutePlan{Depot: r.Depot, Routes: make([]Route, 0, len(r.Routes))}
	for _, pr := range r.Routes {
		p.Routes = append(p.Routes, Route{Vehicle: pr.Vehicle, Stops: append([]int(nil), pr.Sequence...)})
	}
	return p
}

// ResolvePlan attaches stop identities and leg costs to every route of plan.
func ResolvePlan(stops StopSet, m DistanceMatrix, plan *RoutePlan) ([]PlannedRoute, float64) {
	routes := make([]PlannedRoute, 0, len(plan.Routes))
	total := 0.0
	for _, r := range plan.Routes {
		pr := PlannedRoute{
			Vehicle:  r.Vehicle,
			Stops:    make([]RouteStop, 0, len(r.Stops)),
			Sequence: append([]int(nil), r.Stops...),
		}
		for i, idx := range r.Stops {
			leg := 0.0
			if i > 0 {
				leg = m[r.Stops[i-1]][idx]
			}
			s := stops.At(idx)
			pr.Stops = append(pr.Stops, RouteStop{
				Index:       idx,
				StopID:      s.ID,
				Coordinates: s.Coordinates,
				LegKm:       leg,
			})
			pr.TotalKm += leg
		}
		total += pr.TotalKm
		routes = append(routes, pr)
	}
	return routes, total
}
