package services

import (
	"fmt"
	"route-planner-service/internal/domain"
)

// Improver is a post-processing pass over a solved plan. Implementations
// return a new plan of the same shape and must not modify their input.
type Improver interface {
	Improve(matrix domain.DistanceMatrix, plan *domain.RoutePlan) (*domain.RoutePlan, error)
}

// TwoOpt reverses route segments while doing so shortens the route.
// Each route is improved on its own; stops never move between vehicles.
// The matrix must be symmetric, as BuildDistanceMatrix produces.
type TwoOpt struct {
	// MaxPasses bounds the number of full sweeps per route (default 50).
	MaxPasses int
}

// minGain ignores improvements within floating-point noise.
const minGain = 1e-9

func (t TwoOpt) Improve(matrix domain.DistanceMatrix, plan *domain.RoutePlan) (*domain.RoutePlan, error) {
	if plan == nil {
		return nil, fmt.Errorf("two-opt: %w: plan is nil", domain.ErrInvalidConfiguration)
	}
	if err := matrix.Validate(); err != nil {
		return nil, fmt.Errorf("two-opt: %w", err)
	}
	if !symmetric(matrix) {
		return nil, fmt.Errorf("two-opt: %w: matrix is not symmetric", domain.ErrInvalidConfiguration)
	}
	if err := plan.CheckCoverage(matrix.Size()); err != nil {
		return nil, fmt.Errorf("two-opt: %w: %v", domain.ErrInvalidConfiguration, err)
	}

	passes := t.MaxPasses
	if passes <= 0 {
		passes = 50
	}

	out := plan.Clone()
	for i := range out.Routes {
		out.Routes[i].Stops = improveRoute(matrix, out.Routes[i].Stops, passes)
	}
	return out, nil
}

// improveRoute applies first-improvement 2-opt to a closed tour whose first
// and last entries are the depot. Reversing stops[i..k] replaces edges
// (i-1, i) and (k, k+1) with (i-1, k) and (i, k+1).
func improveRoute(m domain.DistanceMatrix, stops []int, passes int) []int {
	n := len(stops)
	if n < 5 {
		return stops
	}

	for pass := 0; pass < passes; pass++ {
		improved := false
		for i := 1; i < n-2; i++ {
			for k := i + 1; k < n-1; k++ {
				a, b := stops[i-1], stops[i]
				c, d := stops[k], stops[k+1]
				delta := m[a][c] + m[b][d] - m[a][b] - m[c][d]
				if delta < -minGain {
					reverse(stops[i : k+1])
					improved = true
				}
			}
		}
		if !improved {
			break
		}
	}
	return stops
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func symmetric(m domain.DistanceMatrix) bool {
	for i := range m {
		for j := i + 1; j < len(m); j++ {
			if m[i][j] != m[j][i] {
				return false
			}
		}
	}
	return true
}
