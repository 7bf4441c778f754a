package services

import (
	"fmt"
	"route-planner-service/internal/domain"
)

// Solve plans routes for numVehicles vehicles that start and end at depot.
//
// It runs CheapestArc with 1..numVehicles active vehicles and keeps the
// cheapest plan, preferring fewer active vehicles on equal cost; the others
// stay idle at the depot. Adding a vehicle therefore never makes the total
// worse. The result is deterministic for identical input. Callers that want
// the plain step-by-step construction over all numVehicles vehicles, without
// the sweep, use CheapestArc.
//
// A matrix holding only the depot is not an error: every vehicle gets
// [depot, depot] and plan.Empty() reports that nothing was routed.
func Solve(matrix domain.DistanceMatrix, numVehicles int, depot int) (*domain.RoutePlan, error) {
	if err := validateSolveInput(matrix, numVehicles, depot); err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	best := cheapestArc(matrix, 1, depot)
	bestCost := best.Cost(matrix)

	// Beyond the number of non-depot stops extra vehicles can only stay idle.
	maxActive := min(numVehicles, matrix.Size()-1)
	for k := 2; k <= maxActive; k++ {
		plan := cheapestArc(matrix, k, depot)
		if c := plan.Cost(matrix); c < bestCost {
			best, bestCost = plan, c
		}
	}

	for v := len(best.Routes); v < numVehicles; v++ {
		best.Routes = append(best.Routes, domain.Route{Vehicle: v, Stops: []int{depot, depot}})
	}
	return best, nil
}

// CheapestArc builds a plan with the global cheapest-arc heuristic.
//
// Every vehicle starts at the depot. At each step the single cheapest arc
// from any vehicle's current position to any unvisited stop is taken; ties go
// to the lowest vehicle index, then the lowest stop index. When all stops are
// visited every route is closed at the depot.
func CheapestArc(matrix domain.DistanceMatrix, numVehicles int, depot int) (*domain.RoutePlan, error) {
	if err := validateSolveInput(matrix, numVehicles, depot); err != nil {
		return nil, fmt.Errorf("cheapest arc: %w", err)
	}
	return cheapestArc(matrix, numVehicles, depot), nil
}

func cheapestArc(matrix domain.DistanceMatrix, numVehicles int, depot int) *domain.RoutePlan {
	n := matrix.Size()

	visited := make([]bool, n)
	visited[depot] = true
	remaining := n - 1

	current := make([]int, numVehicles)
	routes := make([]domain.Route, numVehicles)
	for v := range routes {
		current[v] = depot
		routes[v] = domain.Route{Vehicle: v, Stops: []int{depot}}
	}

	for remaining > 0 {
		bestV, bestU := -1, -1
		var bestCost float64

		// Strict comparison keeps the first (lowest vehicle, lowest stop) candidate on ties.
		for v := 0; v < numVehicles; v++ {
			row := matrix[current[v]]
			for u := 0; u < n; u++ {
				if visited[u] {
					continue
				}
				if bestV < 0 || row[u] < bestCost {
					bestV, bestU, bestCost = v, u, row[u]
				}
			}
		}

		routes[bestV].Stops = append(routes[bestV].Stops, bestU)
		current[bestV] = bestU
		visited[bestU] = true
		remaining--
	}

	for v := range routes {
		routes[v].Stops = append(routes[v].Stops, depot)
	}

	return &domain.RoutePlan{Depot: depot, Routes: routes}
}

func validateSolveInput(matrix domain.DistanceMatrix, numVehicles int, depot int) error {
	if numVehicles < 1 {
		return fmt.Errorf("%w: numVehicles must be at least 1, got %d", domain.ErrInvalidConfiguration, numVehicles)
	}
	if depot < 0 || depot >= matrix.Size() {
		return fmt.Errorf("%w: depot %d out of range [0, %d)", domain.ErrInvalidConfiguration, depot, matrix.Size())
	}
	return matrix.Validate()
}
