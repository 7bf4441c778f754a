package domain

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestDistanceMatrixValidate(t *testing.T) {
	ok := DistanceMatrix{{0, 1}, {1, 0}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []DistanceMatrix{
		{{0, 1}, {1}},
		{{0, -1}, {1, 0}},
		{{0, math.NaN()}, {1, 0}},
		{{0, math.Inf(1)}, {1, 0}},
	}
	for i, m := range bad {
		if err := m.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("case %d: err = %v, want ErrInvalidConfiguration", i, err)
		}
	}
}

func TestNewDistanceMatrixRowsAreIndependent(t *testing.T) {
	m := NewDistanceMatrix(3)
	m[0][2] = 5
	m[1][0] = 7
	if m[0][2] != 5 || m[1][0] != 7 || m[1][2] != 0 || m[2][0] != 0 {
		t.Fatalf("unexpected aliasing between rows: %v", m)
	}
}

func TestRoutePlanCheckCoverage(t *testing.T) {
	plan := &RoutePlan{
		Depot: 0,
		Routes: []Route{
			{Vehicle: 0, Stops: []int{0, 2, 1, 0}},
			{Vehicle: 1, Stops: []int{0, 3, 0}},
			{Vehicle: 2, Stops: []int{0, 0}},
		},
	}
	if err := plan.CheckCoverage(4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	missing := plan.Clone()
	missing.Routes[1].Stops = []int{0, 0}
	if err := missing.CheckCoverage(4); err == nil {
		t.Fatalf("expected missing stop 3 to be reported")
	}

	twice := plan.Clone()
	twice.Routes[1].Stops = []int{0, 3, 2, 0}
	if err := twice.CheckCoverage(4); err == nil {
		t.Fatalf("expected stop 2 visited twice to be reported")
	}

	open := plan.Clone()
	open.Routes[0].Stops = []int{0, 2, 1}
	if err := open.CheckCoverage(4); err == nil {
		t.Fatalf("expected open route to be reported")
	}
}

func TestRoutePlanCostAndEmpty(t *testing.T) {
	m := DistanceMatrix{{0, 1, 4}, {1, 0, 2}, {4, 2, 0}}
	plan := &RoutePlan{Routes: []Route{{Vehicle: 0, Stops: []int{0, 1, 2, 0}}, {Vehicle: 1, Stops: []int{0, 0}}}}

	if got := plan.Cost(m); got != 7 {
		t.Fatalf("cost = %v, want 7", got)
	}
	if plan.Empty() {
		t.Fatalf("plan visiting stops reported as empty")
	}

	idle := &RoutePlan{Routes: []Route{{Vehicle: 0, Stops: []int{0, 0}}}}
	if !idle.Empty() {
		t.Fatalf("depot-only plan should be empty")
	}
}

func TestResolvePlan(t *testing.T) {
	set, err := NewStopSet([]Stop{{ID: "D"}, {ID: "A"}, {ID: "B"}}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := DistanceMatrix{{0, 1, 4}, {1, 0, 2}, {4, 2, 0}}
	plan := &RoutePlan{Routes: []Route{{Vehicle: 0, Stops: []int{0, 1, 2, 0}}}}

	routes, total := ResolvePlan(set, m, plan)
	if total != 7 {
		t.Fatalf("total = %v, want 7", total)
	}

	ids := make([]string, 0, len(routes[0].Stops))
	for _, s := range routes[0].Stops {
		ids = append(ids, s.StopID)
	}
	if !reflect.DeepEqual(ids, []string{"D", "A", "B", "D"}) {
		t.Fatalf("ids = %v", ids)
	}
	if routes[0].Stops[2].LegKm != 2 {
		t.Fatalf("leg to B = %v, want 2", routes[0].Stops[2].LegKm)
	}

	result := &PlanResult{Depot: 0, Routes: routes}
	if !reflect.DeepEqual(result.Plan().Sequences(), plan.Sequences()) {
		t.Fatalf("round trip through PlanResult changed the plan")
	}
}
