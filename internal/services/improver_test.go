package services

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"route-planner-service/internal/domain"
	"testing"
)

func TestTwoOptUncrossesRoute(t *testing.T) {
	// Four corners of a unit square with the depot at 0; the tour 0-2-1-3-0 crosses itself.
	set, err := domain.NewStopSet([]domain.Stop{
		{ID: "D", Coordinates: domain.Coordinates{Lat: 0, Lon: 0}},
		{ID: "A", Coordinates: domain.Coordinates{Lat: 0, Lon: 1}},
		{ID: "B", Coordinates: domain.Coordinates{Lat: 1, Lon: 1}},
		{ID: "C", Coordinates: domain.Coordinates{Lat: 1, Lon: 0}},
	}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, err := BuildDistanceMatrix(context.Background(), set, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	crossed := &domain.RoutePlan{Depot: 0, Routes: []domain.Route{{Vehicle: 0, Stops: []int{0, 2, 1, 3, 0}}}}
	before := crossed.Cost(m)

	improved, err := TwoOpt{}.Improve(m, crossed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if improved.Cost(m) >= before {
		t.Fatalf("cost %v not below %v", improved.Cost(m), before)
	}
	if err := improved.CheckCoverage(m.Size()); err != nil {
		t.Fatalf("coverage: %v", err)
	}
	if !reflect.DeepEqual(crossed.Sequences(), [][]int{{0, 2, 1, 3, 0}}) {
		t.Fatalf("input plan was modified: %v", crossed.Sequences())
	}
}

func TestTwoOptNeverWorsensSolvedPlans(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	for trial := 0; trial < 10; trial++ {
		set := randomStopSet(t, rng, 5+rng.Intn(25))
		m, err := BuildDistanceMatrix(context.Background(), set, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		plan, err := Solve(m, 1+rng.Intn(3), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		improved, err := TwoOpt{MaxPasses: 10}.Improve(m, plan)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if improved.Cost(m) > plan.Cost(m)+1e-9 {
			t.Fatalf("trial %d: improved cost %v > %v", trial, improved.Cost(m), plan.Cost(m))
		}
		if len(improved.Routes) != len(plan.Routes) {
			t.Fatalf("trial %d: route count changed", trial)
		}
		if err := improved.CheckCoverage(m.Size()); err != nil {
			t.Fatalf("trial %d: coverage: %v", trial, err)
		}
	}
}

func TestTwoOptRejectsBadInput(t *testing.T) {
	if _, err := (TwoOpt{}).Improve(scenarioMatrix, nil); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("nil plan: err = %v", err)
	}

	asym := domain.DistanceMatrix{{0, 1, 2}, {3, 0, 1}, {2, 1, 0}}
	plan := &domain.RoutePlan{Routes: []domain.Route{{Stops: []int{0, 1, 2, 0}}}}
	if _, err := (TwoOpt{}).Improve(asym, plan); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("asymmetric matrix: err = %v", err)
	}

	partial := &domain.RoutePlan{Routes: []domain.Route{{Stops: []int{0, 1, 0}}}}
	if _, err := (TwoOpt{}).Improve(scenarioMatrix, partial); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("partial plan: err = %v", err)
	}
}
