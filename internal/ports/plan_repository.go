package ports

import (
	"context"
	"errors"
	"route-planner-service/internal/domain"
)

// ErrPlanNotFound is returned by PlanRepository and PlanCache lookups that miss.
var ErrPlanNotFound = errors.New("plan not found")

// Port: persistent storage for planning results.
type PlanRepository interface {
	SavePlan(ctx context.Context, result *domain.PlanResult) error
	// Return ErrPlanNotFound when no plan with the id exists.
	GetPlan(ctx context.Context, planID string) (*domain.PlanResult, error)
}

// Port: short-lived cache of solved plans keyed by an instance fingerprint.
type PlanCache interface {
	// Return ErrPlanNotFound on a miss.
	Get(ctx context.Context, key string) (*domain.PlanResult, error)
	Put(ctx context.Context, key string, result *domain.PlanResult) error
}
