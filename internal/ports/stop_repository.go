package ports

import (
	"context"
	"route-planner-service/internal/domain"
)

// Port: a boundary for retrieving Stop entities from a data source.
type StopRepository interface {
	// Retrieve all stops in their stored order. Index 0 is the default depot.
	ListStops(ctx context.Context) ([]domain.Stop, error)
}
