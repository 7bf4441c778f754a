package services

import (
	"context"
	"fmt"
	"math"
	"route-planner-service/internal/domain"

	"golang.org/x/sync/errgroup"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between a and b in kilometres.
func HaversineKm(a, b domain.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	// Rounding can push h marginally outside [0, 1] for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// BuildDistanceMatrix computes the symmetric haversine cost matrix for stops.
//
// All coordinates are validated before any distance is computed, so a bad stop
// never yields a partial matrix. With workers > 1 rows are split across a fixed
// pool; each (i, j) pair with i < j is owned by the worker of row i, which writes
// both m[i][j] and m[j][i], so workers never touch the same cell.
func BuildDistanceMatrix(ctx context.Context, stops domain.StopSet, workers int) (domain.DistanceMatrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build distance matrix: %w", err)
	}

	n := stops.Len()
	if n == 0 {
		return nil, fmt.Errorf("build distance matrix: %w: no stops", domain.ErrInvalidStopSet)
	}

	coords := make([]domain.Coordinates, n)
	for i := 0; i < n; i++ {
		s := stops.At(i)
		if err := s.Coordinates.Validate(); err != nil {
			return nil, fmt.Errorf("build distance matrix: stop %q: %w", s.ID, err)
		}
		coords[i] = s.Coordinates
	}

	m := domain.NewDistanceMatrix(n)
	fillRow := func(i int) {
		for j := i + 1; j < n; j++ {
			d := HaversineKm(coords[i], coords[j])
			m[i][j] = d
			m[j][i] = d
		}
	}

	if workers <= 1 || n < 2*workers {
		for i := 0; i < n; i++ {
			fillRow(i)
		}
		return m, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	rows := make(chan int)

	g.Go(func() error {
		defer close(rows)
		for i := 0; i < n; i++ {
			select {
			case rows <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range rows {
				fillRow(i)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build distance matrix: %w", err)
	}
	return m, nil
}
