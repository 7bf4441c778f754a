package stopfile

import (
	"fmt"
	"route-planner-service/internal/domain"
	"strconv"
	"strings"
)

// ReadStops reads the "Stop ID", "Latitude" and "Longitude" columns in row order.
// Extra columns are ignored.
func ReadStops(path string) ([]domain.Stop, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}

	cols, err := t.requireColumns("Stop ID", "Latitude", "Longitude")
	if err != nil {
		return nil, fmt.Errorf("read stops %q: %w", path, err)
	}

	stops := make([]domain.Stop, 0, len(t.Rows))
	for i, row := range t.Rows {
		line := i + 2
		lat, err := parseFloat(row[cols[1]])
		if err != nil {
			return nil, fmt.Errorf("read stops %q: row %d latitude: %w", path, line, err)
		}
		lon, err := parseFloat(row[cols[2]])
		if err != nil {
			return nil, fmt.Errorf("read stops %q: row %d longitude: %w", path, line, err)
		}
		stops = append(stops, domain.Stop{
			ID:          strings.TrimSpace(row[cols[0]]),
			Coordinates: domain.Coordinates{Lat: lat, Lon: lon},
		})
	}
	return stops, nil
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(s, 64)
}

// WritePlan writes one row per visit: vehicle, position in the route,
// stop identity, coordinates and the length of the leg ending at the stop.
func WritePlan(path string, result *domain.PlanResult) error {
	header := []string{"Vehicle", "Sequence", "Stop ID", "Latitude", "Longitude", "Leg km"}

	rows := make([][]any, 0, 16)
	for _, route := range result.Routes {
		for seq, s := range route.Stops {
			rows = append(rows, []any{
				route.Vehicle,
				seq,
				s.StopID,
				s.Coordinates.Lat,
				s.Coordinates.Lon,
				s.LegKm,
			})
		}
	}

	if err := writeRows(path, header, rows); err != nil {
		return fmt.Errorf("write plan %q: %w", path, err)
	}
	return nil
}
