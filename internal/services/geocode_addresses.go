package services

import (
	"context"
	"fmt"
	"log/slog"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
	"strings"
)

// GeocodedAddress is the outcome for one input address.
// Coordinates is nil when the address could not be resolved.
type GeocodedAddress struct {
	Address     string
	Coordinates *domain.Coordinates
	Err         error
}

// GeocodeAddresses resolves addresses in order. A failed lookup is recorded
// and the next address is tried; only context cancellation stops the run.
func GeocodeAddresses(ctx context.Context, geocoder ports.Geocoder, addresses []string) ([]GeocodedAddress, error) {
	out := make([]GeocodedAddress, 0, len(addresses))
	for _, a := range addresses {
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("geocode addresses: %w", err)
		}

		res := GeocodedAddress{Address: a}
		if strings.TrimSpace(a) == "" {
			res.Err = fmt.Errorf("geocode addresses: empty address")
			out = append(out, res)
			continue
		}

		c, err := geocoder.Geocode(ctx, a)
		if err != nil {
			if ctx.Err() != nil {
				return out, fmt.Errorf("geocode addresses: %w", ctx.Err())
			}
			res.Err = err
			slog.Warn("address not geocoded", "address", a, "err", err)
		} else {
			res.Coordinates = &c
			slog.Info("address geocoded", "address", a, "lat", c.Lat, "lon", c.Lon)
		}
		out = append(out, res)
	}
	return out, nil
}
