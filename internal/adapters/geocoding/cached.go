package geocoding

import (
	"context"
	"fmt"
	"log/slog"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
)

// CachedGeocoder consults a persistent cache before delegating to Next.
// Successful lookups are written back; cache write failures are only logged.
type CachedGeocoder struct {
	Next  ports.Geocoder
	Cache ports.GeocodeCache
}

func NewCachedGeocoder(next ports.Geocoder, cache ports.GeocodeCache) *CachedGeocoder {
	return &CachedGeocoder{Next: next, Cache: cache}
}

func (g *CachedGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	key := normalize(address)
	if key == "" || g.Cache == nil {
		return g.Next.Geocode(ctx, address)
	}

	hits, err := g.Cache.GetMany(ctx, []string{key})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("cached geocode %q: read cache: %w", key, err)
	}
	if c, ok := hits[key]; ok {
		return c, nil
	}

	c, err := g.Next.Geocode(ctx, address)
	if err != nil {
		return domain.Coordinates{}, err
	}

	if err := g.Cache.PutMany(ctx, map[string]domain.Coordinates{key: c}); err != nil {
		slog.Warn("geocode cache write failed", "address", key, "err", err)
	}
	return c, nil
}
