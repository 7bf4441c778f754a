package geocoding

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// Nominatim resolves addresses with the OpenStreetMap Nominatim search API.
// Requests are limited to one per second as the public instance requires.
type Nominatim struct {
	baseURL string
	c       *client
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func NewNominatim(baseURL, userAgent string) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = "route-planner"
	}

	h := http.Header{}
	h.Set("User-Agent", userAgent)

	return &Nominatim{
		baseURL: strings.TrimRight(baseURL, "/"),
		c:       newClient("nominatim", rate.NewLimiter(rate.Every(time.Second), 1), h),
	}
}

func (g *Nominatim) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "nominatim.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, &ErrGeocodingFailed{Provider: "nominatim", Address: address, Reason: "empty address"}
	}

	q := url.Values{}
	q.Set("q", norm)
	q.Set("format", "json")
	q.Set("limit", "1")

	var results []nominatimResult
	if err := g.c.getJSON(ctx, g.baseURL+"/search", q, &results); err != nil {
		return domain.Coordinates{}, &ErrGeocodingFailed{Provider: "nominatim", Address: address, Reason: "request failed", Err: err}
	}
	if len(results) == 0 {
		return domain.Coordinates{}, &ErrGeocodingFailed{Provider: "nominatim", Address: address, Reason: "no results found"}
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, &ErrGeocodingFailed{Provider: "nominatim", Address: address, Reason: "invalid latitude", Err: err}
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, &ErrGeocodingFailed{Provider: "nominatim", Address: address, Reason: "invalid longitude", Err: err}
	}

	c := domain.Coordinates{Lat: lat, Lon: lon}
	if err := c.Validate(); err != nil {
		return domain.Coordinates{}, &ErrGeocodingFailed{Provider: "nominatim", Address: address, Reason: "invalid coordinates", Err: err}
	}

	slog.Debug("nominatim match", "address", norm, "display_name", results[0].DisplayName)
	return c, nil
}
