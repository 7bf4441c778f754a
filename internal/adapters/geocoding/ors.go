package geocoding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"strings"
)

const DefaultORSURL = "https://api.openrouteservice.org"

// ORS resolves addresses with OpenRouteService (/geocode/search).
// Country, when set, restricts results to an ISO country code.
type ORS struct {
	baseURL string
	Country string
	c       *client
}

type orsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

func NewORS(baseURL, apiKey string) (*ORS, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if baseURL == "" {
		baseURL = DefaultORSURL
	}

	h := http.Header{}
	h.Set("Authorization", apiKey)

	return &ORS{
		baseURL: strings.TrimRight(baseURL, "/"),
		c:       newClient("ors", nil, h),
	}, nil
}

func (o *ORS) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, &ErrGeocodingFailed{Provider: "ors", Address: address, Reason: "empty address"}
	}

	q := url.Values{}
	q.Set("text", norm)
	q.Set("size", "1")
	if o.Country != "" {
		q.Set("boundary.country", o.Country)
	}

	var decoded orsResponse
	if err := o.c.getJSON(ctx, o.baseURL+"/geocode/search", q, &decoded); err != nil {
		return domain.Coordinates{}, &ErrGeocodingFailed{Provider: "ors", Address: address, Reason: "request failed", Err: err}
	}
	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, &ErrGeocodingFailed{Provider: "ors", Address: address, Reason: "no results found"}
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, &ErrGeocodingFailed{
			Provider: "ors",
			Address:  address,
			Reason:   fmt.Sprintf("invalid coordinate format %v", coords),
		}
	}

	// GeoJSON order is [lon, lat].
	c := domain.Coordinates{Lon: coords[0], Lat: coords[1]}
	if err := c.Validate(); err != nil {
		return domain.Coordinates{}, &ErrGeocodingFailed{Provider: "ors", Address: address, Reason: "invalid coordinates", Err: err}
	}
	return c, nil
}
