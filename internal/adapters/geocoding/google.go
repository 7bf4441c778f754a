package geocoding

import (
	"context"
	"errors"
	"net/url"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"strings"
)

const DefaultGoogleURL = "https://maps.googleapis.com"

// Google resolves addresses with the Google Maps Geocoding API.
type Google struct {
	baseURL string
	apiKey  string
	c       *client
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func NewGoogle(baseURL, apiKey string) (*Google, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("google geocoder: api key is empty")
	}
	if baseURL == "" {
		baseURL = DefaultGoogleURL
	}

	return &Google{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		c:       newClient("google", nil, nil),
	}, nil
}

func (g *Google) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "google.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, &ErrGeocodingFailed{Provider: "google", Address: address, Reason: "empty address"}
	}

	q := url.Values{}
	q.Set("address", norm)
	q.Set("key", g.apiKey)

	var decoded googleResponse
	if err := g.c.getJSON(ctx, g.baseURL+"/maps/api/geocode/json", q, &decoded); err != nil {
		return domain.Coordinates{}, &ErrGeocodingFailed{Provider: "google", Address: address, Reason: "request failed", Err: err}
	}

	switch decoded.Status {
	case "OK":
	case "ZERO_RESULTS":
		return domain.Coordinates{}, &ErrGeocodingFailed{Provider: "google", Address: address, Reason: "no results found"}
	default:
		reason := decoded.Status
		if decoded.ErrorMessage != "" {
			reason += ": " + decoded.ErrorMessage
		}
		return domain.Coordinates{}, &ErrGeocodingFailed{Provider: "google", Address: address, Reason: reason}
	}
	if len(decoded.Results) == 0 {
		return domain.Coordinates{}, &ErrGeocodingFailed{Provider: "google", Address: address, Reason: "no results found"}
	}

	loc := decoded.Results[0].Geometry.Location
	c := domain.Coordinates{Lat: loc.Lat, Lon: loc.Lng}
	if err := c.Validate(); err != nil {
		return domain.Coordinates{}, &ErrGeocodingFailed{Provider: "google", Address: address, Reason: "invalid coordinates", Err: err}
	}
	return c, nil
}
