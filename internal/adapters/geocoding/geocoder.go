package geocoding

import (
	"fmt"
	"route-planner-service/internal/ports"
)

// Settings selects and configures a provider for New.
type Settings struct {
	Provider           string
	BaseURL            string // empty selects the provider's public endpoint
	GoogleAPIKey       string
	ORSAPIKey          string
	NominatimUserAgent string
}

// New builds the geocoder named by s.Provider.
func New(s Settings) (ports.Geocoder, error) {
	switch s.Provider {
	case "", "nominatim":
		return NewNominatim(s.BaseURL, s.NominatimUserAgent), nil
	case "google":
		g, err := NewGoogle(s.BaseURL, s.GoogleAPIKey)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "ors":
		o, err := NewORS(s.BaseURL, s.ORSAPIKey)
		if err != nil {
			return nil, err
		}
		return o, nil
	}
	return nil, fmt.Errorf("unknown geocoding provider %q", s.Provider)
}
