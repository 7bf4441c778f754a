package geocoding

import "fmt"

// ErrGeocodingFailed is returned when an address cannot be resolved.
type ErrGeocodingFailed struct {
	Provider string
	Address  string
	Reason   string
	Err      error
}

func (e *ErrGeocodingFailed) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: geocoding failed for address %q: %s: %v", e.Provider, e.Address, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: geocoding failed for address %q: %s", e.Provider, e.Address, e.Reason)
}

func (e *ErrGeocodingFailed) Unwrap() error { return e.Err }

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}
