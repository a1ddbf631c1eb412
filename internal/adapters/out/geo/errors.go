package geo

import (
	"errors"
	"fmt"
)

var (
	ErrGeocoding = errors.New("geocoding failed")
	ErrRouting   = errors.New("routing failed")
)

// GeocodingError wraps the upstream reason an address could not be resolved.
type GeocodingError struct {
	Address string
	Cause   error
}

func (e *GeocodingError) Error() string {
	return fmt.Sprintf("%s: %q (cause: %v)", ErrGeocoding, e.Address, e.Cause)
}

func (e *GeocodingError) Unwrap() []error {
	return []error{ErrGeocoding, e.Cause}
}

// RoutingError wraps the upstream reason no road route was returned.
type RoutingError struct {
	Cause error
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("%s (cause: %v)", ErrRouting, e.Cause)
}

func (e *RoutingError) Unwrap() []error {
	return []error{ErrRouting, e.Cause}
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}
