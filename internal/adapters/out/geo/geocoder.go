package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"logistics/internal/core/domain/model/kernel"
)

const DefaultGeocodingBaseURL = "https://api.openrouteservice.org"

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocoder calls an OpenRouteService-compatible /geocode/search endpoint.
type Geocoder struct {
	client  client
	baseURL string
}

func NewGeocoder(baseURL, apiKey string, hc *http.Client, opts Options) *Geocoder {
	if baseURL == "" {
		baseURL = DefaultGeocodingBaseURL
	}
	header := http.Header{}
	if apiKey != "" {
		header.Set("Authorization", apiKey)
	}
	return &Geocoder{
		client:  newClient(hc, header, opts.RequestTimeout, opts.BackoffUnit, opts.MaxAttempts),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Geocode returns the top-ranked result. Every failure is a *GeocodingError.
func (g *Geocoder) Geocode(ctx context.Context, address string) (kernel.RoutePoint, error) {
	norm := strings.Join(strings.Fields(address), " ")
	if norm == "" {
		return kernel.RoutePoint{}, &GeocodingError{Address: address, Cause: errors.New("address is empty")}
	}

	q := url.Values{}
	q.Set("text", norm)
	q.Set("size", "1")

	body, err := g.client.getWithRetry(ctx, g.baseURL+"/geocode/search?"+q.Encode())
	if err != nil {
		return kernel.RoutePoint{}, &GeocodingError{Address: address, Cause: err}
	}

	var decoded geocodeResponse
	if err = json.Unmarshal(body, &decoded); err != nil {
		return kernel.RoutePoint{}, &GeocodingError{Address: address, Cause: fmt.Errorf("decode response: %w", err)}
	}
	if len(decoded.Features) == 0 {
		return kernel.RoutePoint{}, &GeocodingError{Address: address, Cause: errors.New("no results")}
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return kernel.RoutePoint{}, &GeocodingError{Address: address, Cause: errors.New("invalid coordinate format")}
	}

	// GeoJSON order is [lon, lat].
	point, err := kernel.NewRoutePoint(coords[1], coords[0])
	if err != nil {
		return kernel.RoutePoint{}, &GeocodingError{Address: address, Cause: err}
	}
	return point, nil
}
