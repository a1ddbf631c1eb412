package ports

import (
	"context"

	"logistics/internal/core/domain/model/kernel"
)

// GeoResolver turns addresses into coordinates and coordinates into
// road routes.
type GeoResolver interface {
	// Geocode returns the top-ranked result for address.
	Geocode(ctx context.Context, address string) (kernel.RoutePoint, error)

	// Route returns an ordered polyline from origin to destination with at
	// least two points. When the routing service is unavailable it falls
	// back to a straight-line route and never fails.
	Route(ctx context.Context, origin, destination kernel.RoutePoint) []kernel.RoutePoint

	// Distance is the haversine distance in meters.
	Distance(a, b kernel.RoutePoint) float64
}
