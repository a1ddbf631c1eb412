package geo

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"time"

	"logistics/internal/core/domain/model/kernel"
)

const (
	minSyntheticPoints = 200
	maxSyntheticPoints = 1000
)

// Options tune retries for both upstream services.
type Options struct {
	RequestTimeout time.Duration
	BackoffUnit    time.Duration
	MaxAttempts    int
}

type Config struct {
	GeocodingBaseURL string
	GeocodingAPIKey  string
	RoutingBaseURL   string
	Options          Options
}

// Resolver implements ports.GeoResolver on top of Geocoder and Router.
type Resolver struct {
	geocoder *Geocoder
	router   *Router
	logger   *slog.Logger
}

func NewResolver(cfg Config, hc *http.Client, logger *slog.Logger) *Resolver {
	return &Resolver{
		geocoder: NewGeocoder(cfg.GeocodingBaseURL, cfg.GeocodingAPIKey, hc, cfg.Options),
		router:   NewRouter(cfg.RoutingBaseURL, hc, cfg.Options),
		logger:   logger.With("component", "geo_resolver"),
	}
}

func (r *Resolver) Geocode(ctx context.Context, address string) (kernel.RoutePoint, error) {
	return r.geocoder.Geocode(ctx, address)
}

// Route returns the road route, or a synthetic straight line when the
// router fails.
func (r *Resolver) Route(ctx context.Context, origin, destination kernel.RoutePoint) []kernel.RoutePoint {
	points, err := r.router.Route(ctx, origin, destination)
	if err == nil {
		return points
	}

	synthetic := SyntheticRoute(origin, destination)
	r.logger.WarnContext(ctx, "Routing failed, using straight-line route",
		"origin", origin.String(),
		"destination", destination.String(),
		"points", len(synthetic),
		"error", err,
	)
	return synthetic
}

func (r *Resolver) Distance(a, b kernel.RoutePoint) float64 {
	return a.DistanceTo(b)
}

// SyntheticRoute interpolates max(200, min(1000, floor(d/1000))) evenly
// spaced points from origin to destination, d being the haversine distance
// in meters. The first and last points are exactly origin and destination.
func SyntheticRoute(origin, destination kernel.RoutePoint) []kernel.RoutePoint {
	km := int(math.Floor(origin.DistanceTo(destination) / 1000))
	n := max(minSyntheticPoints, min(maxSyntheticPoints, km))

	points := make([]kernel.RoutePoint, n)
	last := n - 1
	for i := 0; i < n; i++ {
		points[i] = origin.Interpolate(destination, float64(i)/float64(last))
	}
	points[0] = origin
	points[last] = destination
	return points
}
