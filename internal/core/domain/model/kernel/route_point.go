package kernel

import (
	"errors"
	"fmt"
	"math"

	"logistics/internal/pkg/errs"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0

	// EarthRadiusMeters is the mean radius used by the haversine formula.
	EarthRadiusMeters = 6371000.0
)

// RoutePoint is a WGS84 coordinate in decimal degrees.
type RoutePoint struct {
	lat float64
	lng float64
}

// NewRoutePoint validates latitude in [-90, 90] and longitude in [-180, 180].
func NewRoutePoint(lat, lng float64) (RoutePoint, error) {
	var errLat, errLng error
	if math.IsNaN(lat) || lat < MinLatitude || lat > MaxLatitude {
		errLat = errs.NewValueIsOutOfRangeError("latitude", lat, MinLatitude, MaxLatitude)
	}
	if math.IsNaN(lng) || lng < MinLongitude || lng > MaxLongitude {
		errLng = errs.NewValueIsOutOfRangeError("longitude", lng, MinLongitude, MaxLongitude)
	}
	if err := errors.Join(errLat, errLng); err != nil {
		return RoutePoint{}, err
	}
	return RoutePoint{lat: lat, lng: lng}, nil
}

// MustRoutePoint panics on invalid coordinates. Intended for constants and tests.
func MustRoutePoint(lat, lng float64) RoutePoint {
	p, err := NewRoutePoint(lat, lng)
	if err != nil {
		panic(err)
	}
	return p
}

func (p RoutePoint) Lat() float64 { return p.lat }
func (p RoutePoint) Lng() float64 { return p.lng }

func (p RoutePoint) String() string {
	return fmt.Sprintf("(%.6f,%.6f)", p.lat, p.lng)
}

// IsEqual compares coordinates exactly.
func (p RoutePoint) IsEqual(other RoutePoint) bool {
	return p.lat == other.lat && p.lng == other.lng
}

// DistanceTo returns the great-circle distance in meters.
func (p RoutePoint) DistanceTo(other RoutePoint) float64 {
	lat1 := toRadians(p.lat)
	lat2 := toRadians(other.lat)
	dLat := toRadians(other.lat - p.lat)
	dLng := toRadians(other.lng - p.lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// Interpolate returns the point at fraction f of the straight segment
// between p and other. f is clamped to [0, 1].
func (p RoutePoint) Interpolate(other RoutePoint, f float64) RoutePoint {
	switch {
	case f <= 0:
		return p
	case f >= 1:
		return other
	}
	return RoutePoint{
		lat: p.lat + (other.lat-p.lat)*f,
		lng: p.lng + (other.lng-p.lng)*f,
	}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
