package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"logistics/internal/core/domain/model/kernel"
)

const DefaultRoutingBaseURL = "https://router.project-osrm.org"

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Router calls an OSRM-compatible route service for the full driving
// geometry between two points.
type Router struct {
	client  client
	baseURL string
}

func NewRouter(baseURL string, hc *http.Client, opts Options) *Router {
	if baseURL == "" {
		baseURL = DefaultRoutingBaseURL
	}
	return &Router{
		client:  newClient(hc, nil, opts.RequestTimeout, opts.BackoffUnit, opts.MaxAttempts),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Route fails with *RoutingError when the service keeps failing, answers
// with a code other than "Ok" or returns fewer than two points.
func (r *Router) Route(ctx context.Context, origin, destination kernel.RoutePoint) ([]kernel.RoutePoint, error) {
	endpoint := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson",
		r.baseURL, origin.Lng(), origin.Lat(), destination.Lng(), destination.Lat())

	body, err := r.client.getWithRetry(ctx, endpoint)
	if err != nil {
		return nil, &RoutingError{Cause: err}
	}

	var decoded osrmResponse
	if err = json.Unmarshal(body, &decoded); err != nil {
		return nil, &RoutingError{Cause: fmt.Errorf("decode response: %w", err)}
	}
	if decoded.Code != "Ok" {
		return nil, &RoutingError{Cause: fmt.Errorf("code %q: %s", decoded.Code, decoded.Message)}
	}
	if len(decoded.Routes) == 0 || len(decoded.Routes[0].Geometry.Coordinates) < 2 {
		return nil, &RoutingError{Cause: errors.New("empty geometry")}
	}

	coords := decoded.Routes[0].Geometry.Coordinates
	points := make([]kernel.RoutePoint, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			return nil, &RoutingError{Cause: errors.New("invalid coordinate format")}
		}
		p, pErr := kernel.NewRoutePoint(c[1], c[0])
		if pErr != nil {
			return nil, &RoutingError{Cause: pErr}
		}
		points = append(points, p)
	}
	return points, nil
}
