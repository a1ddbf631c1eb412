package engine_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/simulation"
	"logistics/internal/core/domain/model/tracking"
	"logistics/internal/core/ports"
)

var errStoreDown = errors.New("store unavailable")

type memStore struct {
	mu        sync.Mutex
	states    map[simulation.Key]simulation.State
	routes    map[simulation.Key]simulation.Route
	locations map[simulation.Key]tracking.DriverLocation
	steps     map[simulation.Key][]int

	failRoutes atomic.Bool
	failAll    atomic.Bool
}

func newMemStore() *memStore {
	return &memStore{
		states:    make(map[simulation.Key]simulation.State),
		routes:    make(map[simulation.Key]simulation.Route),
		locations: make(map[simulation.Key]tracking.DriverLocation),
		steps:     make(map[simulation.Key][]int),
	}
}

func (s *memStore) SaveState(_ context.Context, state simulation.State) error {
	if s.failAll.Load() {
		return errStoreDown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.Key()] = state
	s.steps[state.Key()] = append(s.steps[state.Key()], state.CurrentStep)
	return nil
}

func (s *memStore) GetState(_ context.Context, key simulation.Key) (*simulation.State, error) {
	if s.failAll.Load() {
		return nil, errStoreDown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[key]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (s *memStore) DeleteState(_ context.Context, key simulation.Key) error {
	if s.failAll.Load() {
		return errStoreDown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, key)
	return nil
}

func (s *memStore) SaveRoute(_ context.Context, key simulation.Key, route simulation.Route) error {
	if s.failAll.Load() || s.failRoutes.Load() {
		return errStoreDown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[key] = route
	return nil
}

func (s *memStore) GetRoute(_ context.Context, key simulation.Key) (*simulation.Route, error) {
	if s.failAll.Load() || s.failRoutes.Load() {
		return nil, errStoreDown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	route, ok := s.routes[key]
	if !ok {
		return nil, nil
	}
	return &route, nil
}

func (s *memStore) DeleteRoute(_ context.Context, key simulation.Key) error {
	if s.failAll.Load() {
		return errStoreDown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.routes, key)
	return nil
}

func (s *memStore) FindStateByShipment(
	_ context.Context,
	tenantID kernel.TenantID,
	shipmentID kernel.UUID,
) (*simulation.State, error) {
	if s.failAll.Load() {
		return nil, errStoreDown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, state := range s.states {
		if key.TenantID == tenantID && state.ShipmentID.IsEqual(shipmentID) {
			return &state, nil
		}
	}
	return nil, nil
}

func (s *memStore) ListKeys(_ context.Context, tenantID kernel.TenantID) ([]simulation.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []simulation.Key
	for key := range s.states {
		if tenantID == "" || key.TenantID == tenantID {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *memStore) SaveDriverLocation(_ context.Context, loc tracking.DriverLocation) error {
	if s.failAll.Load() {
		return errStoreDown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[simulation.NewKey(loc.TenantID, loc.DriverID)] = loc
	return nil
}

func (s *memStore) GetDriverLocation(
	_ context.Context,
	tenantID kernel.TenantID,
	driverID kernel.UUID,
) (*tracking.DriverLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.locations[simulation.NewKey(tenantID, driverID)]
	if !ok {
		return nil, nil
	}
	return &loc, nil
}

func (s *memStore) state(key simulation.Key) (simulation.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[key]
	return state, ok
}

func (s *memStore) hasRoute(key simulation.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.routes[key]
	return ok
}

func (s *memStore) savedSteps(key simulation.Key) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.steps[key]...)
}

// hangingStore blocks route reads and progress writes until the caller's
// deadline, like a store that stopped answering.
type hangingStore struct {
	*memStore
	timeouts atomic.Int32
}

func (s *hangingStore) GetRoute(ctx context.Context, _ simulation.Key) (*simulation.Route, error) {
	<-ctx.Done()
	s.timeouts.Add(1)
	return nil, ctx.Err()
}

func (s *hangingStore) SaveState(ctx context.Context, _ simulation.State) error {
	<-ctx.Done()
	s.timeouts.Add(1)
	return ctx.Err()
}

// gatedStore holds route reads once closed until release is closed, which
// keeps a tick in flight.
type gatedStore struct {
	*memStore
	closed  atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		memStore: newMemStore(),
		entered:  make(chan struct{}, 1),
		release:  make(chan struct{}),
	}
}

func (s *gatedStore) GetRoute(ctx context.Context, key simulation.Key) (*simulation.Route, error) {
	if s.closed.Load() {
		select {
		case s.entered <- struct{}{}:
		default:
		}
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.memStore.GetRoute(ctx, key)
}

type fakeGeo struct {
	mu           sync.Mutex
	addresses    map[string]kernel.RoutePoint
	routePoints  int
	fixedRoute   []kernel.RoutePoint
	geocodeCalls int
}

func newFakeGeo(routePoints int) *fakeGeo {
	return &fakeGeo{
		addresses: map[string]kernel.RoutePoint{
			"pickup":   kernel.MustRoutePoint(52.5200, 13.4050),
			"delivery": kernel.MustRoutePoint(52.5300, 13.4050),
			"depot":    kernel.MustRoutePoint(52.5000, 13.3000),
		},
		routePoints: routePoints,
	}
}

func (g *fakeGeo) Geocode(_ context.Context, address string) (kernel.RoutePoint, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.geocodeCalls++
	p, ok := g.addresses[address]
	if !ok {
		return kernel.RoutePoint{}, errors.New("no results for " + address)
	}
	return p, nil
}

func (g *fakeGeo) Route(_ context.Context, origin, destination kernel.RoutePoint) []kernel.RoutePoint {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fixedRoute != nil {
		return g.fixedRoute
	}
	points := make([]kernel.RoutePoint, g.routePoints)
	for i := range points {
		points[i] = origin.Interpolate(destination, float64(i)/float64(g.routePoints-1))
	}
	return points
}

func (g *fakeGeo) Distance(a, b kernel.RoutePoint) float64 {
	return a.DistanceTo(b)
}

func (g *fakeGeo) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.geocodeCalls
}

type recorded struct {
	tenantID kernel.TenantID
	event    ports.Event
}

type recorder struct {
	mu     sync.Mutex
	events []recorded
}

func (r *recorder) Broadcast(_ context.Context, tenantID kernel.TenantID, event ports.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recorded{tenantID: tenantID, event: event})
}

func (r *recorder) locations(driverID kernel.UUID) []ports.DriverLocationUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ports.DriverLocationUpdate
	for _, rec := range r.events {
		if upd, ok := rec.event.Payload.(ports.DriverLocationUpdate); ok && upd.DriverID == driverID.String() {
			out = append(out, upd)
		}
	}
	return out
}

func (r *recorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.events {
		if rec.event.Name == name {
			n++
		}
	}
	return n
}
