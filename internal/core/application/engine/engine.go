package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/simulation"
	"logistics/internal/core/domain/model/tracking"
	"logistics/internal/core/ports"
	"logistics/internal/pkg/errs"
)

var ErrEngineClosed = errors.New("simulation engine is shut down")

const (
	DefaultTickInterval     = 3 * time.Second
	DefaultStoreTimeout     = 2 * time.Second
	DefaultArrivalThreshold = 50.0
)

// Config tunes the engine. Zero fields fall back to the defaults.
type Config struct {
	TickInterval time.Duration
	StoreTimeout time.Duration
	// ArrivalThreshold is the distance in meters at which a driver counts
	// as arrived.
	ArrivalThreshold float64
}

func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = DefaultStoreTimeout
	}
	if c.ArrivalThreshold <= 0 {
		c.ArrivalThreshold = DefaultArrivalThreshold
	}
	return c
}

// StartRequest describes the leg to simulate.
type StartRequest struct {
	ShipmentID      kernel.UUID
	DriverID        kernel.UUID
	TenantID        kernel.TenantID
	PickupAddress   string
	DeliveryAddress string
	Phase           simulation.Phase
}

func (r StartRequest) validate() error {
	var errPickup, errDelivery error
	if r.PickupAddress == "" {
		errPickup = errs.NewValueIsRequiredError("pickupAddress")
	}
	if r.DeliveryAddress == "" {
		errDelivery = errs.NewValueIsRequiredError("deliveryAddress")
	}
	_, errPhase := simulation.ParsePhase(string(r.Phase))
	return errors.Join(
		r.ShipmentID.Validate(),
		r.DriverID.Validate(),
		r.TenantID.Validate(),
		errPickup,
		errDelivery,
		errPhase,
	)
}

// Engine moves simulated drivers along resolved routes. At most one
// simulation runs per (tenant, driver); progress is persisted after every
// tick so another process can resume it.
type Engine struct {
	geo         ports.GeoResolver
	store       ports.SimulationStore
	locations   ports.LocationStore
	broadcaster ports.Broadcaster
	cfg         Config
	logger      *slog.Logger

	keys *keyedMutex

	mu     sync.Mutex
	tasks  map[simulation.Key]*task
	closed bool

	rootCtx    context.Context
	cancelRoot context.CancelFunc
	wg         sync.WaitGroup
}

func NewEngine(
	geo ports.GeoResolver,
	store ports.SimulationStore,
	locations ports.LocationStore,
	broadcaster ports.Broadcaster,
	cfg Config,
	logger *slog.Logger,
) *Engine {
	rootCtx, cancel := context.WithCancel(context.Background())
	return &Engine{
		geo:         geo,
		store:       store,
		locations:   locations,
		broadcaster: broadcaster,
		cfg:         cfg.withDefaults(),
		logger:      logger.With("component", "simulation_engine"),
		keys:        newKeyedMutex(),
		tasks:       make(map[simulation.Key]*task),
		rootCtx:     rootCtx,
		cancelRoot:  cancel,
	}
}

// Start begins simulating req. Starting the run that is already active for
// the driver is a no-op; any other active run for the driver is stopped
// first. Geocoding failures are returned and leave nothing persisted.
func (e *Engine) Start(ctx context.Context, req StartRequest) error {
	if err := req.validate(); err != nil {
		return err
	}

	key := simulation.NewKey(req.TenantID, req.DriverID)
	unlock := e.keys.Lock(key)
	defer unlock()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	current := e.tasks[key]
	e.mu.Unlock()

	log := e.logger.With(
		"tenant_id", req.TenantID.String(),
		"driver_id", req.DriverID.String(),
		"shipment_id", req.ShipmentID.String(),
		"phase", req.Phase.String(),
	)

	if current != nil {
		if current.matches(req.ShipmentID, req.Phase) {
			log.DebugContext(ctx, "Simulation already running")
			return nil
		}
		e.stopLocked(ctx, key)
	} else if resumed := e.resumeSameRun(ctx, key, req); resumed {
		log.InfoContext(ctx, "Simulation resumed from store")
		return nil
	}

	pickup, err := e.geo.Geocode(ctx, req.PickupAddress)
	if err != nil {
		return fmt.Errorf("geocode pickup address: %w", err)
	}
	delivery, err := e.geo.Geocode(ctx, req.DeliveryAddress)
	if err != nil {
		return fmt.Errorf("geocode delivery address: %w", err)
	}

	points := e.geo.Route(ctx, pickup, delivery)
	if len(points) < 2 {
		points = []kernel.RoutePoint{pickup, delivery}
	}

	state := simulation.State{
		ShipmentID:    req.ShipmentID,
		DriverID:      req.DriverID,
		TenantID:      req.TenantID,
		PickupPoint:   pickup,
		DeliveryPoint: delivery,
		CurrentStep:   0,
		TotalSteps:    len(points) - 1,
		Phase:         req.Phase,
	}
	route := simulation.Route{
		ShipmentID:    req.ShipmentID,
		Points:        points,
		PickupPoint:   pickup,
		DeliveryPoint: delivery,
		Phase:         req.Phase,
	}

	_ = e.storeCall(ctx, "save_route", key, func(ctx context.Context) error {
		return e.store.SaveRoute(ctx, key, route)
	})
	_ = e.storeCall(ctx, "save_state", key, func(ctx context.Context) error {
		return e.store.SaveState(ctx, state)
	})

	t := newTask(state, route)
	e.emitLocation(ctx, state, points[0])
	if err = e.launch(t); err != nil {
		e.deletePersisted(ctx, key)
		return err
	}

	log.InfoContext(ctx, "Simulation started", "total_steps", state.TotalSteps)
	return nil
}

// resumeSameRun restores a persisted run of the same shipment and phase
// instead of restarting it from step zero. Must be called under the key lock.
func (e *Engine) resumeSameRun(ctx context.Context, key simulation.Key, req StartRequest) bool {
	var state *simulation.State
	err := e.storeCall(ctx, "get_state", key, func(ctx context.Context) error {
		var err error
		state, err = e.store.GetState(ctx, key)
		return err
	})
	if err != nil || state == nil || !state.SameRun(req.ShipmentID, req.Phase) {
		return false
	}
	restored, err := e.restoreLocked(ctx, key, state)
	return err == nil && restored
}

// Stop ends the driver's simulation and removes its persisted state.
// Stopping a driver without a simulation is a no-op.
func (e *Engine) Stop(ctx context.Context, driverID kernel.UUID, tenantID kernel.TenantID) {
	key := simulation.NewKey(tenantID, driverID)
	unlock := e.keys.Lock(key)
	defer unlock()

	e.stopLocked(ctx, key)
}

// StopByShipment stops every simulation of shipmentID within the tenant,
// whichever driver runs it. Runs only present in the store are removed too
// so recovery does not resurrect them.
func (e *Engine) StopByShipment(ctx context.Context, shipmentID kernel.UUID, tenantID kernel.TenantID) {
	e.mu.Lock()
	var keys []simulation.Key
	for key, t := range e.tasks {
		if key.TenantID == tenantID && t.shipmentID.IsEqual(shipmentID) {
			keys = append(keys, key)
		}
	}
	e.mu.Unlock()

	for _, key := range keys {
		e.stopIf(ctx, key, func(t *task) bool { return t.shipmentID.IsEqual(shipmentID) })
	}

	var persisted *simulation.State
	_ = e.storeCall(ctx, "find_state", simulation.Key{TenantID: tenantID}, func(ctx context.Context) error {
		var err error
		persisted, err = e.store.FindStateByShipment(ctx, tenantID, shipmentID)
		return err
	})
	if persisted != nil {
		e.stopIf(ctx, persisted.Key(), func(t *task) bool { return t.shipmentID.IsEqual(shipmentID) })
	}
}

func (e *Engine) stopIf(ctx context.Context, key simulation.Key, pred func(*task) bool) {
	unlock := e.keys.Lock(key)
	defer unlock()

	e.mu.Lock()
	t := e.tasks[key]
	e.mu.Unlock()
	if t != nil && !pred(t) {
		return
	}
	e.stopLocked(ctx, key)
}

// stopLocked must be called under the key lock.
func (e *Engine) stopLocked(ctx context.Context, key simulation.Key) {
	e.mu.Lock()
	t := e.tasks[key]
	delete(e.tasks, key)
	e.mu.Unlock()

	if t != nil {
		t.halt()
		e.logger.InfoContext(ctx, "Simulation stopped",
			"tenant_id", key.TenantID.String(),
			"driver_id", key.DriverID.String(),
			"shipment_id", t.shipmentID.String(),
		)
	}
	e.deletePersisted(ctx, key)
}

// Restore rebuilds a local task from the store, keeping its current step.
// It returns false when the key already runs locally or nothing is stored.
func (e *Engine) Restore(ctx context.Context, driverID kernel.UUID, tenantID kernel.TenantID) (bool, error) {
	key := simulation.NewKey(tenantID, driverID)
	unlock := e.keys.Lock(key)
	defer unlock()

	var state *simulation.State
	if err := e.storeCall(ctx, "get_state", key, func(ctx context.Context) error {
		var err error
		state, err = e.store.GetState(ctx, key)
		return err
	}); err != nil {
		return false, err
	}
	if state == nil {
		return false, nil
	}
	return e.restoreLocked(ctx, key, state)
}

func (e *Engine) restoreLocked(ctx context.Context, key simulation.Key, state *simulation.State) (bool, error) {
	e.mu.Lock()
	_, running := e.tasks[key]
	e.mu.Unlock()
	if running {
		return false, nil
	}

	if err := state.Validate(); err != nil {
		e.deletePersisted(ctx, key)
		return false, fmt.Errorf("discarding invalid simulation state %s: %w", key, err)
	}

	var route *simulation.Route
	if err := e.storeCall(ctx, "get_route", key, func(ctx context.Context) error {
		var err error
		route, err = e.store.GetRoute(ctx, key)
		return err
	}); err != nil {
		return false, err
	}
	if route == nil || len(route.Points) < 2 {
		// The polyline expired or was lost; rebuild it between the stored
		// endpoints.
		route = &simulation.Route{
			ShipmentID:    state.ShipmentID,
			Points:        e.geo.Route(ctx, state.PickupPoint, state.DeliveryPoint),
			PickupPoint:   state.PickupPoint,
			DeliveryPoint: state.DeliveryPoint,
			Phase:         state.Phase,
		}
		_ = e.storeCall(ctx, "save_route", key, func(ctx context.Context) error {
			return e.store.SaveRoute(ctx, key, *route)
		})

		rebuilt := *state
		rebuilt.TotalSteps = route.LastIndex()
		state = &rebuilt
		_ = e.storeCall(ctx, "save_state", key, func(ctx context.Context) error {
			return e.store.SaveState(ctx, rebuilt)
		})
	}

	if state.CurrentStep >= route.LastIndex() {
		e.deletePersisted(ctx, key)
		e.broadcastCompleted(ctx, *state)
		return false, nil
	}

	if err := e.launch(newTask(*state, *route)); err != nil {
		return false, err
	}
	e.logger.InfoContext(ctx, "Simulation restored",
		"tenant_id", key.TenantID.String(),
		"driver_id", key.DriverID.String(),
		"shipment_id", state.ShipmentID.String(),
		"step", state.CurrentStep,
	)
	return true, nil
}

// launch registers t and starts its tick loop. Must be called under the
// key lock.
func (e *Engine) launch(t *task) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineClosed
	}

	ctx, cancel := context.WithCancel(e.rootCtx)
	t.cancel = cancel
	e.tasks[t.key] = t

	e.wg.Add(1)
	go e.run(ctx, t)
	return nil
}

func (e *Engine) run(ctx context.Context, t *task) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if e.tick(ctx, t) {
				e.complete(context.WithoutCancel(ctx), t)
				return
			}
		}
	}
}

// tick advances t by one step and reports whether the driver arrived.
func (e *Engine) tick(ctx context.Context, t *task) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return false
	}

	route := e.currentRoute(ctx, t)
	last := route.LastIndex()

	next := t.state.CurrentStep + 1
	if next > last {
		next = last
	}
	point := route.Points[next]
	arrived := next >= last ||
		e.geo.Distance(point, t.state.DeliveryPoint) <= e.cfg.ArrivalThreshold
	if arrived {
		point = t.state.DeliveryPoint
	}
	t.state.CurrentStep = next

	e.emitLocation(ctx, t.state, point)

	if !arrived {
		state := t.state
		_ = e.storeCall(ctx, "save_state", t.key, func(ctx context.Context) error {
			return e.store.SaveState(ctx, state)
		})
	}
	return arrived
}

// currentRoute prefers the persisted route and falls back to the copy held
// by the task when the store is unreachable or holds another run.
func (e *Engine) currentRoute(ctx context.Context, t *task) simulation.Route {
	var stored *simulation.Route
	err := e.storeCall(ctx, "get_route", t.key, func(ctx context.Context) error {
		var err error
		stored, err = e.store.GetRoute(ctx, t.key)
		return err
	})
	if err != nil || stored == nil || len(stored.Points) < 2 ||
		!stored.ShipmentID.IsEqual(t.shipmentID) || stored.Phase != t.phase {
		return t.route
	}
	t.route = *stored
	return t.route
}

func (e *Engine) complete(ctx context.Context, t *task) {
	unlock := e.keys.Lock(t.key)
	defer unlock()

	e.mu.Lock()
	if e.tasks[t.key] != t {
		// Stopped or superseded while the last tick was running.
		e.mu.Unlock()
		return
	}
	delete(e.tasks, t.key)
	e.mu.Unlock()

	t.halt()
	e.deletePersisted(ctx, t.key)

	state := t.snapshot().State
	e.broadcastCompleted(ctx, state)
	e.logger.InfoContext(ctx, "Simulation completed",
		"tenant_id", state.TenantID.String(),
		"driver_id", state.DriverID.String(),
		"shipment_id", state.ShipmentID.String(),
		"step", state.CurrentStep,
	)
}

// GetRouteData returns the driver's simulation, local first, then persisted.
func (e *Engine) GetRouteData(
	ctx context.Context,
	driverID kernel.UUID,
	tenantID kernel.TenantID,
) (*simulation.RouteData, error) {
	key := simulation.NewKey(tenantID, driverID)

	e.mu.Lock()
	t := e.tasks[key]
	e.mu.Unlock()
	if t != nil {
		data := t.snapshot()
		return &data, nil
	}

	var state *simulation.State
	if err := e.storeCall(ctx, "get_state", key, func(ctx context.Context) error {
		var err error
		state, err = e.store.GetState(ctx, key)
		return err
	}); err != nil {
		return nil, err
	}
	if state == nil {
		return nil, errs.NewObjectNotFoundError("simulation", key.String())
	}
	return e.withStoredRoute(ctx, *state)
}

// GetRouteDataByShipment scans local tasks first and falls back to a
// bounded scan of the tenant's persisted simulations.
func (e *Engine) GetRouteDataByShipment(
	ctx context.Context,
	shipmentID kernel.UUID,
	tenantID kernel.TenantID,
) (*simulation.RouteData, error) {
	e.mu.Lock()
	var found *task
	for key, t := range e.tasks {
		if key.TenantID == tenantID && t.shipmentID.IsEqual(shipmentID) {
			found = t
			break
		}
	}
	e.mu.Unlock()
	if found != nil {
		data := found.snapshot()
		return &data, nil
	}

	var state *simulation.State
	if err := e.storeCall(ctx, "find_state", simulation.Key{TenantID: tenantID}, func(ctx context.Context) error {
		var err error
		state, err = e.store.FindStateByShipment(ctx, tenantID, shipmentID)
		return err
	}); err != nil {
		return nil, err
	}
	if state == nil {
		return nil, errs.NewObjectNotFoundError("shipmentID", shipmentID)
	}
	return e.withStoredRoute(ctx, *state)
}

func (e *Engine) withStoredRoute(ctx context.Context, state simulation.State) (*simulation.RouteData, error) {
	var route *simulation.Route
	if err := e.storeCall(ctx, "get_route", state.Key(), func(ctx context.Context) error {
		var err error
		route, err = e.store.GetRoute(ctx, state.Key())
		return err
	}); err != nil {
		return nil, err
	}
	data := &simulation.RouteData{State: state}
	if route != nil {
		data.Route = *route
	}
	return data, nil
}

// IsRunning reports whether the driver has a local simulation task.
func (e *Engine) IsRunning(driverID kernel.UUID, tenantID kernel.TenantID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.tasks[simulation.NewKey(tenantID, driverID)]
	return ok
}

// ActiveCount returns the number of local simulation tasks.
func (e *Engine) ActiveCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tasks)
}

// Shutdown stops every local loop without touching persisted state, so
// the runs resume after a restart.
func (e *Engine) Shutdown(ctx context.Context) {
	e.mu.Lock()
	e.closed = true
	tasks := make([]*task, 0, len(e.tasks))
	for _, t := range e.tasks {
		tasks = append(tasks, t)
	}
	e.tasks = make(map[simulation.Key]*task)
	e.mu.Unlock()

	for _, t := range tasks {
		t.halt()
	}
	e.cancelRoot()
	e.wg.Wait()
	e.logger.InfoContext(ctx, "Simulation engine stopped", "tasks", len(tasks))
}

func (e *Engine) emitLocation(ctx context.Context, state simulation.State, point kernel.RoutePoint) {
	loc := tracking.NewDriverLocation(state.DriverID, state.TenantID, point, tracking.SourceSimulated, time.Now())

	_ = e.storeCall(ctx, "save_location", state.Key(), func(ctx context.Context) error {
		return e.locations.SaveDriverLocation(ctx, loc)
	})

	e.broadcaster.Broadcast(ctx, state.TenantID, ports.Event{
		Name: ports.EventDriverLocationUpdate,
		Payload: ports.DriverLocationUpdate{
			DriverID: state.DriverID.String(),
			Location: ports.LocationPayload{
				Latitude:  point.Lat(),
				Longitude: point.Lng(),
				Timestamp: loc.Timestamp,
			},
			Source: string(tracking.SourceSimulated),
		},
	})
}

func (e *Engine) broadcastCompleted(ctx context.Context, state simulation.State) {
	e.broadcaster.Broadcast(ctx, state.TenantID, ports.Event{
		Name: ports.EventSimulationCompleted,
		Payload: ports.SimulationCompleted{
			ShipmentID: state.ShipmentID.String(),
			DriverID:   state.DriverID.String(),
			Phase:      state.Phase.String(),
		},
	})
}

func (e *Engine) deletePersisted(ctx context.Context, key simulation.Key) {
	_ = e.storeCall(ctx, "delete_state", key, func(ctx context.Context) error {
		return e.store.DeleteState(ctx, key)
	})
	_ = e.storeCall(ctx, "delete_route", key, func(ctx context.Context) error {
		return e.store.DeleteRoute(ctx, key)
	})
}

// storeCall bounds fn by the store timeout. Failures are logged and
// returned as *errs.StoreTimeoutError; callers on the tick path ignore them.
func (e *Engine) storeCall(ctx context.Context, op string, key simulation.Key, fn func(context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.StoreTimeout)
	defer cancel()

	if err := fn(callCtx); err != nil {
		storeErr := errs.NewStoreTimeoutError(op, key.String(), err)
		e.logger.WarnContext(ctx, "Simulation store call failed", "operation", op, "key", key.String(), "error", err)
		return storeErr
	}
	return nil
}
