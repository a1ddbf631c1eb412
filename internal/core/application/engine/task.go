package engine

import (
	"context"
	"slices"
	"sync"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/simulation"
)

// task is one running simulation. state and route are only touched under
// mu; shipmentID and phase never change for the lifetime of the task.
type task struct {
	key        simulation.Key
	shipmentID kernel.UUID
	phase      simulation.Phase

	mu      sync.Mutex
	state   simulation.State
	route   simulation.Route
	stopped bool
	cancel  context.CancelFunc
}

func newTask(state simulation.State, route simulation.Route) *task {
	return &task{
		key:        state.Key(),
		shipmentID: state.ShipmentID,
		phase:      state.Phase,
		state:      state,
		route:      route,
	}
}

func (t *task) matches(shipmentID kernel.UUID, phase simulation.Phase) bool {
	return t.shipmentID.IsEqual(shipmentID) && t.phase == phase
}

// halt marks the task stopped and cancels its loop. It waits for an
// in-flight tick to finish, so once halt returns no further emission or
// store write happens for this task.
func (t *task) halt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.cancel != nil {
		t.cancel()
	}
}

func (t *task) snapshot() simulation.RouteData {
	t.mu.Lock()
	defer t.mu.Unlock()
	route := t.route
	route.Points = slices.Clone(t.route.Points)
	return simulation.RouteData{State: t.state, Route: route}
}
