package simulation

import (
	"errors"
	"fmt"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/pkg/errs"
)

// Key identifies the single simulation a driver may run within a tenant.
type Key struct {
	TenantID kernel.TenantID
	DriverID kernel.UUID
}

func NewKey(tenantID kernel.TenantID, driverID kernel.UUID) Key {
	return Key{TenantID: tenantID, DriverID: driverID}
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.TenantID, k.DriverID)
}

// State is the lightweight progress record rewritten on every tick.
// The route polyline lives in Route.
type State struct {
	ShipmentID    kernel.UUID
	DriverID      kernel.UUID
	TenantID      kernel.TenantID
	PickupPoint   kernel.RoutePoint
	DeliveryPoint kernel.RoutePoint
	CurrentStep   int
	TotalSteps    int
	Phase         Phase
}

func (s State) Key() Key {
	return NewKey(s.TenantID, s.DriverID)
}

// SameRun reports whether s and other describe the same shipment leg.
func (s State) SameRun(shipmentID kernel.UUID, phase Phase) bool {
	return s.ShipmentID.IsEqual(shipmentID) && s.Phase == phase
}

// Destination is the point the current leg ends at.
func (s State) Destination() kernel.RoutePoint {
	return s.DeliveryPoint
}

func (s State) Validate() error {
	var errStep error
	if s.TotalSteps < 1 || s.CurrentStep < 0 || s.CurrentStep > s.TotalSteps {
		errStep = errs.NewValueIsOutOfRangeError("currentStep", s.CurrentStep, 0, s.TotalSteps)
	}
	_, errPhase := ParsePhase(string(s.Phase))
	return errors.Join(
		s.ShipmentID.Validate(),
		s.DriverID.Validate(),
		s.TenantID.Validate(),
		errStep,
		errPhase,
	)
}

// Route is the polyline of one leg, persisted once per start.
type Route struct {
	ShipmentID    kernel.UUID
	Points        []kernel.RoutePoint
	PickupPoint   kernel.RoutePoint
	DeliveryPoint kernel.RoutePoint
	Phase         Phase
}

// LastIndex returns the index of the final point, or -1 for an empty route.
func (r Route) LastIndex() int {
	return len(r.Points) - 1
}

// RouteData is what lookups return: progress plus the polyline.
type RouteData struct {
	State State
	Route Route
}
