package ports

import (
	"context"
	"time"

	"logistics/internal/core/domain/model/kernel"
)

const (
	EventDriverLocationUpdate = "driver-location-update"
	EventShipmentStatusUpdate = "shipment-status-update"
	EventSimulationCompleted  = "simulation-completed"
)

// Event is a real-time message fanned out to a tenant's subscribers.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"data"`
}

type LocationPayload struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

type DriverLocationUpdate struct {
	DriverID string          `json:"driverId"`
	Location LocationPayload `json:"location"`
	Source   string          `json:"source"`
}

type ShipmentStatusUpdate struct {
	ShipmentID      string  `json:"shipmentId"`
	NewStatus       string  `json:"newStatus"`
	DriverID        *string `json:"driverId"`
	PendingApproval bool    `json:"pendingApproval"`
	AutoRejected    bool    `json:"autoRejected,omitempty"`
}

type SimulationCompleted struct {
	ShipmentID string `json:"shipmentId"`
	DriverID   string `json:"driverId"`
	Phase      string `json:"phase"`
}

// Broadcaster delivers events best effort. It never blocks on slow
// subscribers and never reports delivery failures to the caller.
type Broadcaster interface {
	Broadcast(ctx context.Context, tenantID kernel.TenantID, event Event)
}
