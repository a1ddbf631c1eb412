package ports

import (
	"context"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/simulation"
	"logistics/internal/core/domain/model/tracking"
)

// SimulationStore keeps simulation progress and routes in the shared
// key-value store so a run survives a restart.
//
// Get methods return (nil, nil) when the key does not exist.
type SimulationStore interface {
	SaveState(ctx context.Context, state simulation.State) error
	GetState(ctx context.Context, key simulation.Key) (*simulation.State, error)
	DeleteState(ctx context.Context, key simulation.Key) error

	SaveRoute(ctx context.Context, key simulation.Key, route simulation.Route) error
	GetRoute(ctx context.Context, key simulation.Key) (*simulation.Route, error)
	DeleteRoute(ctx context.Context, key simulation.Key) error

	// FindStateByShipment scans the tenant's simulation keys with a
	// bounded number of cursor iterations.
	FindStateByShipment(ctx context.Context, tenantID kernel.TenantID, shipmentID kernel.UUID) (*simulation.State, error)

	// ListKeys returns the persisted simulation keys, bounded like
	// FindStateByShipment. An empty tenantID lists every tenant.
	ListKeys(ctx context.Context, tenantID kernel.TenantID) ([]simulation.Key, error)
}

// LocationStore keeps the last known position of every driver.
type LocationStore interface {
	SaveDriverLocation(ctx context.Context, loc tracking.DriverLocation) error
	GetDriverLocation(ctx context.Context, tenantID kernel.TenantID, driverID kernel.UUID) (*tracking.DriverLocation, error)
}
