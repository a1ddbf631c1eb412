package commands

import (
	"context"

	"logistics/internal/core/application/approval"
	"logistics/internal/core/application/engine"
	"logistics/internal/core/domain/model/kernel"
)

// Simulations is the part of the simulation engine the lifecycle drives.
type Simulations interface {
	Start(ctx context.Context, req engine.StartRequest) error
	StopByShipment(ctx context.Context, shipmentID kernel.UUID, tenantID kernel.TenantID)
}

// AutoRejectScheduler arms and disarms approval timeouts.
type AutoRejectScheduler interface {
	ScheduleAutoReject(ctx context.Context, expiry approval.Expiry)
	CancelAutoReject(ctx context.Context, shipmentID kernel.UUID)
}
