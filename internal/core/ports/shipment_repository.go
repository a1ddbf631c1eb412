// Package ports defines the contracts between the shipment core and its
// adapters: persistence, the key-value store, geo services and real-time
// broadcasting.
package ports

import (
	"context"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/notification"
	"logistics/internal/core/domain/model/shipment"
)

// ShipmentRepository persists shipment aggregates. Every lookup is scoped
// by tenant; a shipment of another tenant is reported as not found.
type ShipmentRepository interface {
	Add(ctx context.Context, aggregate *shipment.Shipment) error

	// Update writes the aggregate if the stored version still equals
	// aggregate.Version(). A concurrent writer makes it fail with
	// *errs.VersionIsInvalidError.
	Update(ctx context.Context, aggregate *shipment.Shipment) error

	// Get returns *errs.ObjectNotFoundError when no shipment matches.
	Get(ctx context.Context, tenantID kernel.TenantID, id kernel.UUID) (*shipment.Shipment, error)

	// GetAllPendingApproval returns every ASSIGNED shipment still awaiting
	// a driver decision, across all tenants.
	GetAllPendingApproval(ctx context.Context) ([]*shipment.Shipment, error)
}

// NotificationRepository stores notifications produced by lifecycle changes.
type NotificationRepository interface {
	Add(ctx context.Context, n *notification.Notification) error
}
