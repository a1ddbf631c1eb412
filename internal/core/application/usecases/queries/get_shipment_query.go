// Package queries contains the read side of the shipment lifecycle. Query
// handlers read straight from storage into response models and never load
// aggregates.
package queries

import (
	"errors"
	"time"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/pkg/guard"
)

var ErrGetShipmentQueryIsNotConstructed = errors.New(
	"GetShipmentQuery must be created via NewGetShipmentQuery constructor",
)

type GetShipmentQuery struct {
	shipmentID kernel.UUID
	tenantID   kernel.TenantID

	guard guard.ConstructorGuard
}

func NewGetShipmentQuery(shipmentID kernel.UUID, tenantID kernel.TenantID) (GetShipmentQuery, error) {
	if err := errors.Join(shipmentID.Validate(), tenantID.Validate()); err != nil {
		return GetShipmentQuery{}, err
	}
	return GetShipmentQuery{
		shipmentID: shipmentID,
		tenantID:   tenantID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (q GetShipmentQuery) ShipmentID() kernel.UUID { return q.shipmentID }
func (q GetShipmentQuery) TenantID() kernel.TenantID { return q.tenantID }

func (q GetShipmentQuery) Validate() error {
	return q.guard.Validate(ErrGetShipmentQueryIsNotConstructed)
}

// GetShipmentQueryResponse is the shipment read model. AllowedNextStates
// lets clients render only the actions the state machine accepts.
type GetShipmentQueryResponse struct {
	ID                kernel.UUID
	TenantID          kernel.TenantID
	PickupAddress     string
	DeliveryAddress   string
	DriverID          *kernel.UUID
	Status            string
	PendingApproval   bool
	AllowedNextStates []string
	CreatedAt         time.Time
	AssignedAt        *time.Time
	CancelledAt       *time.Time
	DeliveredAt       *time.Time
}
