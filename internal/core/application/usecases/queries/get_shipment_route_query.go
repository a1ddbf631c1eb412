package queries

import (
	"errors"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/pkg/guard"
)

var ErrGetShipmentRouteQueryIsNotConstructed = errors.New(
	"GetShipmentRouteQuery must be created via NewGetShipmentRouteQuery constructor",
)

// GetShipmentRouteQuery asks for the simulated route of a shipment: its
// polyline and how far along it the driver is.
type GetShipmentRouteQuery struct {
	shipmentID kernel.UUID
	tenantID   kernel.TenantID

	guard guard.ConstructorGuard
}

func NewGetShipmentRouteQuery(shipmentID kernel.UUID, tenantID kernel.TenantID) (GetShipmentRouteQuery, error) {
	if err := errors.Join(shipmentID.Validate(), tenantID.Validate()); err != nil {
		return GetShipmentRouteQuery{}, err
	}
	return GetShipmentRouteQuery{
		shipmentID: shipmentID,
		tenantID:   tenantID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (q GetShipmentRouteQuery) ShipmentID() kernel.UUID { return q.shipmentID }
func (q GetShipmentRouteQuery) TenantID() kernel.TenantID { return q.tenantID }

func (q GetShipmentRouteQuery) Validate() error {
	return q.guard.Validate(ErrGetShipmentRouteQueryIsNotConstructed)
}
