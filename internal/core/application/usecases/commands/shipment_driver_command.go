package commands

import (
	"errors"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/pkg/guard"
)

// shipmentDriverCommand carries the fields shared by every command a
// driver issues against one shipment.
type shipmentDriverCommand struct {
	shipmentID kernel.UUID
	tenantID   kernel.TenantID
	driverID   kernel.UUID

	guard guard.ConstructorGuard
}

func newShipmentDriverCommand(
	shipmentID kernel.UUID,
	tenantID kernel.TenantID,
	driverID kernel.UUID,
) (shipmentDriverCommand, error) {
	if err := errors.Join(shipmentID.Validate(), tenantID.Validate(), driverID.Validate()); err != nil {
		return shipmentDriverCommand{}, err
	}
	return shipmentDriverCommand{
		shipmentID: shipmentID,
		tenantID:   tenantID,
		driverID:   driverID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c shipmentDriverCommand) ShipmentID() kernel.UUID { return c.shipmentID }
func (c shipmentDriverCommand) TenantID() kernel.TenantID { return c.tenantID }
func (c shipmentDriverCommand) DriverID() kernel.UUID { return c.driverID }
