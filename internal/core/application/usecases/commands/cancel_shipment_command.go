package commands

import (
	"errors"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/shipment"
	"logistics/internal/pkg/guard"
)

var ErrCancelShipmentCommandIsNotConstructed = errors.New(
	"CancelShipmentCommand must be created via NewCancelShipmentCommand constructor",
)

// CancelShipmentCommand cancels on behalf of the customer or the driver.
type CancelShipmentCommand struct {
	shipmentID kernel.UUID
	tenantID   kernel.TenantID
	actor      shipment.Actor

	guard guard.ConstructorGuard
}

func NewCancelShipmentCommand(
	shipmentID kernel.UUID,
	tenantID kernel.TenantID,
	actor string,
) (CancelShipmentCommand, error) {
	parsed, errActor := shipment.ParseActor(actor)
	if err := errors.Join(shipmentID.Validate(), tenantID.Validate(), errActor); err != nil {
		return CancelShipmentCommand{}, err
	}
	return CancelShipmentCommand{
		shipmentID: shipmentID,
		tenantID:   tenantID,
		actor:      parsed,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c CancelShipmentCommand) ShipmentID() kernel.UUID { return c.shipmentID }
func (c CancelShipmentCommand) TenantID() kernel.TenantID { return c.tenantID }
func (c CancelShipmentCommand) Actor() shipment.Actor { return c.actor }

func (c CancelShipmentCommand) Validate() error {
	return c.guard.Validate(ErrCancelShipmentCommandIsNotConstructed)
}
