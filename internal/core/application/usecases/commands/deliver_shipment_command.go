package commands

import (
	"errors"

	"logistics/internal/core/domain/model/kernel"
)

var ErrDeliverShipmentCommandIsNotConstructed = errors.New(
	"DeliverShipmentCommand must be created via NewDeliverShipmentCommand constructor",
)

// DeliverShipmentCommand completes a shipment in transit.
type DeliverShipmentCommand struct {
	shipmentDriverCommand
}

func NewDeliverShipmentCommand(
	shipmentID kernel.UUID,
	tenantID kernel.TenantID,
	driverID kernel.UUID,
) (DeliverShipmentCommand, error) {
	base, err := newShipmentDriverCommand(shipmentID, tenantID, driverID)
	if err != nil {
		return DeliverShipmentCommand{}, err
	}
	return DeliverShipmentCommand{base}, nil
}

func (c DeliverShipmentCommand) Validate() error {
	return c.guard.Validate(ErrDeliverShipmentCommandIsNotConstructed)
}
