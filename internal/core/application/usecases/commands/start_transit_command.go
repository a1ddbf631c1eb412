package commands

import (
	"errors"

	"logistics/internal/core/domain/model/kernel"
)

var ErrStartTransitCommandIsNotConstructed = errors.New(
	"StartTransitCommand must be created via NewStartTransitCommand constructor",
)

// StartTransitCommand moves an accepted shipment to IN_TRANSIT.
type StartTransitCommand struct {
	shipmentDriverCommand
}

func NewStartTransitCommand(
	shipmentID kernel.UUID,
	tenantID kernel.TenantID,
	driverID kernel.UUID,
) (StartTransitCommand, error) {
	base, err := newShipmentDriverCommand(shipmentID, tenantID, driverID)
	if err != nil {
		return StartTransitCommand{}, err
	}
	return StartTransitCommand{base}, nil
}

func (c StartTransitCommand) Validate() error {
	return c.guard.Validate(ErrStartTransitCommandIsNotConstructed)
}
