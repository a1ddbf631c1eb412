package commands

import (
	"errors"

	"logistics/internal/core/domain/model/kernel"
)

var ErrAssignDriverCommandIsNotConstructed = errors.New(
	"AssignDriverCommand must be created via NewAssignDriverCommand constructor",
)

// AssignDriverCommand offers a shipment to a driver. The driver then has
// the approval window to accept or reject it.
type AssignDriverCommand struct {
	shipmentDriverCommand
}

func NewAssignDriverCommand(
	shipmentID kernel.UUID,
	tenantID kernel.TenantID,
	driverID kernel.UUID,
) (AssignDriverCommand, error) {
	base, err := newShipmentDriverCommand(shipmentID, tenantID, driverID)
	if err != nil {
		return AssignDriverCommand{}, err
	}
	return AssignDriverCommand{base}, nil
}

func (c AssignDriverCommand) Validate() error {
	return c.guard.Validate(ErrAssignDriverCommandIsNotConstructed)
}
