package commands

import (
	"errors"

	"logistics/internal/core/domain/model/kernel"
)

var ErrApproveAssignmentCommandIsNotConstructed = errors.New(
	"ApproveAssignmentCommand must be created via NewApproveAssignmentCommand constructor",
)

// ApproveAssignmentCommand is the driver accepting a pending assignment.
type ApproveAssignmentCommand struct {
	shipmentDriverCommand
}

func NewApproveAssignmentCommand(
	shipmentID kernel.UUID,
	tenantID kernel.TenantID,
	driverID kernel.UUID,
) (ApproveAssignmentCommand, error) {
	base, err := newShipmentDriverCommand(shipmentID, tenantID, driverID)
	if err != nil {
		return ApproveAssignmentCommand{}, err
	}
	return ApproveAssignmentCommand{base}, nil
}

func (c ApproveAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrApproveAssignmentCommandIsNotConstructed)
}
