package commands

import (
	"errors"

	"logistics/internal/core/domain/model/kernel"
)

var (
	ErrRejectAssignmentCommandIsNotConstructed = errors.New(
		"RejectAssignmentCommand must be created via NewRejectAssignmentCommand constructor",
	)
	ErrAutoRejectAssignmentCommandIsNotConstructed = errors.New(
		"AutoRejectAssignmentCommand must be created via NewAutoRejectAssignmentCommand constructor",
	)
)

// RejectAssignmentCommand is the driver declining a pending assignment.
type RejectAssignmentCommand struct {
	shipmentDriverCommand
}

func NewRejectAssignmentCommand(
	shipmentID kernel.UUID,
	tenantID kernel.TenantID,
	driverID kernel.UUID,
) (RejectAssignmentCommand, error) {
	base, err := newShipmentDriverCommand(shipmentID, tenantID, driverID)
	if err != nil {
		return RejectAssignmentCommand{}, err
	}
	return RejectAssignmentCommand{base}, nil
}

func (c RejectAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrRejectAssignmentCommandIsNotConstructed)
}

// AutoRejectAssignmentCommand is issued by the approval scheduler when the
// window expires without a decision.
type AutoRejectAssignmentCommand struct {
	shipmentDriverCommand
}

func NewAutoRejectAssignmentCommand(
	shipmentID kernel.UUID,
	tenantID kernel.TenantID,
	driverID kernel.UUID,
) (AutoRejectAssignmentCommand, error) {
	base, err := newShipmentDriverCommand(shipmentID, tenantID, driverID)
	if err != nil {
		return AutoRejectAssignmentCommand{}, err
	}
	return AutoRejectAssignmentCommand{base}, nil
}

func (c AutoRejectAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrAutoRejectAssignmentCommandIsNotConstructed)
}
