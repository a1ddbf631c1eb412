package commands

import (
	"context"
	"errors"
	"log/slog"

	"logistics/internal/core/application/approval"
	"logistics/internal/core/ports"
	"logistics/internal/pkg/errs"
)

// AutoRejectAssignmentCommandHandler performs the rejection the approval
// scheduler asks for. It re-reads the shipment first: an assignment that
// was already approved, rejected, cancelled or handed to another driver is
// left alone, and so is one that a concurrent manual action updated first.
type AutoRejectAssignmentCommandHandler struct {
	uowFactory  UoWFactory
	broadcaster ports.Broadcaster
	logger      *slog.Logger
}

func NewAutoRejectAssignmentCommandHandler(
	uowFactory UoWFactory,
	broadcaster ports.Broadcaster,
	logger *slog.Logger,
) AutoRejectAssignmentCommandHandler {
	return AutoRejectAssignmentCommandHandler{
		uowFactory:  uowFactory,
		broadcaster: broadcaster,
		logger:      logger.With("component", "auto_reject_handler"),
	}
}

// HandleExpiredApproval lets the handler serve as the scheduler's
// approval.ExpiryHandler.
func (h AutoRejectAssignmentCommandHandler) HandleExpiredApproval(ctx context.Context, expiry approval.Expiry) error {
	command, err := NewAutoRejectAssignmentCommand(expiry.ShipmentID, expiry.TenantID, expiry.DriverID)
	if err != nil {
		return err
	}
	return h.Handle(ctx, command)
}

func (h AutoRejectAssignmentCommandHandler) Handle(ctx context.Context, command AutoRejectAssignmentCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	log := h.logger.With(
		"shipment_id", command.ShipmentID().String(),
		"driver_id", command.DriverID().String(),
		"tenant_id", command.TenantID().String(),
	)

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	s, err := uow.ShipmentRepository().Get(ctx, command.TenantID(), command.ShipmentID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		log.InfoContext(ctx, "Auto-reject skipped, shipment is gone")
		return nil
	}
	if err != nil {
		return err
	}

	if !s.HasPendingApprovalFor(command.DriverID()) {
		log.InfoContext(ctx, "Auto-reject skipped, assignment already resolved", "status", s.Status().String())
		return nil
	}

	err = rejectAssignment(ctx, uow, s, command.DriverID(), true)
	if errors.Is(err, errs.ErrVersionIsInvalid) {
		log.InfoContext(ctx, "Auto-reject skipped, shipment changed concurrently")
		return nil
	}
	if err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.broadcaster.Broadcast(ctx, s.TenantID(), statusUpdateEvent(s, true))
	log.InfoContext(ctx, "Assignment auto-rejected")
	return nil
}
