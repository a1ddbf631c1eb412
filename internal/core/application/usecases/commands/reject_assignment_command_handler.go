package commands

import (
	"context"
	"log/slog"
	"time"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/notification"
	"logistics/internal/core/domain/model/shipment"
	"logistics/internal/core/ports"
)

// RejectAssignmentCommandHandler returns the shipment to CREATED, records
// a SHIPMENT_REJECTED notification and disarms the auto-reject timer.
type RejectAssignmentCommandHandler struct {
	uowFactory  UoWFactory
	scheduler   AutoRejectScheduler
	broadcaster ports.Broadcaster
	logger      *slog.Logger
}

func NewRejectAssignmentCommandHandler(
	uowFactory UoWFactory,
	scheduler AutoRejectScheduler,
	broadcaster ports.Broadcaster,
	logger *slog.Logger,
) RejectAssignmentCommandHandler {
	return RejectAssignmentCommandHandler{
		uowFactory:  uowFactory,
		scheduler:   scheduler,
		broadcaster: broadcaster,
		logger:      logger.With("component", "reject_assignment_handler"),
	}
}

func (h RejectAssignmentCommandHandler) Handle(ctx context.Context, command RejectAssignmentCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	s, err := uow.ShipmentRepository().Get(ctx, command.TenantID(), command.ShipmentID())
	if err != nil {
		return err
	}
	if err = rejectAssignment(ctx, uow, s, command.DriverID(), false); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.scheduler.CancelAutoReject(ctx, s.ID())
	h.broadcaster.Broadcast(ctx, s.TenantID(), statusUpdateEvent(s, false))

	h.logger.InfoContext(ctx, "Assignment rejected",
		"shipment_id", s.ID().String(),
		"driver_id", command.DriverID().String(),
		"tenant_id", s.TenantID().String(),
	)
	return nil
}

// rejectAssignment applies a manual or automatic rejection inside uow.
func rejectAssignment(
	ctx context.Context,
	uow UoW,
	s *shipment.Shipment,
	driverID kernel.UUID,
	autoRejected bool,
) error {
	if err := s.Reject(driverID); err != nil {
		return err
	}
	if err := uow.ShipmentRepository().Update(ctx, s); err != nil {
		return err
	}

	n, err := notification.NewShipmentRejected(s.TenantID(), driverID, s.ID(), autoRejected, time.Now())
	if err != nil {
		return err
	}
	return uow.NotificationRepository().Add(ctx, n)
}
