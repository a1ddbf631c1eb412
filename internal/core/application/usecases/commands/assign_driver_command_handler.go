package commands

import (
	"context"
	"log/slog"
	"time"

	"logistics/internal/core/application/approval"
	"logistics/internal/core/domain/model/notification"
	"logistics/internal/core/ports"
)

// AssignDriverCommandHandler assigns the driver, records a
// SHIPMENT_ASSIGNED notification and arms the auto-reject timer.
type AssignDriverCommandHandler struct {
	uowFactory  UoWFactory
	scheduler   AutoRejectScheduler
	broadcaster ports.Broadcaster
	logger      *slog.Logger
}

func NewAssignDriverCommandHandler(
	uowFactory UoWFactory,
	scheduler AutoRejectScheduler,
	broadcaster ports.Broadcaster,
	logger *slog.Logger,
) AssignDriverCommandHandler {
	return AssignDriverCommandHandler{
		uowFactory:  uowFactory,
		scheduler:   scheduler,
		broadcaster: broadcaster,
		logger:      logger.With("component", "assign_driver_handler"),
	}
}

func (h AssignDriverCommandHandler) Handle(ctx context.Context, command AssignDriverCommand) error {
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

	repo := uow.ShipmentRepository()
	s, err := repo.Get(ctx, command.TenantID(), command.ShipmentID())
	if err != nil {
		return err
	}

	now := time.Now()
	if err = s.Assign(command.DriverID(), now); err != nil {
		return err
	}
	if err = repo.Update(ctx, s); err != nil {
		return err
	}

	n, err := notification.NewShipmentAssigned(s.TenantID(), command.DriverID(), s.ID(), now)
	if err != nil {
		return err
	}
	if err = uow.NotificationRepository().Add(ctx, n); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.scheduler.ScheduleAutoReject(ctx, approval.Expiry{
		ShipmentID: s.ID(),
		DriverID:   command.DriverID(),
		TenantID:   s.TenantID(),
		AssignedAt: *s.AssignedAt(),
	})
	h.broadcaster.Broadcast(ctx, s.TenantID(), statusUpdateEvent(s, false))

	h.logger.InfoContext(ctx, "Driver assigned",
		"shipment_id", s.ID().String(),
		"driver_id", command.DriverID().String(),
		"tenant_id", s.TenantID().String(),
	)
	return nil
}
