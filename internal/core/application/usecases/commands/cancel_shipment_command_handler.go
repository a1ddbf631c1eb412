package commands

import (
	"context"
	"log/slog"
	"time"

	"logistics/internal/core/ports"
)

// CancelShipmentCommandHandler cancels the shipment, disarms a pending
// auto-reject and stops the shipment's simulation.
type CancelShipmentCommandHandler struct {
	uowFactory  ShipmentUoWFactory
	scheduler   AutoRejectScheduler
	simulations Simulations
	broadcaster ports.Broadcaster
	logger      *slog.Logger
}

func NewCancelShipmentCommandHandler(
	uowFactory ShipmentUoWFactory,
	scheduler AutoRejectScheduler,
	simulations Simulations,
	broadcaster ports.Broadcaster,
	logger *slog.Logger,
) CancelShipmentCommandHandler {
	return CancelShipmentCommandHandler{
		uowFactory:  uowFactory,
		scheduler:   scheduler,
		simulations: simulations,
		broadcaster: broadcaster,
		logger:      logger.With("component", "cancel_shipment_handler"),
	}
}

func (h CancelShipmentCommandHandler) Handle(ctx context.Context, command CancelShipmentCommand) error {
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
	if err = s.Cancel(command.Actor(), time.Now()); err != nil {
		return err
	}
	if err = repo.Update(ctx, s); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.scheduler.CancelAutoReject(ctx, s.ID())
	h.simulations.StopByShipment(ctx, s.ID(), s.TenantID())
	h.broadcaster.Broadcast(ctx, s.TenantID(), statusUpdateEvent(s, false))

	h.logger.InfoContext(ctx, "Shipment cancelled",
		"shipment_id", s.ID().String(),
		"tenant_id", s.TenantID().String(),
		"status", s.Status().String(),
	)
	return nil
}
