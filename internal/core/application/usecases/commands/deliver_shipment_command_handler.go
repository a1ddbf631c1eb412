package commands

import (
	"context"
	"log/slog"
	"time"

	"logistics/internal/core/ports"
)

type DeliverShipmentCommandHandler struct {
	uowFactory  ShipmentUoWFactory
	simulations Simulations
	broadcaster ports.Broadcaster
	logger      *slog.Logger
}

func NewDeliverShipmentCommandHandler(
	uowFactory ShipmentUoWFactory,
	simulations Simulations,
	broadcaster ports.Broadcaster,
	logger *slog.Logger,
) DeliverShipmentCommandHandler {
	return DeliverShipmentCommandHandler{
		uowFactory:  uowFactory,
		simulations: simulations,
		broadcaster: broadcaster,
		logger:      logger.With("component", "deliver_shipment_handler"),
	}
}

// Handle marks the shipment DELIVERED and stops whatever simulation still
// drives it.
func (h DeliverShipmentCommandHandler) Handle(ctx context.Context, command DeliverShipmentCommand) error {
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
	if err = s.Deliver(command.DriverID(), time.Now()); err != nil {
		return err
	}
	if err = repo.Update(ctx, s); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.simulations.StopByShipment(ctx, s.ID(), s.TenantID())
	h.broadcaster.Broadcast(ctx, s.TenantID(), statusUpdateEvent(s, false))

	h.logger.InfoContext(ctx, "Shipment delivered",
		"shipment_id", s.ID().String(),
		"driver_id", command.DriverID().String(),
		"tenant_id", s.TenantID().String(),
	)
	return nil
}
