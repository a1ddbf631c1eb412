package commands

import (
	"context"
	"log/slog"

	"logistics/internal/core/application/engine"
	"logistics/internal/core/domain/model/simulation"
	"logistics/internal/core/ports"
)

// StartTransitCommandHandler puts the shipment on the road and makes sure
// its simulation runs. Starting a simulation that already runs is a no-op
// in the engine, so approval followed by transit does not restart it.
type StartTransitCommandHandler struct {
	uowFactory  ShipmentUoWFactory
	simulations Simulations
	broadcaster ports.Broadcaster
	logger      *slog.Logger
}

func NewStartTransitCommandHandler(
	uowFactory ShipmentUoWFactory,
	simulations Simulations,
	broadcaster ports.Broadcaster,
	logger *slog.Logger,
) StartTransitCommandHandler {
	return StartTransitCommandHandler{
		uowFactory:  uowFactory,
		simulations: simulations,
		broadcaster: broadcaster,
		logger:      logger.With("component", "start_transit_handler"),
	}
}

func (h StartTransitCommandHandler) Handle(ctx context.Context, command StartTransitCommand) error {
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
	if err = s.StartTransit(command.DriverID()); err != nil {
		return err
	}
	if err = repo.Update(ctx, s); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.broadcaster.Broadcast(ctx, s.TenantID(), statusUpdateEvent(s, false))

	if err = h.simulations.Start(ctx, engine.StartRequest{
		ShipmentID:      s.ID(),
		DriverID:        command.DriverID(),
		TenantID:        s.TenantID(),
		PickupAddress:   s.PickupAddress(),
		DeliveryAddress: s.DeliveryAddress(),
		Phase:           simulation.PhaseToDelivery,
	}); err != nil {
		h.logger.WarnContext(ctx, "Simulation did not start for transit",
			"shipment_id", s.ID().String(),
			"driver_id", command.DriverID().String(),
			"error", err,
		)
	}
	return nil
}
