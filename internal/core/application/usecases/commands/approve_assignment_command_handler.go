package commands

import (
	"context"
	"log/slog"

	"logistics/internal/core/application/engine"
	"logistics/internal/core/domain/model/simulation"
	"logistics/internal/core/ports"
)

// ApproveAssignmentCommandHandler accepts the assignment, disarms the
// auto-reject timer and starts the driver's simulation from pickup to
// delivery. A simulation that cannot start leaves the approval in place.
type ApproveAssignmentCommandHandler struct {
	uowFactory  ShipmentUoWFactory
	scheduler   AutoRejectScheduler
	simulations Simulations
	broadcaster ports.Broadcaster
	logger      *slog.Logger
}

func NewApproveAssignmentCommandHandler(
	uowFactory ShipmentUoWFactory,
	scheduler AutoRejectScheduler,
	simulations Simulations,
	broadcaster ports.Broadcaster,
	logger *slog.Logger,
) ApproveAssignmentCommandHandler {
	return ApproveAssignmentCommandHandler{
		uowFactory:  uowFactory,
		scheduler:   scheduler,
		simulations: simulations,
		broadcaster: broadcaster,
		logger:      logger.With("component", "approve_assignment_handler"),
	}
}

func (h ApproveAssignmentCommandHandler) Handle(ctx context.Context, command ApproveAssignmentCommand) error {
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
	if err = s.Approve(command.DriverID()); err != nil {
		return err
	}
	if err = repo.Update(ctx, s); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.scheduler.CancelAutoReject(ctx, s.ID())
	h.broadcaster.Broadcast(ctx, s.TenantID(), statusUpdateEvent(s, false))

	log := h.logger.With(
		"shipment_id", s.ID().String(),
		"driver_id", command.DriverID().String(),
		"tenant_id", s.TenantID().String(),
	)
	if err = h.simulations.Start(ctx, engine.StartRequest{
		ShipmentID:      s.ID(),
		DriverID:        command.DriverID(),
		TenantID:        s.TenantID(),
		PickupAddress:   s.PickupAddress(),
		DeliveryAddress: s.DeliveryAddress(),
		Phase:           simulation.PhaseToDelivery,
	}); err != nil {
		log.WarnContext(ctx, "Simulation did not start after approval", "error", err)
	}

	log.InfoContext(ctx, "Assignment approved")
	return nil
}
