package commands

import (
	"context"
	"time"

	"logistics/internal/core/domain/model/shipment"
	"logistics/internal/core/ports"
)

type CreateShipmentCommandHandler struct {
	uowFactory  ShipmentUoWFactory
	broadcaster ports.Broadcaster
}

func NewCreateShipmentCommandHandler(
	uowFactory ShipmentUoWFactory,
	broadcaster ports.Broadcaster,
) CreateShipmentCommandHandler {
	return CreateShipmentCommandHandler{
		uowFactory:  uowFactory,
		broadcaster: broadcaster,
	}
}

// Handle stores the shipment in CREATED and announces it to the tenant.
func (h CreateShipmentCommandHandler) Handle(ctx context.Context, command CreateShipmentCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	s, err := shipment.NewShipment(
		command.ShipmentID(),
		command.TenantID(),
		command.PickupAddress(),
		command.DeliveryAddress(),
		time.Now(),
	)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.ShipmentRepository().Add(ctx, s); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.broadcaster.Broadcast(ctx, s.TenantID(), statusUpdateEvent(s, false))
	return nil
}
