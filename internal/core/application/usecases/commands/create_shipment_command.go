package commands

import (
	"errors"
	"strings"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/pkg/errs"
	"logistics/internal/pkg/guard"
)

var ErrCreateShipmentCommandIsNotConstructed = errors.New(
	"CreateShipmentCommand must be created via NewCreateShipmentCommand constructor",
)

// CreateShipmentCommand registers a new shipment between two addresses.
type CreateShipmentCommand struct {
	shipmentID      kernel.UUID
	tenantID        kernel.TenantID
	pickupAddress   string
	deliveryAddress string

	guard guard.ConstructorGuard
}

func NewCreateShipmentCommand(
	shipmentID kernel.UUID,
	tenantID kernel.TenantID,
	pickupAddress, deliveryAddress string,
) (CreateShipmentCommand, error) {
	var errPickup, errDelivery error
	if strings.TrimSpace(pickupAddress) == "" {
		errPickup = errs.NewValueIsRequiredError("pickupAddress")
	}
	if strings.TrimSpace(deliveryAddress) == "" {
		errDelivery = errs.NewValueIsRequiredError("deliveryAddress")
	}
	if err := errors.Join(shipmentID.Validate(), tenantID.Validate(), errPickup, errDelivery); err != nil {
		return CreateShipmentCommand{}, err
	}

	return CreateShipmentCommand{
		shipmentID:      shipmentID,
		tenantID:        tenantID,
		pickupAddress:   pickupAddress,
		deliveryAddress: deliveryAddress,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (c CreateShipmentCommand) ShipmentID() kernel.UUID { return c.shipmentID }
func (c CreateShipmentCommand) TenantID() kernel.TenantID { return c.tenantID }
func (c CreateShipmentCommand) PickupAddress() string { return c.pickupAddress }
func (c CreateShipmentCommand) DeliveryAddress() string { return c.deliveryAddress }

func (c CreateShipmentCommand) Validate() error {
	return c.guard.Validate(ErrCreateShipmentCommandIsNotConstructed)
}
