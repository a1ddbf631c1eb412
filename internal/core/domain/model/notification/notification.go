package notification

import (
	"errors"
	"fmt"
	"time"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/pkg/errs"
)

var ErrNotificationIsNotConstructed = errors.New("Notification must be created via a constructor")

// Type classifies a notification.
type Type string

const (
	TypeShipmentAssigned Type = "SHIPMENT_ASSIGNED"
	TypeShipmentRejected Type = "SHIPMENT_REJECTED"
)

// Notification is a message addressed to a driver or to the tenant's
// dispatchers about a shipment.
type Notification struct {
	id            kernel.UUID
	tenantID      kernel.TenantID
	recipientID   kernel.UUID
	shipmentID    kernel.UUID
	kind          Type
	autoRejected  bool
	message       string
	createdAt     time.Time
	isConstructed bool
}

// NewShipmentAssigned notifies driverID that shipmentID awaits approval.
func NewShipmentAssigned(
	tenantID kernel.TenantID,
	driverID, shipmentID kernel.UUID,
	now time.Time,
) (*Notification, error) {
	return newNotification(tenantID, driverID, shipmentID, TypeShipmentAssigned, false,
		fmt.Sprintf("Shipment %s has been assigned to you and awaits your approval", shipmentID), now)
}

// NewShipmentRejected records that driverID no longer holds shipmentID.
func NewShipmentRejected(
	tenantID kernel.TenantID,
	driverID, shipmentID kernel.UUID,
	autoRejected bool,
	now time.Time,
) (*Notification, error) {
	msg := fmt.Sprintf("Assignment of shipment %s was rejected", shipmentID)
	if autoRejected {
		msg = fmt.Sprintf("Assignment of shipment %s was rejected automatically after the approval window expired", shipmentID)
	}
	return newNotification(tenantID, driverID, shipmentID, TypeShipmentRejected, autoRejected, msg, now)
}

func newNotification(
	tenantID kernel.TenantID,
	recipientID, shipmentID kernel.UUID,
	kind Type,
	autoRejected bool,
	message string,
	now time.Time,
) (*Notification, error) {
	if err := errors.Join(tenantID.Validate(), recipientID.Validate(), shipmentID.Validate()); err != nil {
		return nil, err
	}
	return &Notification{
		id:            kernel.NewUUID(),
		tenantID:      tenantID,
		recipientID:   recipientID,
		shipmentID:    shipmentID,
		kind:          kind,
		autoRejected:  autoRejected,
		message:       message,
		createdAt:     now.UTC(),
		isConstructed: true,
	}, nil
}

// RestoreNotification rebuilds a stored notification.
func RestoreNotification(
	id kernel.UUID,
	tenantID kernel.TenantID,
	recipientID, shipmentID kernel.UUID,
	kind Type,
	autoRejected bool,
	message string,
	createdAt time.Time,
) (*Notification, error) {
	if kind != TypeShipmentAssigned && kind != TypeShipmentRejected {
		return nil, errs.NewValueIsInvalidErrorWithCause("type", fmt.Errorf("%q is not a notification type", kind))
	}
	n, err := newNotification(tenantID, recipientID, shipmentID, kind, autoRejected, message, createdAt)
	if err != nil {
		return nil, err
	}
	if err = id.Validate(); err != nil {
		return nil, err
	}
	n.id = id
	return n, nil
}

func (n *Notification) Validate() error {
	if n == nil || !n.isConstructed {
		return ErrNotificationIsNotConstructed
	}
	return nil
}

func (n *Notification) ID() kernel.UUID { return n.id }
func (n *Notification) TenantID() kernel.TenantID { return n.tenantID }
func (n *Notification) RecipientID() kernel.UUID { return n.recipientID }
func (n *Notification) ShipmentID() kernel.UUID { return n.shipmentID }
func (n *Notification) Type() Type { return n.kind }
func (n *Notification) AutoRejected() bool { return n.autoRejected }
func (n *Notification) Message() string { return n.message }
func (n *Notification) CreatedAt() time.Time { return n.createdAt }
