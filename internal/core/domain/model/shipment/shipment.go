package shipment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/pkg/errs"
)

var (
	ErrShipmentIsNotConstructed = errors.New("Shipment must be created via NewShipment or RestoreShipment")

	// ErrNoPendingApproval is returned by approve/reject when the shipment is
	// not ASSIGNED with an open approval.
	ErrNoPendingApproval = errors.New("shipment has no pending approval")

	// ErrApprovalPending is returned when a driver tries to start transit
	// before accepting the assignment.
	ErrApprovalPending = errors.New("assignment is awaiting driver approval")

	ErrDriverMismatch = errors.New("driver is not assigned to this shipment")
)

// Actor identifies who cancels a shipment.
type Actor string

const (
	ActorCustomer Actor = "CUSTOMER"
	ActorDriver   Actor = "DRIVER"
)

// ParseActor validates a cancellation actor name.
func ParseActor(s string) (Actor, error) {
	switch a := Actor(strings.ToUpper(strings.TrimSpace(s))); a {
	case ActorCustomer, ActorDriver:
		return a, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("actor", fmt.Errorf("%q is not CUSTOMER or DRIVER", s))
	}
}

func (a Actor) cancelStatus() Status {
	if a == ActorDriver {
		return CancelByDriver
	}
	return CancelByCustomer
}

// Shipment is the aggregate root of the lifecycle.
//
// Invariants:
//   - pendingApproval is true only while status is ASSIGNED
//   - ASSIGNED, APPROVED and IN_TRANSIT shipments always have a driver
//   - version increases by one with every persisted change
type Shipment struct {
	id              kernel.UUID
	tenantID        kernel.TenantID
	pickupAddress   string
	deliveryAddress string
	driverID        *kernel.UUID
	status          Status
	pendingApproval bool
	createdAt       time.Time
	assignedAt      *time.Time
	cancelledAt     *time.Time
	deliveredAt     *time.Time
	version         int
	isConstructed   bool
}

// NewShipment creates a shipment in CREATED.
func NewShipment(
	id kernel.UUID,
	tenantID kernel.TenantID,
	pickupAddress, deliveryAddress string,
	now time.Time,
) (*Shipment, error) {
	s := &Shipment{
		status:        Created,
		createdAt:     now.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		s.setID(id),
		s.setTenantID(tenantID),
		s.setAddresses(pickupAddress, deliveryAddress),
	); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot carries the persisted fields of a shipment.
type Snapshot struct {
	ID              kernel.UUID
	TenantID        kernel.TenantID
	PickupAddress   string
	DeliveryAddress string
	DriverID        *kernel.UUID
	Status          Status
	PendingApproval bool
	CreatedAt       time.Time
	AssignedAt      *time.Time
	CancelledAt     *time.Time
	DeliveredAt     *time.Time
	Version         int
}

// RestoreShipment rebuilds a shipment from storage and re-checks its invariants.
func RestoreShipment(snap Snapshot) (*Shipment, error) {
	s := &Shipment{
		driverID:        snap.DriverID,
		status:          snap.Status,
		pendingApproval: snap.PendingApproval,
		createdAt:       snap.CreatedAt,
		assignedAt:      snap.AssignedAt,
		cancelledAt:     snap.CancelledAt,
		deliveredAt:     snap.DeliveredAt,
		version:         snap.Version,
		isConstructed:   true,
	}

	if err := errors.Join(
		s.setID(snap.ID),
		s.setTenantID(snap.TenantID),
		s.setAddresses(snap.PickupAddress, snap.DeliveryAddress),
		snap.Status.Validate(),
		s.validateDriverConsistency(),
	); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Shipment) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrShipmentIsNotConstructed
	}
	return nil
}

func (s *Shipment) ID() kernel.UUID { return s.id }
func (s *Shipment) TenantID() kernel.TenantID { return s.tenantID }
func (s *Shipment) PickupAddress() string { return s.pickupAddress }
func (s *Shipment) DeliveryAddress() string { return s.deliveryAddress }
func (s *Shipment) DriverID() *kernel.UUID { return s.driverID }
func (s *Shipment) Status() Status { return s.status }
func (s *Shipment) PendingApproval() bool { return s.pendingApproval }
func (s *Shipment) CreatedAt() time.Time { return s.createdAt }
func (s *Shipment) AssignedAt() *time.Time { return s.assignedAt }
func (s *Shipment) CancelledAt() *time.Time { return s.cancelledAt }
func (s *Shipment) DeliveredAt() *time.Time { return s.deliveredAt }
func (s *Shipment) Version() int { return s.version }
func (s *Shipment) AllowedNextStates() []Status { return ValidNextStates(s.status) }

func (s *Shipment) IsAssignedTo(d kernel.UUID) bool {
	return s.driverID != nil && s.driverID.IsEqual(d)
}

// Snapshot returns the persisted view of the shipment.
func (s *Shipment) Snapshot() Snapshot {
	return Snapshot{
		ID:              s.id,
		TenantID:        s.tenantID,
		PickupAddress:   s.pickupAddress,
		DeliveryAddress: s.deliveryAddress,
		DriverID:        s.driverID,
		Status:          s.status,
		PendingApproval: s.pendingApproval,
		CreatedAt:       s.createdAt,
		AssignedAt:      s.assignedAt,
		CancelledAt:     s.cancelledAt,
		DeliveredAt:     s.deliveredAt,
		Version:         s.version,
	}
}

// Assign hands the shipment to a driver and opens the approval window.
// Allowed from CREATED and from either cancelled state (reassignment).
func (s *Shipment) Assign(driverID kernel.UUID, now time.Time) error {
	if err := driverID.Validate(); err != nil {
		return err
	}
	if err := ValidateTransition(s.status, Assigned); err != nil {
		return err
	}

	at := now.UTC()
	s.status = Assigned
	s.driverID = &driverID
	s.pendingApproval = true
	s.assignedAt = &at
	return nil
}

// HasPendingApprovalFor reports whether driverID may approve or reject.
func (s *Shipment) HasPendingApprovalFor(driverID kernel.UUID) bool {
	return s.status == Assigned && s.pendingApproval && s.IsAssignedTo(driverID)
}

// Approve closes the approval window in favour of the driver.
func (s *Shipment) Approve(driverID kernel.UUID) error {
	if err := s.checkApprovalGate(driverID); err != nil {
		return err
	}
	s.status = Approved
	s.pendingApproval = false
	return nil
}

// Reject returns the shipment to CREATED and releases the driver. Used for
// both manual and automatic rejection.
func (s *Shipment) Reject(driverID kernel.UUID) error {
	if err := s.checkApprovalGate(driverID); err != nil {
		return err
	}
	s.status = Created
	s.pendingApproval = false
	s.driverID = nil
	s.assignedAt = nil
	return nil
}

// StartTransit moves an accepted shipment on the road.
func (s *Shipment) StartTransit(driverID kernel.UUID) error {
	if err := ValidateTransition(s.status, InTransit); err != nil {
		return err
	}
	if s.pendingApproval {
		return fmt.Errorf("%w: %w", errs.ErrInvalidState, ErrApprovalPending)
	}
	if !s.IsAssignedTo(driverID) {
		return errs.NewValueIsInvalidErrorWithCause("driverID", ErrDriverMismatch)
	}
	s.status = InTransit
	return nil
}

// Deliver completes the shipment. DELIVERED is terminal.
func (s *Shipment) Deliver(driverID kernel.UUID, now time.Time) error {
	if err := ValidateTransition(s.status, Delivered); err != nil {
		return err
	}
	if !s.IsAssignedTo(driverID) {
		return errs.NewValueIsInvalidErrorWithCause("driverID", ErrDriverMismatch)
	}
	at := now.UTC()
	s.status = Delivered
	s.deliveredAt = &at
	return nil
}

// Cancel moves the shipment to the cancel status matching actor. A driver
// cancellation releases the driver so the shipment can be reassigned.
func (s *Shipment) Cancel(actor Actor, now time.Time) error {
	target := actor.cancelStatus()
	if err := ValidateTransition(s.status, target); err != nil {
		return err
	}
	at := now.UTC()
	s.status = target
	s.pendingApproval = false
	s.cancelledAt = &at
	if actor == ActorDriver {
		s.driverID = nil
	}
	return nil
}

func (s *Shipment) checkApprovalGate(driverID kernel.UUID) error {
	if s.status != Assigned || !s.pendingApproval {
		return fmt.Errorf("%w: %w (status %s)", errs.ErrInvalidState, ErrNoPendingApproval, s.status)
	}
	if !s.IsAssignedTo(driverID) {
		return errs.NewValueIsInvalidErrorWithCause("driverID", ErrDriverMismatch)
	}
	return nil
}

func (s *Shipment) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.id = id
	return nil
}

func (s *Shipment) setTenantID(tenantID kernel.TenantID) error {
	if err := tenantID.Validate(); err != nil {
		return err
	}
	s.tenantID = tenantID
	return nil
}

func (s *Shipment) setAddresses(pickup, delivery string) error {
	pickup = strings.TrimSpace(pickup)
	delivery = strings.TrimSpace(delivery)

	var errPickup, errDelivery error
	if pickup == "" {
		errPickup = errs.NewValueIsRequiredError("pickupAddress")
	}
	if delivery == "" {
		errDelivery = errs.NewValueIsRequiredError("deliveryAddress")
	}
	if err := errors.Join(errPickup, errDelivery); err != nil {
		return err
	}
	s.pickupAddress = pickup
	s.deliveryAddress = delivery
	return nil
}

func (s *Shipment) validateDriverConsistency() error {
	if s.pendingApproval && s.status != Assigned {
		return errs.NewValueIsInvalidErrorWithCause("pendingApproval",
			fmt.Errorf("pending approval is only valid for %s, got %s", Assigned, s.status))
	}
	switch s.status { //nolint:exhaustive // remaining statuses may or may not carry a driver
	case Assigned, Approved, InTransit:
		if s.driverID == nil {
			return errs.NewValueIsRequiredErrorWithCause("driverID",
				fmt.Errorf("%s shipment must have a driver", s.status))
		}
	}
	return nil
}
