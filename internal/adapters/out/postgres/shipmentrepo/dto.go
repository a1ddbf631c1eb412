package shipmentrepo

import (
	"time"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/shipment"

	"github.com/google/uuid"
)

type ShipmentDTO struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID        string     `gorm:"type:varchar(64);not null;index"`
	PickupAddress   string     `gorm:"not null"`
	DeliveryAddress string     `gorm:"not null"`
	DriverID        *uuid.UUID `gorm:"type:uuid;index"`
	Status          string     `gorm:"type:varchar(32);not null;index"`
	PendingApproval bool       `gorm:"not null;default:false"`
	CreatedAt       time.Time  `gorm:"not null"`
	AssignedAt      *time.Time
	CancelledAt     *time.Time
	DeliveredAt     *time.Time
	Version         int `gorm:"not null;default:0"`
}

func (ShipmentDTO) TableName() string {
	return "shipments"
}

func fromDomain(s *shipment.Shipment) ShipmentDTO {
	var driverID *uuid.UUID
	if id := s.DriverID(); id != nil {
		raw := id.Google()
		driverID = &raw
	}

	return ShipmentDTO{
		ID:              s.ID().Google(),
		TenantID:        s.TenantID().String(),
		PickupAddress:   s.PickupAddress(),
		DeliveryAddress: s.DeliveryAddress(),
		DriverID:        driverID,
		Status:          s.Status().String(),
		PendingApproval: s.PendingApproval(),
		CreatedAt:       s.CreatedAt(),
		AssignedAt:      s.AssignedAt(),
		CancelledAt:     s.CancelledAt(),
		DeliveredAt:     s.DeliveredAt(),
		Version:         s.Version(),
	}
}

// updates lists every mutable column so zero values (a cleared driver, a
// closed approval) are written too.
func (dto ShipmentDTO) updates() map[string]any {
	return map[string]any{
		"driver_id":        dto.DriverID,
		"status":           dto.Status,
		"pending_approval": dto.PendingApproval,
		"assigned_at":      dto.AssignedAt,
		"cancelled_at":     dto.CancelledAt,
		"delivered_at":     dto.DeliveredAt,
	}
}

func toDomain(dto ShipmentDTO) (*shipment.Shipment, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}

	var driverID *kernel.UUID
	if dto.DriverID != nil {
		dID, driverErr := kernel.UUIDFromGoogle(*dto.DriverID)
		if driverErr != nil {
			return nil, driverErr
		}
		driverID = &dID
	}

	status, err := shipment.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	return shipment.RestoreShipment(shipment.Snapshot{
		ID:              id,
		TenantID:        kernel.TenantID(dto.TenantID),
		PickupAddress:   dto.PickupAddress,
		DeliveryAddress: dto.DeliveryAddress,
		DriverID:        driverID,
		Status:          status,
		PendingApproval: dto.PendingApproval,
		CreatedAt:       dto.CreatedAt,
		AssignedAt:      dto.AssignedAt,
		CancelledAt:     dto.CancelledAt,
		DeliveredAt:     dto.DeliveredAt,
		Version:         dto.Version,
	})
}
