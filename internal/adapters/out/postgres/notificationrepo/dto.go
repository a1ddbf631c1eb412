package notificationrepo

import (
	"time"

	"logistics/internal/core/domain/model/notification"

	"github.com/google/uuid"
)

type NotificationDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID     string    `gorm:"type:varchar(64);not null;index"`
	RecipientID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ShipmentID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Type         string    `gorm:"type:varchar(32);not null"`
	AutoRejected bool      `gorm:"not null;default:false"`
	Message      string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (NotificationDTO) TableName() string {
	return "notifications"
}

func fromDomain(n *notification.Notification) NotificationDTO {
	return NotificationDTO{
		ID:           n.ID().Google(),
		TenantID:     n.TenantID().String(),
		RecipientID:  n.RecipientID().Google(),
		ShipmentID:   n.ShipmentID().Google(),
		Type:         string(n.Type()),
		AutoRejected: n.AutoRejected(),
		Message:      n.Message(),
		CreatedAt:    n.CreatedAt(),
	}
}
