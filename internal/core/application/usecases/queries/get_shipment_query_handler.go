package queries

import (
	"context"
	"database/sql"
	"errors"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/shipment"
	"logistics/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetShipmentQueryHandler struct {
	db *gorm.DB
}

func NewGetShipmentQueryHandler(db *gorm.DB) GetShipmentQueryHandler {
	return GetShipmentQueryHandler{db: db}
}

func (h GetShipmentQueryHandler) Handle(ctx context.Context, query GetShipmentQuery) (GetShipmentQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetShipmentQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			pickup_address,
			delivery_address,
			driver_id,
			status,
			pending_approval,
			created_at,
			assigned_at,
			cancelled_at,
			delivered_at
		FROM shipments
		WHERE id = ? AND tenant_id = ?
	`, query.ShipmentID().Google(), query.TenantID().String()).Row()

	var (
		resp     GetShipmentQueryResponse
		id       uuid.UUID
		driverID *uuid.UUID
	)
	err := row.Scan(
		&id,
		&resp.PickupAddress,
		&resp.DeliveryAddress,
		&driverID,
		&resp.Status,
		&resp.PendingApproval,
		&resp.CreatedAt,
		&resp.AssignedAt,
		&resp.CancelledAt,
		&resp.DeliveredAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetShipmentQueryResponse{}, errs.NewObjectNotFoundError("shipmentID", query.ShipmentID().String())
	}
	if err != nil {
		return GetShipmentQueryResponse{}, err
	}

	if resp.ID, err = kernel.UUIDFromGoogle(id); err != nil {
		return GetShipmentQueryResponse{}, err
	}
	if driverID != nil {
		d, driverErr := kernel.UUIDFromGoogle(*driverID)
		if driverErr != nil {
			return GetShipmentQueryResponse{}, driverErr
		}
		resp.DriverID = &d
	}
	resp.TenantID = query.TenantID()

	status, err := shipment.ParseStatus(resp.Status)
	if err != nil {
		return GetShipmentQueryResponse{}, err
	}
	resp.AllowedNextStates = make([]string, 0)
	for _, next := range shipment.ValidNextStates(status) {
		resp.AllowedNextStates = append(resp.AllowedNextStates, next.String())
	}

	return resp, nil
}
