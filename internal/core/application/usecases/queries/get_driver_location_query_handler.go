package queries

import (
	"context"

	"logistics/internal/core/domain/model/tracking"
	"logistics/internal/core/ports"
	"logistics/internal/pkg/errs"
)

type GetDriverLocationQueryHandler struct {
	locations ports.LocationStore
}

func NewGetDriverLocationQueryHandler(locations ports.LocationStore) GetDriverLocationQueryHandler {
	return GetDriverLocationQueryHandler{locations: locations}
}

func (h GetDriverLocationQueryHandler) Handle(
	ctx context.Context,
	query GetDriverLocationQuery,
) (tracking.DriverLocation, error) {
	if err := query.Validate(); err != nil {
		return tracking.DriverLocation{}, err
	}

	loc, err := h.locations.GetDriverLocation(ctx, query.TenantID(), query.DriverID())
	if err != nil {
		return tracking.DriverLocation{}, err
	}
	if loc == nil {
		return tracking.DriverLocation{}, errs.NewObjectNotFoundError("driverID", query.DriverID().String())
	}
	return *loc, nil
}
