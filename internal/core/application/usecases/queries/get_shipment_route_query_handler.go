package queries

import (
	"context"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/simulation"
)

// RouteReader is the lookup side of the simulation engine.
type RouteReader interface {
	GetRouteDataByShipment(
		ctx context.Context,
		shipmentID kernel.UUID,
		tenantID kernel.TenantID,
	) (*simulation.RouteData, error)
}

type GetShipmentRouteQueryHandler struct {
	routes RouteReader
}

func NewGetShipmentRouteQueryHandler(routes RouteReader) GetShipmentRouteQueryHandler {
	return GetShipmentRouteQueryHandler{routes: routes}
}

// Handle returns *errs.ObjectNotFoundError when no simulation, running or
// persisted, belongs to the shipment.
func (h GetShipmentRouteQueryHandler) Handle(
	ctx context.Context,
	query GetShipmentRouteQuery,
) (*simulation.RouteData, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.routes.GetRouteDataByShipment(ctx, query.ShipmentID(), query.TenantID())
}
