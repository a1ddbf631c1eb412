// Package http exposes the shipment lifecycle over REST and the tenant
// event stream over websocket.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"logistics/internal/adapters/in/http/api"
	"logistics/internal/core/application/usecases/commands"
	"logistics/internal/core/application/usecases/queries"
	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/simulation"
	"logistics/internal/core/domain/model/tracking"

	"github.com/labstack/echo/v4"
)

var _ api.ServerInterface = (*Server)(nil)

type CommandHandler[C any] interface {
	Handle(ctx context.Context, command C) error
}

type QueryHandler[Q, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

// Subscriptions attaches a websocket connection to a tenant's event stream.
type Subscriptions interface {
	Serve(w http.ResponseWriter, r *http.Request, tenantID kernel.TenantID) error
}

// Handlers groups the use cases the server delegates to.
type Handlers struct {
	CreateShipment       CommandHandler[commands.CreateShipmentCommand]
	AssignDriver         CommandHandler[commands.AssignDriverCommand]
	ApproveAssignment    CommandHandler[commands.ApproveAssignmentCommand]
	RejectAssignment     CommandHandler[commands.RejectAssignmentCommand]
	StartTransit         CommandHandler[commands.StartTransitCommand]
	DeliverShipment      CommandHandler[commands.DeliverShipmentCommand]
	CancelShipment       CommandHandler[commands.CancelShipmentCommand]
	UpdateDriverLocation CommandHandler[commands.UpdateDriverLocationCommand]

	GetShipment       QueryHandler[queries.GetShipmentQuery, queries.GetShipmentQueryResponse]
	GetShipmentRoute  QueryHandler[queries.GetShipmentRouteQuery, *simulation.RouteData]
	GetDriverLocation QueryHandler[queries.GetDriverLocationQuery, tracking.DriverLocation]
}

// Server implements api.ServerInterface on top of the application use cases.
type Server struct {
	h             Handlers
	subscriptions Subscriptions
	logger        *slog.Logger
}

func NewServer(h Handlers, subscriptions Subscriptions, logger *slog.Logger) *Server {
	return &Server{
		h:             h,
		subscriptions: subscriptions,
		logger:        logger.With("component", "http_server"),
	}
}

// CreateShipment handles POST /api/v1/tenants/{tenantId}/shipments.
func (s *Server) CreateShipment(ctx echo.Context, tenantId api.TenantId) error {
	var body api.NewShipment
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	shipmentID := kernel.NewUUID()
	cmd, err := commands.NewCreateShipmentCommand(shipmentID, kernel.TenantID(tenantId), body.PickupAddress, body.DeliveryAddress)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.CreateShipment.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, api.ShipmentCreated{Id: shipmentID.Google()})
}

// GetShipment handles GET /api/v1/tenants/{tenantId}/shipments/{shipmentId}.
func (s *Server) GetShipment(ctx echo.Context, tenantId api.TenantId, shipmentId api.ShipmentId) error {
	id, err := kernel.UUIDFromGoogle(shipmentId)
	if err != nil {
		return s.fail(ctx, err)
	}
	query, err := queries.NewGetShipmentQuery(id, kernel.TenantID(tenantId))
	if err != nil {
		return s.fail(ctx, err)
	}

	res, err := s.h.GetShipment.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	out := api.Shipment{
		Id:                res.ID.Google(),
		TenantId:          res.TenantID.String(),
		PickupAddress:     res.PickupAddress,
		DeliveryAddress:   res.DeliveryAddress,
		Status:            res.Status,
		PendingApproval:   res.PendingApproval,
		AllowedNextStates: res.AllowedNextStates,
		CreatedAt:         res.CreatedAt,
		AssignedAt:        res.AssignedAt,
		CancelledAt:       res.CancelledAt,
		DeliveredAt:       res.DeliveredAt,
	}
	if res.DriverID != nil {
		driverID := res.DriverID.Google()
		out.DriverId = &driverID
	}
	return ctx.JSON(http.StatusOK, out)
}

func (s *Server) AssignDriver(ctx echo.Context, tenantId api.TenantId, shipmentId api.ShipmentId) error {
	return handleDriverAction(s, ctx, tenantId, shipmentId, commands.NewAssignDriverCommand, s.h.AssignDriver)
}

func (s *Server) ApproveAssignment(ctx echo.Context, tenantId api.TenantId, shipmentId api.ShipmentId) error {
	return handleDriverAction(s, ctx, tenantId, shipmentId, commands.NewApproveAssignmentCommand, s.h.ApproveAssignment)
}

func (s *Server) RejectAssignment(ctx echo.Context, tenantId api.TenantId, shipmentId api.ShipmentId) error {
	return handleDriverAction(s, ctx, tenantId, shipmentId, commands.NewRejectAssignmentCommand, s.h.RejectAssignment)
}

func (s *Server) StartTransit(ctx echo.Context, tenantId api.TenantId, shipmentId api.ShipmentId) error {
	return handleDriverAction(s, ctx, tenantId, shipmentId, commands.NewStartTransitCommand, s.h.StartTransit)
}

func (s *Server) DeliverShipment(ctx echo.Context, tenantId api.TenantId, shipmentId api.ShipmentId) error {
	return handleDriverAction(s, ctx, tenantId, shipmentId, commands.NewDeliverShipmentCommand, s.h.DeliverShipment)
}

// CancelShipment handles POST .../shipments/{shipmentId}/cancel.
func (s *Server) CancelShipment(ctx echo.Context, tenantId api.TenantId, shipmentId api.ShipmentId) error {
	var body api.CancelRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	id, err := kernel.UUIDFromGoogle(shipmentId)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewCancelShipmentCommand(id, kernel.TenantID(tenantId), string(body.Actor))
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.CancelShipment.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetShipmentRoute handles GET .../shipments/{shipmentId}/route.
func (s *Server) GetShipmentRoute(ctx echo.Context, tenantId api.TenantId, shipmentId api.ShipmentId) error {
	id, err := kernel.UUIDFromGoogle(shipmentId)
	if err != nil {
		return s.fail(ctx, err)
	}
	query, err := queries.NewGetShipmentRouteQuery(id, kernel.TenantID(tenantId))
	if err != nil {
		return s.fail(ctx, err)
	}

	data, err := s.h.GetShipmentRoute.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	route := make([]api.Coordinates, len(data.Route.Points))
	for i, p := range data.Route.Points {
		route[i] = coordinates(p)
	}
	return ctx.JSON(http.StatusOK, api.ShipmentRoute{
		ShipmentId:    data.State.ShipmentID.Google(),
		DriverId:      data.State.DriverID.Google(),
		Phase:         data.State.Phase.String(),
		CurrentStep:   data.State.CurrentStep,
		TotalSteps:    data.State.TotalSteps,
		PickupPoint:   coordinates(data.State.PickupPoint),
		DeliveryPoint: coordinates(data.State.DeliveryPoint),
		Route:         route,
	})
}

// GetDriverLocation handles GET /api/v1/tenants/{tenantId}/drivers/{driverId}/location.
func (s *Server) GetDriverLocation(ctx echo.Context, tenantId api.TenantId, driverId api.DriverId) error {
	id, err := kernel.UUIDFromGoogle(driverId)
	if err != nil {
		return s.fail(ctx, err)
	}
	query, err := queries.NewGetDriverLocationQuery(id, kernel.TenantID(tenantId))
	if err != nil {
		return s.fail(ctx, err)
	}

	loc, err := s.h.GetDriverLocation.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, api.DriverLocation{
		DriverId:  loc.DriverID.Google(),
		Latitude:  loc.Point.Lat(),
		Longitude: loc.Point.Lng(),
		Timestamp: loc.Timestamp,
		Source:    string(loc.Source),
	})
}

// UpdateDriverLocation handles PUT /api/v1/tenants/{tenantId}/drivers/{driverId}/location.
func (s *Server) UpdateDriverLocation(ctx echo.Context, tenantId api.TenantId, driverId api.DriverId) error {
	var body api.Coordinates
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	id, err := kernel.UUIDFromGoogle(driverId)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewUpdateDriverLocationCommand(
		id, kernel.TenantID(tenantId), body.Latitude, body.Longitude, tracking.SourceREST,
	)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.UpdateDriverLocation.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Subscribe handles GET /ws/tenants/{tenantId}. The request blocks for the
// lifetime of the websocket connection.
func (s *Server) Subscribe(ctx echo.Context) error {
	tenantID, err := kernel.NewTenantID(ctx.Param("tenantId"))
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.subscriptions.Serve(ctx.Response(), ctx.Request(), tenantID); err != nil {
		s.logger.WarnContext(ctx.Request().Context(), "websocket upgrade failed", "tenant_id", tenantID, "error", err)
	}
	return nil
}

func handleDriverAction[C any](
	s *Server,
	ctx echo.Context,
	tenantId api.TenantId,
	shipmentId api.ShipmentId,
	newCommand func(kernel.UUID, kernel.TenantID, kernel.UUID) (C, error),
	handler CommandHandler[C],
) error {
	var body api.DriverAction
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	id, err := kernel.UUIDFromGoogle(shipmentId)
	if err != nil {
		return s.fail(ctx, err)
	}
	driverID, err := kernel.UUIDFromGoogle(body.DriverId)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := newCommand(id, kernel.TenantID(tenantId), driverID)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = handler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func coordinates(p kernel.RoutePoint) api.Coordinates {
	return api.Coordinates{Latitude: p.Lat(), Longitude: p.Lng()}
}
