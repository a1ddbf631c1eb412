package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface is implemented by the HTTP adapter, one method per
// operationId of the OpenAPI document.
type ServerInterface interface {
	CreateShipment(ctx echo.Context, tenantId TenantId) error
	GetShipment(ctx echo.Context, tenantId TenantId, shipmentId ShipmentId) error
	AssignDriver(ctx echo.Context, tenantId TenantId, shipmentId ShipmentId) error
	ApproveAssignment(ctx echo.Context, tenantId TenantId, shipmentId ShipmentId) error
	RejectAssignment(ctx echo.Context, tenantId TenantId, shipmentId ShipmentId) error
	StartTransit(ctx echo.Context, tenantId TenantId, shipmentId ShipmentId) error
	DeliverShipment(ctx echo.Context, tenantId TenantId, shipmentId ShipmentId) error
	CancelShipment(ctx echo.Context, tenantId TenantId, shipmentId ShipmentId) error
	GetShipmentRoute(ctx echo.Context, tenantId TenantId, shipmentId ShipmentId) error
	GetDriverLocation(ctx echo.Context, tenantId TenantId, driverId DriverId) error
	UpdateDriverLocation(ctx echo.Context, tenantId TenantId, driverId DriverId) error
}

// ServerInterfaceWrapper converts echo contexts to typed parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

type shipmentHandler func(ctx echo.Context, tenantId TenantId, shipmentId ShipmentId) error

type driverHandler func(ctx echo.Context, tenantId TenantId, driverId DriverId) error

func (w *ServerInterfaceWrapper) CreateShipment(ctx echo.Context) error {
	tenantId, err := bindTenantId(ctx)
	if err != nil {
		return err
	}
	return w.Handler.CreateShipment(ctx, tenantId)
}

func (w *ServerInterfaceWrapper) shipment(h shipmentHandler) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		tenantId, err := bindTenantId(ctx)
		if err != nil {
			return err
		}
		var shipmentId ShipmentId
		if err = bindPathParam(ctx, "shipmentId", &shipmentId); err != nil {
			return err
		}
		return h(ctx, tenantId, shipmentId)
	}
}

func (w *ServerInterfaceWrapper) driver(h driverHandler) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		tenantId, err := bindTenantId(ctx)
		if err != nil {
			return err
		}
		var driverId DriverId
		if err = bindPathParam(ctx, "driverId", &driverId); err != nil {
			return err
		}
		return h(ctx, tenantId, driverId)
	}
}

func bindTenantId(ctx echo.Context) (TenantId, error) {
	var tenantId TenantId
	err := bindPathParam(ctx, "tenantId", &tenantId)
	return tenantId, err
}

func bindPathParam(ctx echo.Context, name string, dest any) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return nil
}

// EchoRouter is satisfied by *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	w := &ServerInterfaceWrapper{Handler: si}

	shipments := baseURL + "/api/v1/tenants/:tenantId/shipments"
	router.POST(shipments, w.CreateShipment)
	router.GET(shipments+"/:shipmentId", w.shipment(si.GetShipment))
	router.POST(shipments+"/:shipmentId/assign", w.shipment(si.AssignDriver))
	router.POST(shipments+"/:shipmentId/approve", w.shipment(si.ApproveAssignment))
	router.POST(shipments+"/:shipmentId/reject", w.shipment(si.RejectAssignment))
	router.POST(shipments+"/:shipmentId/start-transit", w.shipment(si.StartTransit))
	router.POST(shipments+"/:shipmentId/deliver", w.shipment(si.DeliverShipment))
	router.POST(shipments+"/:shipmentId/cancel", w.shipment(si.CancelShipment))
	router.GET(shipments+"/:shipmentId/route", w.shipment(si.GetShipmentRoute))

	location := baseURL + "/api/v1/tenants/:tenantId/drivers/:driverId/location"
	router.GET(location, w.driver(si.GetDriverLocation))
	router.PUT(location, w.driver(si.UpdateDriverLocation))
}
