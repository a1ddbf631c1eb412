package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

type (
	TenantId   = string
	ShipmentId = openapi_types.UUID
	DriverId   = openapi_types.UUID
)

type CancelRequestActor string

const (
	CUSTOMER CancelRequestActor = "CUSTOMER"
	DRIVER   CancelRequestActor = "DRIVER"
)

type NewShipment struct {
	PickupAddress   string `json:"pickupAddress"`
	DeliveryAddress string `json:"deliveryAddress"`
}

type ShipmentCreated struct {
	Id openapi_types.UUID `json:"id"`
}

type DriverAction struct {
	DriverId openapi_types.UUID `json:"driverId"`
}

type CancelRequest struct {
	Actor CancelRequestActor `json:"actor"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Shipment struct {
	Id                openapi_types.UUID  `json:"id"`
	TenantId          string              `json:"tenantId"`
	PickupAddress     string              `json:"pickupAddress"`
	DeliveryAddress   string              `json:"deliveryAddress"`
	DriverId          *openapi_types.UUID `json:"driverId,omitempty"`
	Status            string              `json:"status"`
	PendingApproval   bool                `json:"pendingApproval"`
	AllowedNextStates []string            `json:"allowedNextStates"`
	CreatedAt         time.Time           `json:"createdAt"`
	AssignedAt        *time.Time          `json:"assignedAt,omitempty"`
	CancelledAt       *time.Time          `json:"cancelledAt,omitempty"`
	DeliveredAt       *time.Time          `json:"deliveredAt,omitempty"`
}

type ShipmentRoute struct {
	ShipmentId    openapi_types.UUID `json:"shipmentId"`
	DriverId      openapi_types.UUID `json:"driverId"`
	Phase         string             `json:"phase"`
	CurrentStep   int                `json:"currentStep"`
	TotalSteps    int                `json:"totalSteps"`
	PickupPoint   Coordinates        `json:"pickupPoint"`
	DeliveryPoint Coordinates        `json:"deliveryPoint"`
	Route         []Coordinates      `json:"route"`
}

type DriverLocation struct {
	DriverId  openapi_types.UUID `json:"driverId"`
	Latitude  float64            `json:"latitude"`
	Longitude float64            `json:"longitude"`
	Timestamp time.Time          `json:"timestamp"`
	Source    string             `json:"source"`
}

type Error struct {
	Code              int      `json:"code"`
	Message           string   `json:"message"`
	AllowedNextStates []string `json:"allowedNextStates,omitempty"`
}
