package redis

import (
	"time"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/simulation"
	"logistics/internal/core/domain/model/tracking"
)

type pointRecord struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func toPointRecord(p kernel.RoutePoint) pointRecord {
	return pointRecord{Latitude: p.Lat(), Longitude: p.Lng()}
}

func (r pointRecord) toDomain() (kernel.RoutePoint, error) {
	return kernel.NewRoutePoint(r.Latitude, r.Longitude)
}

type stateRecord struct {
	ShipmentID    string      `json:"shipmentId"`
	DriverID      string      `json:"driverId"`
	TenantID      string      `json:"tenantId"`
	PickupPoint   pointRecord `json:"pickupPoint"`
	DeliveryPoint pointRecord `json:"deliveryPoint"`
	CurrentStep   int         `json:"currentStep"`
	TotalSteps    int         `json:"totalSteps"`
	Phase         string      `json:"phase"`
}

func toStateRecord(s simulation.State) stateRecord {
	return stateRecord{
		ShipmentID:    s.ShipmentID.String(),
		DriverID:      s.DriverID.String(),
		TenantID:      s.TenantID.String(),
		PickupPoint:   toPointRecord(s.PickupPoint),
		DeliveryPoint: toPointRecord(s.DeliveryPoint),
		CurrentStep:   s.CurrentStep,
		TotalSteps:    s.TotalSteps,
		Phase:         string(s.Phase),
	}
}

func (r stateRecord) toDomain() (simulation.State, error) {
	shipmentID, err := kernel.UUIDFromString(r.ShipmentID)
	if err != nil {
		return simulation.State{}, err
	}
	driverID, err := kernel.UUIDFromString(r.DriverID)
	if err != nil {
		return simulation.State{}, err
	}
	pickup, err := r.PickupPoint.toDomain()
	if err != nil {
		return simulation.State{}, err
	}
	delivery, err := r.DeliveryPoint.toDomain()
	if err != nil {
		return simulation.State{}, err
	}
	phase, err := simulation.ParsePhase(r.Phase)
	if err != nil {
		return simulation.State{}, err
	}

	state := simulation.State{
		ShipmentID:    shipmentID,
		DriverID:      driverID,
		TenantID:      kernel.TenantID(r.TenantID),
		PickupPoint:   pickup,
		DeliveryPoint: delivery,
		CurrentStep:   r.CurrentStep,
		TotalSteps:    r.TotalSteps,
		Phase:         phase,
	}
	return state, state.Validate()
}

type routeRecord struct {
	ShipmentID    string        `json:"shipmentId"`
	Route         []pointRecord `json:"route"`
	PickupPoint   pointRecord   `json:"pickupPoint"`
	DeliveryPoint pointRecord   `json:"deliveryPoint"`
	Phase         string        `json:"phase"`
}

func toRouteRecord(r simulation.Route) routeRecord {
	points := make([]pointRecord, 0, len(r.Points))
	for _, p := range r.Points {
		points = append(points, toPointRecord(p))
	}
	return routeRecord{
		ShipmentID:    r.ShipmentID.String(),
		Route:         points,
		PickupPoint:   toPointRecord(r.PickupPoint),
		DeliveryPoint: toPointRecord(r.DeliveryPoint),
		Phase:         string(r.Phase),
	}
}

func (r routeRecord) toDomain() (simulation.Route, error) {
	shipmentID, err := kernel.UUIDFromString(r.ShipmentID)
	if err != nil {
		return simulation.Route{}, err
	}
	points := make([]kernel.RoutePoint, 0, len(r.Route))
	for _, rec := range r.Route {
		p, pErr := rec.toDomain()
		if pErr != nil {
			return simulation.Route{}, pErr
		}
		points = append(points, p)
	}
	pickup, err := r.PickupPoint.toDomain()
	if err != nil {
		return simulation.Route{}, err
	}
	delivery, err := r.DeliveryPoint.toDomain()
	if err != nil {
		return simulation.Route{}, err
	}
	phase, err := simulation.ParsePhase(r.Phase)
	if err != nil {
		return simulation.Route{}, err
	}
	return simulation.Route{
		ShipmentID:    shipmentID,
		Points:        points,
		PickupPoint:   pickup,
		DeliveryPoint: delivery,
		Phase:         phase,
	}, nil
}

type locationRecord struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

func toLocationRecord(l tracking.DriverLocation) locationRecord {
	return locationRecord{
		Latitude:  l.Point.Lat(),
		Longitude: l.Point.Lng(),
		Timestamp: l.Timestamp,
		Source:    string(l.Source),
	}
}

func (r locationRecord) toDomain(tenantID kernel.TenantID, driverID kernel.UUID) (tracking.DriverLocation, error) {
	point, err := kernel.NewRoutePoint(r.Latitude, r.Longitude)
	if err != nil {
		return tracking.DriverLocation{}, err
	}
	source, err := tracking.ParseSource(r.Source)
	if err != nil {
		return tracking.DriverLocation{}, err
	}
	return tracking.NewDriverLocation(driverID, tenantID, point, source, r.Timestamp), nil
}
