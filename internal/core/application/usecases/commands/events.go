package commands

import (
	"logistics/internal/core/domain/model/shipment"
	"logistics/internal/core/ports"
)

func statusUpdateEvent(s *shipment.Shipment, autoRejected bool) ports.Event {
	var driverID *string
	if d := s.DriverID(); d != nil {
		id := d.String()
		driverID = &id
	}
	return ports.Event{
		Name: ports.EventShipmentStatusUpdate,
		Payload: ports.ShipmentStatusUpdate{
			ShipmentID:      s.ID().String(),
			NewStatus:       s.Status().String(),
			DriverID:        driverID,
			PendingApproval: s.PendingApproval(),
			AutoRejected:    autoRejected,
		},
	}
}
