package tracking

import (
	"fmt"
	"time"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/pkg/errs"
)

// Source tells where a driver position came from.
type Source string

const (
	SourceREST      Source = "REST"
	SourceMQTT      Source = "MQTT"
	SourceSimulated Source = "SIMULATED"
)

func ParseSource(s string) (Source, error) {
	switch src := Source(s); src {
	case SourceREST, SourceMQTT, SourceSimulated:
		return src, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("source", fmt.Errorf("%q is not a valid source", s))
	}
}

// DriverLocation is the last known position of a driver.
type DriverLocation struct {
	DriverID  kernel.UUID
	TenantID  kernel.TenantID
	Point     kernel.RoutePoint
	Timestamp time.Time
	Source    Source
}

func NewDriverLocation(
	driverID kernel.UUID,
	tenantID kernel.TenantID,
	point kernel.RoutePoint,
	source Source,
	at time.Time,
) DriverLocation {
	return DriverLocation{
		DriverID:  driverID,
		TenantID:  tenantID,
		Point:     point,
		Timestamp: at.UTC(),
		Source:    source,
	}
}
