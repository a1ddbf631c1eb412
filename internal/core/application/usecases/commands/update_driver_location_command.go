package commands

import (
	"errors"
	"fmt"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/tracking"
	"logistics/internal/pkg/errs"
	"logistics/internal/pkg/guard"
)

var ErrUpdateDriverLocationCommandIsNotConstructed = errors.New(
	"UpdateDriverLocationCommand must be created via NewUpdateDriverLocationCommand constructor",
)

// UpdateDriverLocationCommand records a position reported by a driver's
// device over REST or MQTT.
type UpdateDriverLocationCommand struct {
	driverID kernel.UUID
	tenantID kernel.TenantID
	point    kernel.RoutePoint
	source   tracking.Source

	guard guard.ConstructorGuard
}

func NewUpdateDriverLocationCommand(
	driverID kernel.UUID,
	tenantID kernel.TenantID,
	lat, lng float64,
	source tracking.Source,
) (UpdateDriverLocationCommand, error) {
	point, errPoint := kernel.NewRoutePoint(lat, lng)
	var errSource error
	if source != tracking.SourceREST && source != tracking.SourceMQTT {
		errSource = errs.NewValueIsInvalidErrorWithCause("source", fmt.Errorf("%q cannot report locations", source))
	}
	if err := errors.Join(driverID.Validate(), tenantID.Validate(), errPoint, errSource); err != nil {
		return UpdateDriverLocationCommand{}, err
	}
	return UpdateDriverLocationCommand{
		driverID: driverID,
		tenantID: tenantID,
		point:    point,
		source:   source,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateDriverLocationCommand) DriverID() kernel.UUID { return c.driverID }
func (c UpdateDriverLocationCommand) TenantID() kernel.TenantID { return c.tenantID }
func (c UpdateDriverLocationCommand) Point() kernel.RoutePoint { return c.point }
func (c UpdateDriverLocationCommand) Source() tracking.Source { return c.source }

func (c UpdateDriverLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDriverLocationCommandIsNotConstructed)
}
