package queries

import (
	"errors"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/pkg/guard"
)

var ErrGetDriverLocationQueryIsNotConstructed = errors.New(
	"GetDriverLocationQuery must be created via NewGetDriverLocationQuery constructor",
)

type GetDriverLocationQuery struct {
	driverID kernel.UUID
	tenantID kernel.TenantID

	guard guard.ConstructorGuard
}

func NewGetDriverLocationQuery(driverID kernel.UUID, tenantID kernel.TenantID) (GetDriverLocationQuery, error) {
	if err := errors.Join(driverID.Validate(), tenantID.Validate()); err != nil {
		return GetDriverLocationQuery{}, err
	}
	return GetDriverLocationQuery{
		driverID: driverID,
		tenantID: tenantID,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q GetDriverLocationQuery) DriverID() kernel.UUID { return q.driverID }
func (q GetDriverLocationQuery) TenantID() kernel.TenantID { return q.tenantID }

func (q GetDriverLocationQuery) Validate() error {
	return q.guard.Validate(ErrGetDriverLocationQueryIsNotConstructed)
}
