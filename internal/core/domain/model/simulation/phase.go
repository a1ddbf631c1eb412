package simulation

import (
	"fmt"

	"logistics/internal/pkg/errs"
)

// Phase names the leg a simulation drives.
type Phase string

const (
	PhaseToPickup   Phase = "TO_PICKUP"
	PhaseToDelivery Phase = "TO_DELIVERY"
)

func ParsePhase(s string) (Phase, error) {
	switch p := Phase(s); p {
	case PhaseToPickup, PhaseToDelivery:
		return p, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("phase", fmt.Errorf("%q is not a valid phase", s))
	}
}

func (p Phase) String() string { return string(p) }
