package shipment

import (
	"fmt"
	"slices"

	"logistics/internal/pkg/errs"
)

// Status is the lifecycle state of a shipment.
//
//	CREATED ──> ASSIGNED ──> IN_TRANSIT ──> DELIVERED
//	   │  ▲        │  │
//	   │  │        │  └──> CANCEL_BY_DRIVER ───┐
//	   │  │        └─────> CANCEL_BY_CUSTOMER ─┤
//	   └──┼──────────────> CANCEL_BY_CUSTOMER  │
//	      └───────────── (reassignment) ───────┘
//
// APPROVED is kept for records written before approval became a flag on
// ASSIGNED shipments. It still allows cancellation and forward progress.
type Status int

const (
	Unknown Status = iota
	Created
	Assigned
	Approved
	InTransit
	Delivered
	CancelByCustomer
	CancelByDriver
)

var statusNames = map[Status]string{
	Created:          "CREATED",
	Assigned:         "ASSIGNED",
	Approved:         "APPROVED",
	InTransit:        "IN_TRANSIT",
	Delivered:        "DELIVERED",
	CancelByCustomer: "CANCEL_BY_CUSTOMER",
	CancelByDriver:   "CANCEL_BY_DRIVER",
}

// transitions lists the allowed next states in a fixed order so error
// messages and API responses are stable.
var transitions = map[Status][]Status{
	Created:          {Assigned, CancelByCustomer},
	Assigned:         {InTransit, CancelByCustomer, CancelByDriver},
	Approved:         {InTransit, CancelByCustomer, CancelByDriver},
	InTransit:        {Delivered},
	Delivered:        {},
	CancelByCustomer: {Assigned},
	CancelByDriver:   {Assigned},
}

// AllStatuses returns every valid status in declaration order.
func AllStatuses() []Status {
	return []Status{Created, Assigned, Approved, InTransit, Delivered, CancelByCustomer, CancelByDriver}
}

// ParseStatus converts the persisted/wire name back into a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// CanTransition reports whether the table allows current -> next.
func CanTransition(current, next Status) bool {
	return slices.Contains(transitions[current], next)
}

// ValidateTransition returns an *errs.InvalidStateError carrying every
// allowed next state when current -> next is not in the table.
func ValidateTransition(current, next Status) error {
	if CanTransition(current, next) {
		return nil
	}
	return errs.NewInvalidStateError(current.String(), next.String(), statusStrings(ValidNextStates(current)))
}

// ValidNextStates returns a copy of the allowed next states.
func ValidNextStates(current Status) []Status {
	return slices.Clone(transitions[current])
}

// IsTerminal reports whether no transition leaves s. Only DELIVERED is terminal.
func IsTerminal(s Status) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

func statusStrings(statuses []Status) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, s.String())
	}
	return out
}
