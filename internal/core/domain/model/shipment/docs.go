// Package shipment contains the Shipment aggregate and its status state
// machine.
//
// The transition table is the single source of truth for status changes:
// CanTransition, ValidateTransition, ValidNextStates and IsTerminal are pure
// functions over it. The approval gate (approve, reject and auto-reject of an
// ASSIGNED shipment) is tracked separately by the pendingApproval flag, so an
// assignment can be resolved without adding rows to the table.
package shipment
