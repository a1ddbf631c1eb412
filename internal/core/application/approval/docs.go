// Package approval bounds how long a driver may leave an assignment
// unanswered.
//
// Each shipment has at most one armed timer. When it fires the entry is
// removed before the ExpiryHandler runs, so a concurrent CancelAutoReject
// either wins (no fire) or finds nothing to cancel. In the second case the
// handler's own status re-check turns the late auto-reject into a no-op;
// the race with a manual approve or reject is settled by whichever update
// reaches the database first.
package approval
