// Package notification models the messages produced when a shipment is
// assigned to a driver or the assignment is rejected.
package notification
