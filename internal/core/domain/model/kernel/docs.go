// Package kernel holds the value objects shared by every aggregate of the
// shipment service: identifiers, tenant scoping and geographic points.
package kernel
