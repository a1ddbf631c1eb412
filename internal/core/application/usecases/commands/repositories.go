// Package commands contains the write side of the shipment lifecycle.
// Each command is an immutable value built by a validating constructor;
// each handler runs inside a unit of work and triggers the simulation
// engine, the approval scheduler and real-time broadcasts after commit.
package commands

import (
	"context"

	"logistics/internal/core/ports"
)

type (
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	ShipmentRepoFactory interface {
		ShipmentRepository() ports.ShipmentRepository
	}

	NotificationRepoFactory interface {
		NotificationRepository() ports.NotificationRepository
	}

	// ShipmentUoW covers commands that only touch the shipment aggregate.
	ShipmentUoW interface {
		TxManager
		ShipmentRepoFactory
	}

	ShipmentUoWFactory interface {
		Create() ShipmentUoW
	}

	// UoW covers commands that also record a notification.
	//
	//   uow := factory.Create()
	//   if err := uow.Begin(ctx); err != nil { return err }
	//   defer uow.Rollback(ctx)
	//   ... uow.ShipmentRepository() / uow.NotificationRepository()
	//   return uow.Commit(ctx)
	UoW interface {
		TxManager
		ShipmentRepoFactory
		NotificationRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)
