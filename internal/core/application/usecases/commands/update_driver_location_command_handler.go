package commands

import (
	"context"
	"log/slog"
	"time"

	"logistics/internal/core/domain/model/tracking"
	"logistics/internal/core/ports"
)

const DefaultLocationStoreTimeout = 2 * time.Second

// UpdateDriverLocationCommandHandler stores the position and broadcasts
// it. A slow or failing store never fails the update.
type UpdateDriverLocationCommandHandler struct {
	locations    ports.LocationStore
	broadcaster  ports.Broadcaster
	storeTimeout time.Duration
	logger       *slog.Logger
}

func NewUpdateDriverLocationCommandHandler(
	locations ports.LocationStore,
	broadcaster ports.Broadcaster,
	storeTimeout time.Duration,
	logger *slog.Logger,
) UpdateDriverLocationCommandHandler {
	if storeTimeout <= 0 {
		storeTimeout = DefaultLocationStoreTimeout
	}
	return UpdateDriverLocationCommandHandler{
		locations:    locations,
		broadcaster:  broadcaster,
		storeTimeout: storeTimeout,
		logger:       logger.With("component", "driver_location_handler"),
	}
}

func (h UpdateDriverLocationCommandHandler) Handle(ctx context.Context, command UpdateDriverLocationCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	loc := tracking.NewDriverLocation(
		command.DriverID(),
		command.TenantID(),
		command.Point(),
		command.Source(),
		time.Now(),
	)

	storeCtx, cancel := context.WithTimeout(ctx, h.storeTimeout)
	defer cancel()
	if err := h.locations.SaveDriverLocation(storeCtx, loc); err != nil {
		h.logger.WarnContext(ctx, "Driver location not persisted",
			"driver_id", loc.DriverID.String(),
			"tenant_id", loc.TenantID.String(),
			"error", err,
		)
	}

	h.broadcaster.Broadcast(ctx, loc.TenantID, ports.Event{
		Name: ports.EventDriverLocationUpdate,
		Payload: ports.DriverLocationUpdate{
			DriverID: loc.DriverID.String(),
			Location: ports.LocationPayload{
				Latitude:  loc.Point.Lat(),
				Longitude: loc.Point.Lng(),
				Timestamp: loc.Timestamp,
			},
			Source: string(loc.Source),
		},
	})
	return nil
}
