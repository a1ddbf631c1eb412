package commands_test

import (
	"testing"

	"logistics/internal/core/application/usecases/commands"
	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/shipment"
	"logistics/internal/core/domain/model/tracking"
	"logistics/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreateShipmentCommand(t *testing.T) {
	t.Run("valid_input", func(t *testing.T) {
		id := kernel.NewUUID()

		cmd, err := commands.NewCreateShipmentCommand(id, tenant, "Main St 1", "Side St 2")

		require.NoError(t, err)
		assert.Equal(t, id, cmd.ShipmentID())
		assert.Equal(t, tenant, cmd.TenantID())
		assert.Equal(t, "Main St 1", cmd.PickupAddress())
		assert.Equal(t, "Side St 2", cmd.DeliveryAddress())
		require.NoError(t, cmd.Validate())
	})

	t.Run("blank_addresses", func(t *testing.T) {
		_, err := commands.NewCreateShipmentCommand(kernel.NewUUID(), tenant, " ", "")

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "pickupAddress")
		assert.Contains(t, err.Error(), "deliveryAddress")
	})

	t.Run("zero_id_and_tenant", func(t *testing.T) {
		_, err := commands.NewCreateShipmentCommand(kernel.UUID{}, "", "A", "B")

		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestDriverCommands_Construction(t *testing.T) {
	type validator interface{ Validate() error }

	cases := map[string]func(kernel.UUID, kernel.TenantID, kernel.UUID) (validator, error){
		"assign": func(s kernel.UUID, tn kernel.TenantID, d kernel.UUID) (validator, error) {
			return commands.NewAssignDriverCommand(s, tn, d)
		},
		"approve": func(s kernel.UUID, tn kernel.TenantID, d kernel.UUID) (validator, error) {
			return commands.NewApproveAssignmentCommand(s, tn, d)
		},
		"reject": func(s kernel.UUID, tn kernel.TenantID, d kernel.UUID) (validator, error) {
			return commands.NewRejectAssignmentCommand(s, tn, d)
		},
		"auto_reject": func(s kernel.UUID, tn kernel.TenantID, d kernel.UUID) (validator, error) {
			return commands.NewAutoRejectAssignmentCommand(s, tn, d)
		},
		"start_transit": func(s kernel.UUID, tn kernel.TenantID, d kernel.UUID) (validator, error) {
			return commands.NewStartTransitCommand(s, tn, d)
		},
		"deliver": func(s kernel.UUID, tn kernel.TenantID, d kernel.UUID) (validator, error) {
			return commands.NewDeliverShipmentCommand(s, tn, d)
		},
	}

	for name, build := range cases {
		t.Run(name+"_valid", func(t *testing.T) {
			cmd, err := build(kernel.NewUUID(), tenant, kernel.NewUUID())

			require.NoError(t, err)
			require.NoError(t, cmd.Validate())
		})

		t.Run(name+"_missing_driver", func(t *testing.T) {
			_, err := build(kernel.NewUUID(), tenant, kernel.UUID{})

			require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
		})
	}
}

func TestDriverCommands_ZeroValueIsNotConstructed(t *testing.T) {
	assert.ErrorIs(t, commands.AssignDriverCommand{}.Validate(), commands.ErrAssignDriverCommandIsNotConstructed)
	assert.ErrorIs(t, commands.ApproveAssignmentCommand{}.Validate(), commands.ErrApproveAssignmentCommandIsNotConstructed)
	assert.ErrorIs(t, commands.RejectAssignmentCommand{}.Validate(), commands.ErrRejectAssignmentCommandIsNotConstructed)
	assert.ErrorIs(t, commands.StartTransitCommand{}.Validate(), commands.ErrStartTransitCommandIsNotConstructed)
	assert.ErrorIs(t, commands.DeliverShipmentCommand{}.Validate(), commands.ErrDeliverShipmentCommandIsNotConstructed)
	assert.ErrorIs(t, commands.CancelShipmentCommand{}.Validate(), commands.ErrCancelShipmentCommandIsNotConstructed)
}

func TestNewCancelShipmentCommand(t *testing.T) {
	cmd, err := commands.NewCancelShipmentCommand(kernel.NewUUID(), tenant, "customer")

	require.NoError(t, err)
	assert.Equal(t, shipment.ActorCustomer, cmd.Actor())
}

func TestNewUpdateDriverLocationCommand(t *testing.T) {
	driverID := kernel.NewUUID()

	cmd, err := commands.NewUpdateDriverLocationCommand(driverID, tenant, 48.1371, 11.5754, tracking.SourceREST)

	require.NoError(t, err)
	assert.Equal(t, driverID, cmd.DriverID())
	assert.InDelta(t, 48.1371, cmd.Point().Lat(), 1e-9)
	assert.Equal(t, tracking.SourceREST, cmd.Source())
}
