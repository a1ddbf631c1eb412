package commands_test

import (
	"context"

	"logistics/internal/core/application/approval"
	"logistics/internal/core/application/engine"
	"logistics/internal/core/application/usecases/commands"
	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/notification"
	"logistics/internal/core/domain/model/shipment"
	"logistics/internal/core/domain/model/tracking"
	"logistics/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockShipmentRepository struct{ mock.Mock }

func (m *MockShipmentRepository) Add(ctx context.Context, s *shipment.Shipment) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShipmentRepository) Update(ctx context.Context, s *shipment.Shipment) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShipmentRepository) Get(
	ctx context.Context,
	tenantID kernel.TenantID,
	id kernel.UUID,
) (*shipment.Shipment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) GetAllPendingApproval(ctx context.Context) ([]*shipment.Shipment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shipment.Shipment), args.Error(1)
}

type MockNotificationRepository struct{ mock.Mock }

func (m *MockNotificationRepository) Add(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// MockUoW satisfies both commands.UoW and commands.ShipmentUoW.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) ShipmentRepository() ports.ShipmentRepository {
	args := m.Called()
	return args.Get(0).(ports.ShipmentRepository)
}

func (m *MockUoW) NotificationRepository() ports.NotificationRepository {
	args := m.Called()
	return args.Get(0).(ports.NotificationRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockShipmentUoWFactory struct{ mock.Mock }

func (m *MockShipmentUoWFactory) Create() commands.ShipmentUoW {
	args := m.Called()
	return args.Get(0).(commands.ShipmentUoW)
}

type MockScheduler struct{ mock.Mock }

func (m *MockScheduler) ScheduleAutoReject(ctx context.Context, expiry approval.Expiry) {
	m.Called(ctx, expiry)
}

func (m *MockScheduler) CancelAutoReject(ctx context.Context, shipmentID kernel.UUID) {
	m.Called(ctx, shipmentID)
}

type MockSimulations struct{ mock.Mock }

func (m *MockSimulations) Start(ctx context.Context, req engine.StartRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockSimulations) StopByShipment(ctx context.Context, shipmentID kernel.UUID, tenantID kernel.TenantID) {
	m.Called(ctx, shipmentID, tenantID)
}

type MockBroadcaster struct{ mock.Mock }

func (m *MockBroadcaster) Broadcast(ctx context.Context, tenantID kernel.TenantID, event ports.Event) {
	m.Called(ctx, tenantID, event)
}

type MockLocationStore struct{ mock.Mock }

func (m *MockLocationStore) SaveDriverLocation(ctx context.Context, loc tracking.DriverLocation) error {
	args := m.Called(ctx, loc)
	return args.Error(0)
}

func (m *MockLocationStore) GetDriverLocation(
	ctx context.Context,
	tenantID kernel.TenantID,
	driverID kernel.UUID,
) (*tracking.DriverLocation, error) {
	args := m.Called(ctx, tenantID, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tracking.DriverLocation), args.Error(1)
}

// statusEvent matches a shipment-status-update carrying the given status.
func statusEvent(status shipment.Status, autoRejected bool) any {
	return mock.MatchedBy(func(e ports.Event) bool {
		p, ok := e.Payload.(ports.ShipmentStatusUpdate)
		return ok &&
			e.Name == ports.EventShipmentStatusUpdate &&
			p.NewStatus == status.String() &&
			p.AutoRejected == autoRejected
	})
}
