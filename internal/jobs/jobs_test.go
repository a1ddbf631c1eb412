package jobs_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"logistics/internal/core/application/approval"
	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/shipment"
	"logistics/internal/core/domain/model/simulation"
	"logistics/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.DiscardHandler)

type MockRestorer struct {
	mock.Mock
}

func (m *MockRestorer) Restore(ctx context.Context, driverID kernel.UUID, tenantID kernel.TenantID) (bool, error) {
	args := m.Called(ctx, driverID, tenantID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRestorer) IsRunning(driverID kernel.UUID, tenantID kernel.TenantID) bool {
	return m.Called(driverID, tenantID).Bool(0)
}

type MockKeyLister struct {
	mock.Mock
}

func (m *MockKeyLister) ListKeys(ctx context.Context, tenantID kernel.TenantID) ([]simulation.Key, error) {
	args := m.Called(ctx, tenantID)
	keys, _ := args.Get(0).([]simulation.Key)
	return keys, args.Error(1)
}

type MockPendingApprovals struct {
	mock.Mock
}

func (m *MockPendingApprovals) GetAllPendingApproval(ctx context.Context) ([]*shipment.Shipment, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]*shipment.Shipment)
	return out, args.Error(1)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) ScheduleAutoReject(ctx context.Context, expiry approval.Expiry) {
	m.Called(ctx, expiry)
}

func TestSimulationRecoveryJob_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("restores_only_keys_without_local_task", func(t *testing.T) {
		// Given
		running := simulation.NewKey("acme", kernel.NewUUID())
		orphan := simulation.NewKey("acme", kernel.NewUUID())
		broken := simulation.NewKey("globex", kernel.NewUUID())
		gone := simulation.NewKey("globex", kernel.NewUUID())

		keys := &MockKeyLister{}
		keys.On("ListKeys", ctx, kernel.TenantID("")).
			Return([]simulation.Key{running, orphan, broken, gone}, nil).Once()

		restorer := &MockRestorer{}
		restorer.On("IsRunning", running.DriverID, running.TenantID).Return(true)
		restorer.On("IsRunning", mock.Anything, mock.Anything).Return(false)
		restorer.On("Restore", ctx, orphan.DriverID, orphan.TenantID).Return(true, nil).Once()
		restorer.On("Restore", ctx, broken.DriverID, broken.TenantID).Return(false, errors.New("store timeout")).Once()
		restorer.On("Restore", ctx, gone.DriverID, gone.TenantID).Return(false, nil).Once()

		job := jobs.NewSimulationRecoveryJob(restorer, keys, "", discard)

		// When
		restored := job.Run(ctx)

		// Then
		assert.Equal(t, 1, restored)
		restorer.AssertExpectations(t)
		restorer.AssertNotCalled(t, "Restore", ctx, running.DriverID, running.TenantID)
	})

	t.Run("listing_failure_restores_nothing", func(t *testing.T) {
		keys := &MockKeyLister{}
		keys.On("ListKeys", ctx, kernel.TenantID("")).Return(nil, errors.New("connection refused")).Once()
		restorer := &MockRestorer{}

		job := jobs.NewSimulationRecoveryJob(restorer, keys, "", discard)

		assert.Zero(t, job.Run(ctx))
		restorer.AssertNotCalled(t, "Restore", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSimulationRecoveryJob_StartStop(t *testing.T) {
	ctx := context.Background()

	t.Run("runs_immediately_on_start", func(t *testing.T) {
		keys := &MockKeyLister{}
		keys.On("ListKeys", mock.Anything, kernel.TenantID("")).Return([]simulation.Key{}, nil)
		job := jobs.NewSimulationRecoveryJob(&MockRestorer{}, keys, "@every 1h", discard)

		require.NoError(t, job.Start(ctx))
		job.Stop()

		keys.AssertNumberOfCalls(t, "ListKeys", 1)
	})

	t.Run("invalid_schedule", func(t *testing.T) {
		job := jobs.NewSimulationRecoveryJob(&MockRestorer{}, &MockKeyLister{}, "every so often", discard)

		require.Error(t, job.Start(ctx))
	})
}

func pendingShipment(t *testing.T, driverID kernel.UUID, assignedAt time.Time) *shipment.Shipment {
	t.Helper()
	s, err := shipment.NewShipment(kernel.NewUUID(), "acme", "Berlin", "Paris", assignedAt.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, s.Assign(driverID, assignedAt))
	return s
}

func TestApprovalRecoveryJob_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("re_arms_every_pending_approval", func(t *testing.T) {
		// Given
		d1, d2 := kernel.NewUUID(), kernel.NewUUID()
		at1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		at2 := at1.Add(2 * time.Minute)
		s1 := pendingShipment(t, d1, at1)
		s2 := pendingShipment(t, d2, at2)

		repo := &MockPendingApprovals{}
		repo.On("GetAllPendingApproval", ctx).Return([]*shipment.Shipment{s1, s2}, nil).Once()

		scheduler := &MockScheduler{}
		scheduler.On("ScheduleAutoReject", ctx, approval.Expiry{
			ShipmentID: s1.ID(), DriverID: d1, TenantID: "acme", AssignedAt: at1,
		}).Once()
		scheduler.On("ScheduleAutoReject", ctx, approval.Expiry{
			ShipmentID: s2.ID(), DriverID: d2, TenantID: "acme", AssignedAt: at2,
		}).Once()

		job := jobs.NewApprovalRecoveryJob(repo, scheduler, discard)

		// When
		armed, err := job.Run(ctx)

		// Then
		require.NoError(t, err)
		assert.Equal(t, 2, armed)
		scheduler.AssertExpectations(t)
	})

	t.Run("repository_failure", func(t *testing.T) {
		repo := &MockPendingApprovals{}
		repo.On("GetAllPendingApproval", ctx).Return(nil, errors.New("db down")).Once()
		scheduler := &MockScheduler{}

		_, err := jobs.NewApprovalRecoveryJob(repo, scheduler, discard).Run(ctx)

		require.Error(t, err)
		scheduler.AssertNotCalled(t, "ScheduleAutoReject", mock.Anything, mock.Anything)
	})
}

func TestJobManager_StartAll(t *testing.T) {
	ctx := context.Background()

	t.Run("approval_failure_aborts_start", func(t *testing.T) {
		repo := &MockPendingApprovals{}
		repo.On("GetAllPendingApproval", ctx).Return(nil, errors.New("db down")).Once()
		keys := &MockKeyLister{}

		jm := jobs.NewJobManager(&MockRestorer{}, keys, repo, &MockScheduler{}, "@every 1h", discard)

		require.Error(t, jm.StartAll(ctx))
		keys.AssertNotCalled(t, "ListKeys", mock.Anything, mock.Anything)
	})

	t.Run("starts_and_stops", func(t *testing.T) {
		repo := &MockPendingApprovals{}
		repo.On("GetAllPendingApproval", ctx).Return([]*shipment.Shipment{}, nil).Once()
		keys := &MockKeyLister{}
		keys.On("ListKeys", mock.Anything, kernel.TenantID("")).Return([]simulation.Key{}, nil)

		jm := jobs.NewJobManager(&MockRestorer{}, keys, repo, &MockScheduler{}, "@every 1h", discard)

		require.NoError(t, jm.StartAll(ctx))
		jm.StopAll()
		repo.AssertExpectations(t)
	})
}
