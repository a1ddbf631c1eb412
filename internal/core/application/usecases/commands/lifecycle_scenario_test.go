package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"logistics/internal/core/application/approval"
	"logistics/internal/core/application/engine"
	"logistics/internal/core/application/usecases/commands"
	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/notification"
	"logistics/internal/core/domain/model/shipment"
	"logistics/internal/core/ports"
	"logistics/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memDB is a tiny transactional store: writes are staged per unit of work
// and applied on commit with an optimistic version check.
type memDB struct {
	mu            sync.Mutex
	shipments     map[kernel.UUID]shipment.Snapshot
	notifications []*notification.Notification
}

func newMemDB() *memDB {
	return &memDB{shipments: map[kernel.UUID]shipment.Snapshot{}}
}

func (db *memDB) Create() commands.UoW { return &memUoW{db: db} }

func (db *memDB) shipment(t *testing.T, id kernel.UUID) *shipment.Shipment {
	t.Helper()
	db.mu.Lock()
	defer db.mu.Unlock()
	s, err := shipment.RestoreShipment(db.shipments[id])
	require.NoError(t, err)
	return s
}

func (db *memDB) status(id kernel.UUID) shipment.Status {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.shipments[id].Status
}

func (db *memDB) notificationsFor(id kernel.UUID) []*notification.Notification {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []*notification.Notification
	for _, n := range db.notifications {
		if n.ShipmentID().IsEqual(id) {
			out = append(out, n)
		}
	}
	return out
}

type memUoW struct {
	db            *memDB
	staged        []shipment.Snapshot
	notifications []*notification.Notification
}

func (u *memUoW) Begin(context.Context) error { return nil }

func (u *memUoW) Commit(context.Context) error {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	for _, snap := range u.staged {
		if cur, ok := u.db.shipments[snap.ID]; ok && cur.Version != snap.Version {
			return errs.NewVersionIsInvalidError("shipment")
		}
	}
	for _, snap := range u.staged {
		snap.Version++
		u.db.shipments[snap.ID] = snap
	}
	u.db.notifications = append(u.db.notifications, u.notifications...)
	u.staged, u.notifications = nil, nil
	return nil
}

func (u *memUoW) Rollback(context.Context) error {
	u.staged, u.notifications = nil, nil
	return nil
}

func (u *memUoW) ShipmentRepository() ports.ShipmentRepository { return memShipments{u} }
func (u *memUoW) NotificationRepository() ports.NotificationRepository { return memNotifications{u} }

type memShipments struct{ u *memUoW }

func (r memShipments) Add(_ context.Context, s *shipment.Shipment) error {
	r.u.staged = append(r.u.staged, s.Snapshot())
	return nil
}

func (r memShipments) Update(_ context.Context, s *shipment.Shipment) error {
	r.u.staged = append(r.u.staged, s.Snapshot())
	return nil
}

func (r memShipments) Get(_ context.Context, tenantID kernel.TenantID, id kernel.UUID) (*shipment.Shipment, error) {
	r.u.db.mu.Lock()
	snap, ok := r.u.db.shipments[id]
	r.u.db.mu.Unlock()
	if !ok || snap.TenantID != tenantID {
		return nil, errs.NewObjectNotFoundError("shipmentID", id)
	}
	return shipment.RestoreShipment(snap)
}

func (r memShipments) GetAllPendingApproval(context.Context) ([]*shipment.Shipment, error) {
	return nil, nil
}

type memNotifications struct{ u *memUoW }

func (r memNotifications) Add(_ context.Context, n *notification.Notification) error {
	r.u.notifications = append(r.u.notifications, n)
	return nil
}

type shipmentUoWs struct{ db *memDB }

func (f shipmentUoWs) Create() commands.ShipmentUoW { return f.db.Create() }

type recordingSimulations struct {
	mu      sync.Mutex
	started []engine.StartRequest
	stopped []kernel.UUID
}

func (r *recordingSimulations) Start(_ context.Context, req engine.StartRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, req)
	return nil
}

func (r *recordingSimulations) StopByShipment(_ context.Context, shipmentID kernel.UUID, _ kernel.TenantID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = append(r.stopped, shipmentID)
}

func (r *recordingSimulations) startedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.started)
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(context.Context, kernel.TenantID, ports.Event) {}

type lifecycle struct {
	db          *memDB
	scheduler   *approval.Scheduler
	simulations *recordingSimulations
	create      commands.CreateShipmentCommandHandler
	assign      commands.AssignDriverCommandHandler
	approve     commands.ApproveAssignmentCommandHandler
}

func newLifecycle(t *testing.T, window time.Duration) *lifecycle {
	t.Helper()
	db := newMemDB()
	sims := &recordingSimulations{}
	bc := nopBroadcaster{}

	autoReject := commands.NewAutoRejectAssignmentCommandHandler(db, bc, discard)
	scheduler := approval.NewScheduler(autoReject, window, discard)
	t.Cleanup(func() { scheduler.Stop(context.Background()) })

	return &lifecycle{
		db:          db,
		scheduler:   scheduler,
		simulations: sims,
		create:      commands.NewCreateShipmentCommandHandler(shipmentUoWs{db}, bc),
		assign:      commands.NewAssignDriverCommandHandler(db, scheduler, bc, discard),
		approve:     commands.NewApproveAssignmentCommandHandler(shipmentUoWs{db}, scheduler, sims, bc, discard),
	}
}

func (l *lifecycle) createAndAssign(t *testing.T, driverID kernel.UUID) kernel.UUID {
	t.Helper()
	ctx := t.Context()
	id := kernel.NewUUID()

	create, err := commands.NewCreateShipmentCommand(id, tenant, "Alexanderplatz 1", "Potsdamer Platz 1")
	require.NoError(t, err)
	require.NoError(t, l.create.Handle(ctx, create))

	assign, err := commands.NewAssignDriverCommand(id, tenant, driverID)
	require.NoError(t, err)
	require.NoError(t, l.assign.Handle(ctx, assign))
	return id
}

func TestLifecycle_ApprovalWithinWindow(t *testing.T) {
	// Given
	l := newLifecycle(t, 200*time.Millisecond)
	driverID := kernel.NewUUID()
	id := l.createAndAssign(t, driverID)
	_, armed := l.scheduler.Pending(id)
	require.True(t, armed)

	// When
	approve, err := commands.NewApproveAssignmentCommand(id, tenant, driverID)
	require.NoError(t, err)
	require.NoError(t, l.approve.Handle(t.Context(), approve))

	// Then
	_, armed = l.scheduler.Pending(id)
	assert.False(t, armed)
	assert.Equal(t, 1, l.simulations.startedCount())

	assert.Never(t, func() bool {
		return l.db.status(id) != shipment.Approved
	}, 400*time.Millisecond, 20*time.Millisecond)
	assert.Len(t, l.db.notificationsFor(id), 1)
}

func TestLifecycle_NoDecisionAutoRejects(t *testing.T) {
	// Given
	l := newLifecycle(t, 50*time.Millisecond)
	driverID := kernel.NewUUID()

	// When
	id := l.createAndAssign(t, driverID)

	// Then
	assert.Eventually(t, func() bool {
		return l.db.status(id) == shipment.Created
	}, time.Second, 10*time.Millisecond)

	s := l.db.shipment(t, id)
	assert.Nil(t, s.DriverID())
	assert.False(t, s.PendingApproval())
	assert.Equal(t, 0, l.simulations.startedCount())

	notes := l.db.notificationsFor(id)
	require.Len(t, notes, 2)
	assert.Equal(t, notification.TypeShipmentAssigned, notes[0].Type())
	assert.Equal(t, notification.TypeShipmentRejected, notes[1].Type())
	assert.True(t, notes[1].AutoRejected())
	assert.Equal(t, 0, l.scheduler.Count())
}

func TestLifecycle_ApprovalAfterAutoRejectFails(t *testing.T) {
	l := newLifecycle(t, 30*time.Millisecond)
	driverID := kernel.NewUUID()
	id := l.createAndAssign(t, driverID)

	require.Eventually(t, func() bool {
		return l.db.status(id) == shipment.Created
	}, time.Second, 10*time.Millisecond)

	approve, err := commands.NewApproveAssignmentCommand(id, tenant, driverID)
	require.NoError(t, err)
	err = l.approve.Handle(t.Context(), approve)

	require.ErrorIs(t, err, errs.ErrInvalidState)
	require.ErrorIs(t, err, shipment.ErrNoPendingApproval)
	assert.Equal(t, 0, l.simulations.startedCount())
}
