package approval_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"logistics/internal/core/application/approval"
	"logistics/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const window = 50 * time.Millisecond

type recordingHandler struct {
	mu    sync.Mutex
	calls []approval.Expiry
	// failures is the number of calls that return err before succeeding.
	// A negative value fails every call.
	failures int
	err      error
}

func (h *recordingHandler) HandleExpiredApproval(_ context.Context, e approval.Expiry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, e)
	if h.failures < 0 || len(h.calls) <= h.failures {
		return h.err
	}
	return nil
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.calls)
}

func (h *recordingHandler) last() approval.Expiry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls[len(h.calls)-1]
}

func newScheduler(t *testing.T, h approval.ExpiryHandler) *approval.Scheduler {
	t.Helper()
	s := approval.NewScheduler(h, window, slog.New(slog.DiscardHandler))
	t.Cleanup(func() { s.Stop(context.Background()) })
	return s
}

func expiry(assignedAt time.Time) approval.Expiry {
	return approval.Expiry{
		ShipmentID: kernel.NewUUID(),
		DriverID:   kernel.NewUUID(),
		TenantID:   "acme",
		AssignedAt: assignedAt,
	}
}

func TestScheduler_FiresOnceAfterWindow(t *testing.T) {
	// Given
	h := &recordingHandler{}
	s := newScheduler(t, h)
	e := expiry(time.Now())

	// When
	s.ScheduleAutoReject(t.Context(), e)

	// Then
	_, pending := s.Pending(e.ShipmentID)
	assert.True(t, pending)
	assert.Eventually(t, func() bool { return h.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return h.count() > 1 }, 3*window, 5*time.Millisecond)
	assert.Equal(t, e, h.last())
	assert.Equal(t, 0, s.Count())
}

func TestScheduler_CancelBeforeWindow(t *testing.T) {
	h := &recordingHandler{}
	s := newScheduler(t, h)
	e := expiry(time.Now())

	s.ScheduleAutoReject(t.Context(), e)
	s.CancelAutoReject(t.Context(), e.ShipmentID)

	assert.Never(t, func() bool { return h.count() > 0 }, 3*window, 5*time.Millisecond)
	assert.Equal(t, 0, s.Count())

	t.Run("cancel_is_idempotent", func(t *testing.T) {
		s.CancelAutoReject(t.Context(), e.ShipmentID)
		s.CancelAutoReject(t.Context(), kernel.NewUUID())
		assert.Equal(t, 0, s.Count())
	})
}

func TestScheduler_RescheduleReplacesTimer(t *testing.T) {
	h := &recordingHandler{}
	s := newScheduler(t, h)
	first := expiry(time.Now())
	second := first
	second.DriverID = kernel.NewUUID()
	second.AssignedAt = time.Now().Add(window)

	s.ScheduleAutoReject(t.Context(), first)
	s.ScheduleAutoReject(t.Context(), second)

	assert.Equal(t, 1, s.Count())
	assert.Eventually(t, func() bool { return h.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return h.count() > 1 }, 3*window, 5*time.Millisecond)
	assert.True(t, h.last().DriverID.IsEqual(second.DriverID))
}

func TestScheduler_ExpiredDeadlineFiresImmediately(t *testing.T) {
	h := &recordingHandler{}
	s := approval.NewScheduler(h, time.Hour, slog.New(slog.DiscardHandler))
	t.Cleanup(func() { s.Stop(context.Background()) })

	s.ScheduleAutoReject(t.Context(), expiry(time.Now().Add(-2*time.Hour)))

	assert.Eventually(t, func() bool { return h.count() == 1 }, time.Second, 5*time.Millisecond)
}

func newRetryingScheduler(t *testing.T, h approval.ExpiryHandler) *approval.Scheduler {
	t.Helper()
	s := approval.NewScheduler(h, window, slog.New(slog.DiscardHandler), approval.WithRetryBackoff(10*time.Millisecond))
	t.Cleanup(func() { s.Stop(context.Background()) })
	return s
}

func TestScheduler_HandlerErrorIsRetried(t *testing.T) {
	// Given
	h := &recordingHandler{failures: 2, err: errors.New("db down")}
	s := newRetryingScheduler(t, h)
	e := expiry(time.Now())

	// When
	s.ScheduleAutoReject(t.Context(), e)

	// Then
	assert.Eventually(t, func() bool { return h.count() == 3 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return h.count() > 3 }, 10*window, 5*time.Millisecond)
	_, pending := s.Pending(e.ShipmentID)
	assert.False(t, pending)
	assert.Equal(t, e, h.last())
}

func TestScheduler_FailingEntryStaysPendingUntilCancelled(t *testing.T) {
	// Given
	h := &recordingHandler{failures: -1, err: errors.New("db down")}
	s := newRetryingScheduler(t, h)
	e := expiry(time.Now())
	s.ScheduleAutoReject(t.Context(), e)
	require.Eventually(t, func() bool { return h.count() >= 2 }, time.Second, 5*time.Millisecond)

	_, pending := s.Pending(e.ShipmentID)
	assert.True(t, pending)

	// When
	s.CancelAutoReject(t.Context(), e.ShipmentID)
	calls := h.count()

	// Then
	assert.Never(t, func() bool { return h.count() > calls+1 }, 10*window, 5*time.Millisecond)
	assert.Equal(t, 0, s.Count())
}

func TestScheduler_StopDisarms(t *testing.T) {
	h := &recordingHandler{}
	s := approval.NewScheduler(h, window, slog.New(slog.DiscardHandler))

	s.ScheduleAutoReject(t.Context(), expiry(time.Now()))
	s.ScheduleAutoReject(t.Context(), expiry(time.Now()))
	require.Equal(t, 2, s.Count())

	s.Stop(t.Context())

	assert.Equal(t, 0, s.Count())
	assert.Never(t, func() bool { return h.count() > 0 }, 3*window, 5*time.Millisecond)

	s.ScheduleAutoReject(t.Context(), expiry(time.Now()))
	assert.Equal(t, 0, s.Count(), "stopped scheduler ignores new timers")
}

func TestExpiryHandlerFunc(t *testing.T) {
	called := false
	var h approval.ExpiryHandler = approval.ExpiryHandlerFunc(func(context.Context, approval.Expiry) error {
		called = true
		return nil
	})

	require.NoError(t, h.HandleExpiredApproval(t.Context(), approval.Expiry{}))
	assert.True(t, called)
}
