package approval

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"logistics/internal/core/domain/model/kernel"
)

const (
	DefaultWindow       = 5 * time.Minute
	DefaultRetryBackoff = 5 * time.Second

	maxRetryBackoff = time.Minute
	handlerTimeout  = 30 * time.Second
)

// Expiry identifies the assignment whose approval window ran out.
type Expiry struct {
	ShipmentID kernel.UUID
	DriverID   kernel.UUID
	TenantID   kernel.TenantID
	AssignedAt time.Time
}

// ExpiryHandler applies the auto-reject. It must re-read the shipment and
// treat an already resolved assignment as a no-op.
type ExpiryHandler interface {
	HandleExpiredApproval(ctx context.Context, expiry Expiry) error
}

// ExpiryHandlerFunc adapts a function to ExpiryHandler.
type ExpiryHandlerFunc func(ctx context.Context, expiry Expiry) error

func (f ExpiryHandlerFunc) HandleExpiredApproval(ctx context.Context, expiry Expiry) error {
	return f(ctx, expiry)
}

type entry struct {
	expiry   Expiry
	timer    *time.Timer
	attempts int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRetryBackoff sets the base delay before a failed auto-reject is
// retried. The n-th retry waits n times the base, capped at one minute.
func WithRetryBackoff(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.retryBackoff = d
		}
	}
}

// Scheduler owns one timer per shipment awaiting driver approval.
type Scheduler struct {
	handler      ExpiryHandler
	window       time.Duration
	retryBackoff time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	pending map[kernel.UUID]*entry
	closed  bool

	rootCtx    context.Context
	cancelRoot context.CancelFunc
	wg         sync.WaitGroup
}

func NewScheduler(handler ExpiryHandler, window time.Duration, logger *slog.Logger, opts ...Option) *Scheduler {
	if window <= 0 {
		window = DefaultWindow
	}
	rootCtx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		handler:      handler,
		window:       window,
		retryBackoff: DefaultRetryBackoff,
		logger:       logger.With("component", "approval_scheduler"),
		pending:      make(map[kernel.UUID]*entry),
		rootCtx:      rootCtx,
		cancelRoot:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleAutoReject arms the timer for expiry.ShipmentID, replacing any
// timer already armed for it. The deadline is AssignedAt plus the window,
// so re-arming after a restart does not extend it.
func (s *Scheduler) ScheduleAutoReject(ctx context.Context, expiry Expiry) {
	delay := time.Until(expiry.AssignedAt.Add(s.window))
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if prev, ok := s.pending[expiry.ShipmentID]; ok {
		prev.timer.Stop()
	}

	e := &entry{expiry: expiry}
	s.pending[expiry.ShipmentID] = e
	e.timer = time.AfterFunc(delay, func() { s.fire(e) })

	s.logger.InfoContext(ctx, "Auto-reject scheduled",
		"shipment_id", expiry.ShipmentID.String(),
		"driver_id", expiry.DriverID.String(),
		"tenant_id", expiry.TenantID.String(),
		"fires_in", delay.String(),
	)
}

// CancelAutoReject disarms the shipment's timer. Cancelling a shipment
// without a timer is a no-op.
func (s *Scheduler) CancelAutoReject(ctx context.Context, shipmentID kernel.UUID) {
	s.mu.Lock()
	e, ok := s.pending[shipmentID]
	if ok {
		e.timer.Stop()
		delete(s.pending, shipmentID)
	}
	s.mu.Unlock()

	if ok {
		s.logger.InfoContext(ctx, "Auto-reject cancelled", "shipment_id", shipmentID.String())
	}
}

// fire runs the handler while the entry stays registered, so a cancel or
// replacement during the call still wins. A failed call re-arms the entry.
func (s *Scheduler) fire(e *entry) {
	id := e.expiry.ShipmentID
	s.mu.Lock()
	if s.closed || s.pending[id] != e {
		// Cancelled or replaced after the timer had already expired.
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(s.rootCtx, handlerTimeout)
	defer cancel()

	log := s.logger.With(
		"shipment_id", id.String(),
		"driver_id", e.expiry.DriverID.String(),
		"tenant_id", e.expiry.TenantID.String(),
	)
	err := s.handler.HandleExpiredApproval(ctx, e.expiry)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[id] != e {
		return
	}
	if err == nil || s.closed {
		delete(s.pending, id)
		if err == nil {
			log.InfoContext(ctx, "Approval window expired")
		}
		return
	}

	e.attempts++
	delay := min(s.retryBackoff*time.Duration(e.attempts), maxRetryBackoff)
	e.timer = time.AfterFunc(delay, func() { s.fire(e) })
	log.ErrorContext(ctx, "Auto-reject failed, retrying",
		"error", err,
		"attempt", e.attempts,
		"retry_in", delay.String(),
	)
}

// Pending returns the armed expiry for shipmentID. An expiry whose
// auto-reject is running or waiting for a retry is still pending.
func (s *Scheduler) Pending(shipmentID kernel.UUID) (Expiry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.pending[shipmentID]
	if !ok {
		return Expiry{}, false
	}
	return e.expiry, true
}

func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop disarms every timer and waits for handlers already running.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	s.closed = true
	n := len(s.pending)
	for id, e := range s.pending {
		e.timer.Stop()
		delete(s.pending, id)
	}
	s.mu.Unlock()

	s.cancelRoot()
	s.wg.Wait()
	s.logger.InfoContext(ctx, "Approval scheduler stopped", "disarmed", n)
}
