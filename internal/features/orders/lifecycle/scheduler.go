package lifecycle

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront-orders/internal/core/logger"
	"storefront-orders/internal/core/metrics"
	"storefront-orders/internal/features/orders/domain"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const source = "scheduler"

// StatusApplier is the slice of the order repository the scheduler writes through.
// AdvanceStatus must refuse with domain.ErrOrderTerminal, atomically, when the
// order is already Delivered or Cancelled.
type StatusApplier interface {
	ApplyStatusUpdate(ctx context.Context, id string, status domain.OrderStatus, update domain.StatusUpdate) (*domain.Order, error)
	AdvanceStatus(ctx context.Context, id string, status domain.OrderStatus, update domain.StatusUpdate) (*domain.Order, error)
}

// Scheduler drives orders through their shipping stages. Each order owns one
// chained timer; stage deadlines are absolute (creation date plus the sum of
// the stage delays), so a late wake-up applies every overdue stage in order.
type Scheduler struct {
	mu      sync.Mutex
	tasks   map[string]*task
	stopped bool

	stages  []Stage
	policy  CancelPolicy
	applier StatusApplier
	clock   clockwork.Clock
	metrics *metrics.Metrics
	logger  *zap.Logger
}

type task struct {
	orderID string
	anchor  time.Time
	next    int
	timer   clockwork.Timer
}

// Options configures a Scheduler. Zero values fall back to defaults.
type Options struct {
	Stages []Stage
	// Policy set to CancelPolicyRevoke (the default) makes stages stop at a
	// terminal order instead of overwriting it.
	Policy  CancelPolicy
	Clock   clockwork.Clock
	Metrics *metrics.Metrics
}

// NewScheduler creates a scheduler that applies stages through applier.
func NewScheduler(applier StatusApplier, opts Options) *Scheduler {
	if len(opts.Stages) == 0 {
		opts.Stages = DefaultStages()
	}
	if opts.Policy == "" {
		opts.Policy = CancelPolicyRevoke
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewUnregistered()
	}

	return &Scheduler{
		tasks:   make(map[string]*task),
		stages:  append([]Stage(nil), opts.Stages...),
		policy:  opts.Policy,
		applier: applier,
		clock:   opts.Clock,
		metrics: opts.Metrics,
		logger:  logger.Named("lifecycle"),
	}
}

// Schedule arms every stage for an order created at createdAt. Scheduling an
// order twice replaces its previous timers.
func (s *Scheduler) Schedule(orderID string, createdAt time.Time) {
	s.start(orderID, createdAt, 0)
}

// Resume re-arms the stages still ahead of the order's current status.
// It reports whether anything was scheduled.
func (s *Scheduler) Resume(order domain.Order) bool {
	idx := resumeIndex(s.stages, order)
	if idx < 0 || idx >= len(s.stages) {
		return false
	}
	s.start(order.ID, order.Date, idx)
	return true
}

// Revoke implements ports.LifecycleScheduler. A stage callback that is
// already waiting observes the revocation and does nothing.
func (s *Scheduler) Revoke(orderID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revokeLocked(orderID)
}

// Pending implements ports.LifecycleScheduler.
func (s *Scheduler) Pending(orderID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[orderID]
	if !ok {
		return 0
	}
	return len(s.stages) - t.next
}

// Stop revokes every pending stage and rejects further scheduling.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	revoked := 0
	for id := range s.tasks {
		revoked += s.revokeLocked(id)
	}
	s.logger.Info("Lifecycle scheduler stopped", zap.Int("revoked_stages", revoked))
}

func (s *Scheduler) start(orderID string, anchor time.Time, from int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		s.logger.Warn("Lifecycle scheduler stopped, order not scheduled", zap.String("order_id", orderID))
		return
	}

	s.revokeLocked(orderID)

	t := &task{orderID: orderID, anchor: anchor, next: from}
	s.tasks[orderID] = t
	s.metrics.PendingLifecycles.Inc()

	s.logger.Debug("Lifecycle scheduled",
		zap.String("order_id", orderID),
		zap.String("next_status", string(s.stages[from].Status)),
	)
	s.armLocked(t)
}

// armLocked applies every overdue stage and sets a timer for the next one.
func (s *Scheduler) armLocked(t *task) {
	for t.next < len(s.stages) {
		delay := s.deadline(t, t.next).Sub(s.clock.Now())
		if delay > 0 {
			t.timer = s.clock.AfterFunc(delay, func() { s.fire(t) })
			return
		}
		if !s.applyLocked(t) {
			return
		}
	}
	s.finishLocked(t)
}

func (s *Scheduler) fire(t *task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tasks[t.orderID] != t {
		return
	}
	if s.applyLocked(t) {
		s.armLocked(t)
	}
}

// applyLocked writes the next stage and reports whether the task is still alive.
func (s *Scheduler) applyLocked(t *task) bool {
	stage := s.stages[t.next]
	t.next++

	apply := s.applier.ApplyStatusUpdate
	if s.policy == CancelPolicyRevoke {
		apply = s.applier.AdvanceStatus
	}
	_, err := apply(context.Background(), t.orderID, stage.Status, domain.StatusUpdate{
		Location: stage.Location,
		Details:  stage.Details,
	})
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		s.metrics.StagesDropped.WithLabelValues("not_found").Add(float64(len(s.stages) - t.next + 1))
		s.logger.Debug("Order no longer exists, lifecycle dropped",
			zap.String("order_id", t.orderID),
			zap.String("status", string(stage.Status)),
		)
		s.finishLocked(t)
		return false
	case errors.Is(err, domain.ErrOrderTerminal):
		s.metrics.StagesDropped.WithLabelValues("terminal").Add(float64(len(s.stages) - t.next + 1))
		s.logger.Info("Order already terminal, lifecycle dropped",
			zap.String("order_id", t.orderID),
			zap.String("status", string(stage.Status)),
		)
		s.finishLocked(t)
		return false
	case err != nil:
		s.metrics.StagesDropped.WithLabelValues("error").Inc()
		s.logger.Error("Failed to apply lifecycle stage",
			zap.String("order_id", t.orderID),
			zap.String("status", string(stage.Status)),
			zap.Error(err),
		)
		return true
	}

	s.metrics.StatusTransitions.WithLabelValues(string(stage.Status), source).Inc()
	s.logger.Info("Lifecycle stage applied",
		zap.String("order_id", t.orderID),
		zap.String("status", string(stage.Status)),
	)
	return true
}

func (s *Scheduler) finishLocked(t *task) {
	if s.tasks[t.orderID] == t {
		delete(s.tasks, t.orderID)
		s.metrics.PendingLifecycles.Dec()
	}
}

func (s *Scheduler) revokeLocked(orderID string) int {
	t, ok := s.tasks[orderID]
	if !ok {
		return 0
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	delete(s.tasks, orderID)
	s.metrics.PendingLifecycles.Dec()

	remaining := len(s.stages) - t.next
	s.metrics.StagesDropped.WithLabelValues("revoked").Add(float64(remaining))
	return remaining
}

func (s *Scheduler) deadline(t *task, stage int) time.Time {
	at := t.anchor
	for i := 0; i <= stage; i++ {
		at = at.Add(s.stages[i].After)
	}
	return at
}
