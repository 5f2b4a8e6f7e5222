package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront-orders/internal/core/logger"
	"storefront-orders/internal/core/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	queueSize      = 256
	publishTimeout = 5 * time.Second
)

// Dispatcher fans tracking events out to every sink from a single background
// worker, so callers never block on a slow sink and events keep their order.
type Dispatcher struct {
	sinks   []Publisher
	queue   chan TrackingEvent
	done    chan struct{}
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts a dispatcher for the given sinks.
func NewDispatcher(m *metrics.Metrics, sinks ...Publisher) *Dispatcher {
	if m == nil {
		m = metrics.NewUnregistered()
	}
	d := &Dispatcher{
		sinks:   sinks,
		queue:   make(chan TrackingEvent, queueSize),
		done:    make(chan struct{}),
		logger:  logger.Named("events"),
		metrics: m,
	}
	go d.run()
	return d
}

// Dispatch enqueues an event. It never blocks: when the queue is full the
// event is dropped and logged.
func (d *Dispatcher) Dispatch(event TrackingEvent) {
	if len(d.sinks) == 0 {
		return
	}
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.Type == "" {
		event.Type = TypeOrderTracking
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return
	}

	select {
	case d.queue <- event:
	default:
		d.metrics.EventsPublished.WithLabelValues("queue", "dropped").Inc()
		d.logger.Warn("Event queue full, dropping tracking event",
			zap.String("order_id", event.OrderID),
			zap.String("status", event.Status),
		)
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for event := range d.queue {
		for _, sink := range d.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			err := sink.Publish(ctx, event)
			cancel()

			if err != nil {
				d.metrics.EventsPublished.WithLabelValues(sink.Name(), "failed").Inc()
				d.logger.Warn("Failed to publish tracking event",
					zap.String("sink", sink.Name()),
					zap.String("event_id", event.EventID),
					zap.String("order_id", event.OrderID),
					zap.Error(err),
				)
				continue
			}
			d.metrics.EventsPublished.WithLabelValues(sink.Name(), "sent").Inc()
		}
	}
}

// Close drains queued events and closes every sink.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done

	var errs []error
	for _, sink := range d.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
