package events

import (
	"context"
	"time"
)

// TypeOrderTracking is the type of events emitted for every tracking update.
const TypeOrderTracking = "order.tracking"

// TrackingEvent is the wire form of one appended tracking update.
type TrackingEvent struct {
	EventID        string    `json:"event_id"`
	Type           string    `json:"type"`
	OrderID        string    `json:"order_id"`
	TrackingNumber string    `json:"tracking_number"`
	Status         string    `json:"status"`
	Location       string    `json:"location"`
	Details        string    `json:"details"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher is a sink for tracking events.
type Publisher interface {
	// Name identifies the sink in logs and metrics.
	Name() string
	// Publish delivers a single event.
	Publish(ctx context.Context, event TrackingEvent) error
	// Close releases the sink's resources.
	Close() error
}
