package domain

import (
	"errors"
	"time"
)

// ErrTrackingNotFound is returned when no shipment carries the tracking number.
var ErrTrackingNotFound = errors.New("tracking not found")

// TrackingStatus represents the current global status of a shipment.
type TrackingStatus string

const (
	// TrackingStatusPendingPayment indicates the shipment waits for the payment.
	TrackingStatusPendingPayment TrackingStatus = "PENDING_PAYMENT"
	// TrackingStatusProcessing indicates the shipment is being prepared.
	TrackingStatusProcessing TrackingStatus = "PROCESSING"
	// TrackingStatusOrigin indicates the shipment left the warehouse.
	TrackingStatusOrigin TrackingStatus = "ORIGIN"
	// TrackingStatusInTransit indicates the shipment is on its way.
	TrackingStatusInTransit TrackingStatus = "IN_TRANSIT"
	// TrackingStatusCompleted indicates the shipment has been delivered.
	TrackingStatusCompleted TrackingStatus = "COMPLETED"
	// TrackingStatusCancelled indicates the shipment will not be delivered.
	TrackingStatusCancelled TrackingStatus = "CANCELLED"
	// TrackingStatusUnknown is used for statuses with no shipment meaning.
	TrackingStatusUnknown TrackingStatus = "UNKNOWN"
)

var orderStatusMap = map[string]TrackingStatus{
	"Pending Payment": TrackingStatusPendingPayment,
	"Processing":      TrackingStatusProcessing,
	"Shipped":         TrackingStatusOrigin,
	"In Transit":      TrackingStatusInTransit,
	"Delivered":       TrackingStatusCompleted,
	"Cancelled":       TrackingStatusCancelled,
}

// StatusFromOrder maps an order status onto the shipment status.
func StatusFromOrder(status string) TrackingStatus {
	if s, ok := orderStatusMap[status]; ok {
		return s
	}
	return TrackingStatusUnknown
}

// TrackingHistory represents the complete tracking information for a shipment.
type TrackingHistory struct {
	// TrackingNumber identifies the shipment.
	TrackingNumber string `json:"tracking_number"`
	// OrderID is the order the shipment belongs to.
	OrderID string `json:"order_id"`
	// GlobalStatus is the overall status of the shipment.
	GlobalStatus TrackingStatus `json:"global_status"`
	// History contains the chronological events for the shipment.
	History []TrackingEvent `json:"history"`
}

// TrackingEvent represents a single event in the shipment's tracking history.
type TrackingEvent struct {
	// Date is the timestamp when the event occurred.
	Date time.Time `json:"date"`
	// Text is the description of the tracking event.
	Text string `json:"text"`
	// City is the location where the event occurred.
	City string `json:"city"`
	// Code is the shipment status set by this event.
	Code TrackingStatus `json:"code"`
}
