package ports

import (
	"context"

	"storefront-orders/internal/features/tracking/domain"
)

// TrackingProvider defines the interface for carrier tracking implementations.
type TrackingProvider interface {
	// GetTrackingHistory retrieves the complete tracking history for a given tracking number.
	GetTrackingHistory(ctx context.Context, trackingNumber string) (*domain.TrackingHistory, error)
	// SupportsCarrier returns true if this provider supports the given carrier name.
	SupportsCarrier(carrier string) bool
}
