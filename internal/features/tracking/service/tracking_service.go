package service

import (
	"context"
	"errors"
	"fmt"

	"storefront-orders/internal/features/tracking/domain"
	"storefront-orders/internal/features/tracking/ports"
)

// ErrCarrierNotSupported is returned when no provider supports the requested carrier.
var ErrCarrierNotSupported = errors.New("carrier not supported")

// TrackingService orchestrates tracking requests across carrier providers.
type TrackingService struct {
	providers      []ports.TrackingProvider
	defaultCarrier string
}

// NewTrackingService creates a new TrackingService. Requests without a
// carrier are routed to defaultCarrier.
func NewTrackingService(defaultCarrier string, providers ...ports.TrackingProvider) *TrackingService {
	return &TrackingService{
		providers:      providers,
		defaultCarrier: defaultCarrier,
	}
}

// GetTrackingHistory retrieves tracking history for a given tracking number and carrier.
func (s *TrackingService) GetTrackingHistory(ctx context.Context, trackingNumber, carrier string) (*domain.TrackingHistory, error) {
	if carrier == "" {
		carrier = s.defaultCarrier
	}

	for _, provider := range s.providers {
		if provider.SupportsCarrier(carrier) {
			history, err := provider.GetTrackingHistory(ctx, trackingNumber)
			if err != nil {
				return nil, fmt.Errorf("failed to get tracking from provider: %w", err)
			}
			return history, nil
		}
	}

	return nil, ErrCarrierNotSupported
}
