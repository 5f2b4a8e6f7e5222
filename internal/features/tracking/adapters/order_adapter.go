package adapters

import (
	"context"
	"errors"
	"fmt"

	ordersdomain "storefront-orders/internal/features/orders/domain"
	"storefront-orders/internal/features/tracking/domain"
)

// CarrierStorefront is the carrier name of shipments simulated by the order lifecycle.
const CarrierStorefront = "storefront"

// OrderFinder is the slice of the order repository needed for lookups.
type OrderFinder interface {
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*ordersdomain.Order, error)
}

// OrderTrackingAdapter implements ports.TrackingProvider on top of the
// order collection: the tracking updates of an order are its shipment history.
type OrderTrackingAdapter struct {
	orders OrderFinder
}

// NewOrderTrackingAdapter creates a new OrderTrackingAdapter.
func NewOrderTrackingAdapter(orders OrderFinder) *OrderTrackingAdapter {
	return &OrderTrackingAdapter{orders: orders}
}

// SupportsCarrier implements ports.TrackingProvider.
func (a *OrderTrackingAdapter) SupportsCarrier(carrier string) bool {
	return carrier == CarrierStorefront
}

// GetTrackingHistory implements ports.TrackingProvider.
func (a *OrderTrackingAdapter) GetTrackingHistory(ctx context.Context, trackingNumber string) (*domain.TrackingHistory, error) {
	order, err := a.orders.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		if errors.Is(err, ordersdomain.ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTrackingNotFound, trackingNumber)
		}
		return nil, err
	}

	history := make([]domain.TrackingEvent, 0, len(order.TrackingUpdates))
	for _, u := range order.TrackingUpdates {
		history = append(history, domain.TrackingEvent{
			Date: u.Date,
			Text: u.Details,
			City: u.Location,
			Code: domain.StatusFromOrder(string(u.Status)),
		})
	}

	return &domain.TrackingHistory{
		TrackingNumber: order.TrackingNumber,
		OrderID:        order.ID,
		GlobalStatus:   domain.StatusFromOrder(string(order.Status)),
		History:        history,
	}, nil
}
