package ports

import (
	"context"
	"time"

	"storefront-orders/internal/features/orders/domain"
)

// OrderRepository owns the order collection behind a single-writer API.
// This is a Secondary Port (Driven Port).
type OrderRepository interface {
	// Create places a new order from a checkout snapshot.
	Create(ctx context.Context, checkout domain.Checkout) (*domain.Order, error)
	// Get returns the order with the given id or domain.ErrOrderNotFound.
	Get(ctx context.Context, id string) (*domain.Order, error)
	// FindByTrackingNumber returns the order carrying the tracking number or domain.ErrOrderNotFound.
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Order, error)
	// List returns every order, newest first.
	List(ctx context.Context) ([]domain.Order, error)
	// ApplyStatusUpdate sets the status and appends exactly one tracking record.
	ApplyStatusUpdate(ctx context.Context, id string, status domain.OrderStatus, update domain.StatusUpdate) (*domain.Order, error)
	// UpdatePayment sets the payment fields, derives the status and appends exactly one tracking record.
	UpdatePayment(ctx context.Context, id string, method domain.PaymentMethod, status domain.PaymentStatus) (*domain.Order, error)
}

// LifecycleScheduler simulates shipping progress with revocable delayed transitions.
type LifecycleScheduler interface {
	// Schedule arms the lifecycle stages of an order created at createdAt.
	Schedule(orderID string, createdAt time.Time)
	// Revoke stops every pending stage of an order and returns how many were dropped.
	Revoke(orderID string) int
	// Pending returns the number of stages still outstanding for an order.
	Pending(orderID string) int
}

// OrderService defines the primary port used by the HTTP layer.
type OrderService interface {
	PlaceOrder(ctx context.Context, checkout domain.Checkout) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	Stats(ctx context.Context) (domain.Stats, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, update domain.StatusUpdate) (*domain.Order, error)
	UpdatePayment(ctx context.Context, id string, method domain.PaymentMethod, status domain.PaymentStatus) (*domain.Order, error)
	Cancel(ctx context.Context, id string) (*domain.Order, error)
}
