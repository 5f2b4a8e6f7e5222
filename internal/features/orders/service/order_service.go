package service

import (
	"context"
	"fmt"

	"storefront-orders/internal/core/logger"
	"storefront-orders/internal/core/metrics"
	"storefront-orders/internal/features/orders/domain"
	"storefront-orders/internal/features/orders/lifecycle"
	"storefront-orders/internal/features/orders/ports"

	"go.uber.org/zap"
)

const source = "api"

// cancelUpdate is the tracking record written when an order is cancelled.
var cancelUpdate = domain.StatusUpdate{
	Location: "System",
	Details:  "Order has been cancelled",
}

// OrderServiceImpl implements ports.OrderService.
type OrderServiceImpl struct {
	repo      ports.OrderRepository
	scheduler ports.LifecycleScheduler
	policy    lifecycle.CancelPolicy
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewOrderService creates a new OrderServiceImpl.
func NewOrderService(repo ports.OrderRepository, scheduler ports.LifecycleScheduler, policy lifecycle.CancelPolicy, m *metrics.Metrics) *OrderServiceImpl {
	if policy == "" {
		policy = lifecycle.CancelPolicyRevoke
	}
	if m == nil {
		m = metrics.NewUnregistered()
	}
	return &OrderServiceImpl{
		repo:      repo,
		scheduler: scheduler,
		policy:    policy,
		metrics:   m,
		logger:    logger.Named("order_service"),
	}
}

// PlaceOrder creates the order and arms its shipping lifecycle.
func (s *OrderServiceImpl) PlaceOrder(ctx context.Context, checkout domain.Checkout) (*domain.Order, error) {
	order, err := s.repo.Create(ctx, checkout)
	if err != nil {
		return nil, fmt.Errorf("service: failed to place order: %w", err)
	}

	s.metrics.StatusTransitions.WithLabelValues(string(order.Status), source).Inc()
	s.scheduler.Schedule(order.ID, order.Date)

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("tracking_number", order.TrackingNumber),
		zap.Float64("total", order.Total),
	)
	return order, nil
}

// GetOrder retrieves a single order.
func (s *OrderServiceImpl) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get order %s: %w", id, err)
	}
	return order, nil
}

// ListOrders returns every order, newest first.
func (s *OrderServiceImpl) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, nil
}

// Stats summarizes the collection.
func (s *OrderServiceImpl) Stats(ctx context.Context) (domain.Stats, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("service: failed to compute stats: %w", err)
	}
	return domain.ComputeStats(orders), nil
}

// UpdateStatus applies a manual status change. Under the revoke policy a
// terminal status also drops the pending lifecycle stages.
func (s *OrderServiceImpl) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, update domain.StatusUpdate) (*domain.Order, error) {
	if _, err := domain.ParseOrderStatus(string(status)); err != nil {
		return nil, err
	}
	if status.IsTerminal() {
		s.revoke(id)
	}
	return s.apply(ctx, id, status, update)
}

// UpdatePayment changes the payment fields and derives the order status.
// Delivered and Cancelled orders refuse the change with domain.ErrOrderTerminal.
func (s *OrderServiceImpl) UpdatePayment(ctx context.Context, id string, method domain.PaymentMethod, status domain.PaymentStatus) (*domain.Order, error) {
	order, err := s.repo.UpdatePayment(ctx, id, method, status)
	if err != nil {
		return nil, fmt.Errorf("service: failed to update payment of %s: %w", id, err)
	}

	s.metrics.StatusTransitions.WithLabelValues(string(order.Status), source).Inc()
	s.logger.Info("Order payment updated",
		zap.String("order_id", id),
		zap.String("payment_method", string(method)),
		zap.String("payment_status", string(status)),
	)
	return order, nil
}

// Cancel marks the order cancelled through the regular status path.
// Cancellation is accepted from any status.
func (s *OrderServiceImpl) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	s.revoke(id)
	return s.apply(ctx, id, domain.OrderStatusCancelled, cancelUpdate)
}

func (s *OrderServiceImpl) apply(ctx context.Context, id string, status domain.OrderStatus, update domain.StatusUpdate) (*domain.Order, error) {
	order, err := s.repo.ApplyStatusUpdate(ctx, id, status, update)
	if err != nil {
		return nil, fmt.Errorf("service: failed to set status %s on %s: %w", status, id, err)
	}

	s.metrics.StatusTransitions.WithLabelValues(string(status), source).Inc()
	s.logger.Info("Order status updated",
		zap.String("order_id", id),
		zap.String("status", string(status)),
	)
	return order, nil
}

func (s *OrderServiceImpl) revoke(id string) {
	if s.policy != lifecycle.CancelPolicyRevoke {
		return
	}
	if n := s.scheduler.Revoke(id); n > 0 {
		s.logger.Debug("Pending lifecycle stages revoked",
			zap.String("order_id", id),
			zap.Int("stages", n),
		)
	}
}
