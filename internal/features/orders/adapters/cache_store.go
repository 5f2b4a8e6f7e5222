package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront-orders/internal/core/cache"
	"storefront-orders/internal/core/events"
	"storefront-orders/internal/core/logger"
	"storefront-orders/internal/core/metrics"
	"storefront-orders/internal/features/orders/domain"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// DefaultCacheKey is the key holding the whole order collection.
const DefaultCacheKey = "userOrders"

// EventSink receives a tracking event for every appended tracking update.
type EventSink interface {
	Dispatch(event events.TrackingEvent)
}

// StoreOptions configures a CacheOrderStore. Zero values fall back to defaults.
type StoreOptions struct {
	// Key is the cache key of the collection.
	Key string
	// Pricing is applied to the cart at checkout.
	Pricing domain.Pricing
	// Clock stamps creation dates and tracking updates.
	Clock clockwork.Clock
	// IDs generates order ids and tracking numbers.
	IDs IDGenerator
	// Events receives tracking events; nil disables publishing.
	Events EventSink
	// Metrics records creation and persistence outcomes.
	Metrics *metrics.Metrics
}

// CacheOrderStore implements ports.OrderRepository. It keeps the collection
// in memory behind one mutex and writes the whole collection to the cache
// after every mutation (last write wins).
type CacheOrderStore struct {
	mu     sync.Mutex
	orders []*domain.Order // newest first

	cache   cache.Cache
	key     string
	pricing domain.Pricing
	clock   clockwork.Clock
	ids     IDGenerator
	events  EventSink
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewCacheOrderStore creates an empty store backed by c. Call Load to restore
// a previously persisted collection.
func NewCacheOrderStore(c cache.Cache, opts StoreOptions) *CacheOrderStore {
	if opts.Key == "" {
		opts.Key = DefaultCacheKey
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.IDs == nil {
		opts.IDs = RandomIDGenerator{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewUnregistered()
	}

	return &CacheOrderStore{
		cache:   c,
		key:     opts.Key,
		pricing: opts.Pricing,
		clock:   opts.Clock,
		ids:     opts.IDs,
		events:  opts.Events,
		metrics: opts.Metrics,
		logger:  logger.Named("order_store"),
	}
}

// Load replaces the in-memory collection with the persisted one.
// A missing key yields an empty collection.
func (s *CacheOrderStore) Load(ctx context.Context) error {
	data, err := s.cache.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			s.mu.Lock()
			s.orders = nil
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	var stored []*domain.Order
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %v", domain.ErrPersistence, s.key, err)
	}
	for i, o := range stored {
		if o == nil {
			return fmt.Errorf("%w: %s holds a null order at index %d", domain.ErrPersistence, s.key, i)
		}
	}

	s.mu.Lock()
	s.orders = stored
	s.mu.Unlock()

	s.logger.Info("Order collection loaded", zap.Int("orders", len(stored)))
	return nil
}

// Flush rewrites the whole collection to the cache.
func (s *CacheOrderStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx)
}

// Create implements ports.OrderRepository.
func (s *CacheOrderStore) Create(ctx context.Context, checkout domain.Checkout) (*domain.Order, error) {
	if err := checkout.Validate(); err != nil {
		return nil, err
	}

	totals := s.pricing.Compute(checkout.Items)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().UTC()
	order := &domain.Order{
		ID:              s.uniqueIDLocked(),
		Date:            now,
		Items:           append([]domain.OrderItem(nil), checkout.Items...),
		PaymentMethod:   checkout.PaymentMethod,
		PaymentStatus:   domain.PaymentStatusPaid,
		TrackingNumber:  s.ids.TrackingNumber(),
		Subtotal:        totals.Subtotal,
		Shipping:        totals.Shipping,
		Tax:             totals.Tax,
		Total:           totals.Total,
		ShippingAddress: checkout.Address,
	}
	update := order.ApplyStatus(domain.OrderStatusProcessing, now, "Warehouse", "Order has been processed")

	s.orders = append([]*domain.Order{order}, s.orders...)
	s.metrics.OrdersCreated.Inc()
	s.persistBestEffortLocked(ctx, order.ID)
	s.publishLocked(order, update)

	return order.Clone(), nil
}

// Get implements ports.OrderRepository.
func (s *CacheOrderStore) Get(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil, domain.ErrOrderNotFound
	}
	return s.orders[idx].Clone(), nil
}

// FindByTrackingNumber implements ports.OrderRepository.
func (s *CacheOrderStore) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.TrackingNumber == trackingNumber {
			return o.Clone(), nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

// List implements ports.OrderRepository.
func (s *CacheOrderStore) List(ctx context.Context) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, *o.Clone())
	}
	return out, nil
}

// ApplyStatusUpdate implements ports.OrderRepository.
func (s *CacheOrderStore) ApplyStatusUpdate(ctx context.Context, id string, status domain.OrderStatus, update domain.StatusUpdate) (*domain.Order, error) {
	return s.applyStatus(ctx, id, status, update, false)
}

// AdvanceStatus applies a status update unless the order is already terminal,
// in which case it returns domain.ErrOrderTerminal and leaves the order untouched.
// The check and the write happen under one lock, so a concurrent cancellation
// is never overwritten.
func (s *CacheOrderStore) AdvanceStatus(ctx context.Context, id string, status domain.OrderStatus, update domain.StatusUpdate) (*domain.Order, error) {
	return s.applyStatus(ctx, id, status, update, true)
}

func (s *CacheOrderStore) applyStatus(ctx context.Context, id string, status domain.OrderStatus, update domain.StatusUpdate, unlessTerminal bool) (*domain.Order, error) {
	if _, err := domain.ParseOrderStatus(string(status)); err != nil {
		return nil, err
	}
	if update.Location == "" {
		update.Location = "Warehouse"
	}
	if update.Details == "" {
		update.Details = fmt.Sprintf("Order status updated to %s", status)
	}

	return s.mutate(ctx, id, func(o *domain.Order, now time.Time) (domain.TrackingUpdate, error) {
		if unlessTerminal && o.Status.IsTerminal() {
			return domain.TrackingUpdate{}, fmt.Errorf("%w: %s is %s", domain.ErrOrderTerminal, id, o.Status)
		}
		return o.ApplyStatus(status, now, update.Location, update.Details), nil
	})
}

// UpdatePayment implements ports.OrderRepository. Payment changes on a
// Delivered or Cancelled order are refused with domain.ErrOrderTerminal.
func (s *CacheOrderStore) UpdatePayment(ctx context.Context, id string, method domain.PaymentMethod, status domain.PaymentStatus) (*domain.Order, error) {
	if _, err := domain.ParsePaymentMethod(string(method)); err != nil {
		return nil, err
	}
	if _, err := domain.ParsePaymentStatus(string(status)); err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(o *domain.Order, now time.Time) (domain.TrackingUpdate, error) {
		if o.Status.IsTerminal() {
			return domain.TrackingUpdate{}, fmt.Errorf("%w: %s is %s", domain.ErrOrderTerminal, id, o.Status)
		}
		o.PaymentMethod = method
		o.PaymentStatus = status
		return o.ApplyStatus(status.OrderStatus(), now, "System",
			fmt.Sprintf("Payment updated: %s (%s)", method, status)), nil
	})
}

// mutate applies fn to a copy of the order and swaps the copy in at the same
// index, so a failure never leaves a half-applied order behind.
func (s *CacheOrderStore) mutate(ctx context.Context, id string, fn func(o *domain.Order, now time.Time) (domain.TrackingUpdate, error)) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil, domain.ErrOrderNotFound
	}

	updated := s.orders[idx].Clone()
	update, err := fn(updated, s.clock.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.orders[idx] = updated

	s.persistBestEffortLocked(ctx, id)
	s.publishLocked(updated, update)

	return updated.Clone(), nil
}

func (s *CacheOrderStore) indexLocked(id string) int {
	for i, o := range s.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func (s *CacheOrderStore) uniqueIDLocked() string {
	for {
		id := s.ids.OrderID()
		if s.indexLocked(id) < 0 {
			return id
		}
	}
}

// persistBestEffortLocked writes the collection and downgrades failures to a
// warning: the in-memory collection stays authoritative and the next write
// (or Flush) retries with the full state.
func (s *CacheOrderStore) persistBestEffortLocked(ctx context.Context, orderID string) {
	if err := s.persistLocked(ctx); err != nil {
		s.logger.Warn("Order collection not persisted, will retry on next write",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
	}
}

func (s *CacheOrderStore) persistLocked(ctx context.Context) error {
	orders := s.orders
	if orders == nil {
		orders = []*domain.Order{}
	}
	data, err := json.Marshal(orders)
	if err != nil {
		s.metrics.PersistenceFailures.Inc()
		return fmt.Errorf("%w: failed to encode orders: %v", domain.ErrPersistence, err)
	}
	if err := s.cache.Set(ctx, s.key, data, 0); err != nil {
		s.metrics.PersistenceFailures.Inc()
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return nil
}

func (s *CacheOrderStore) publishLocked(o *domain.Order, update domain.TrackingUpdate) {
	if s.events == nil {
		return
	}
	s.events.Dispatch(events.TrackingEvent{
		Type:           events.TypeOrderTracking,
		OrderID:        o.ID,
		TrackingNumber: o.TrackingNumber,
		Status:         string(update.Status),
		Location:       update.Location,
		Details:        update.Details,
		OccurredAt:     update.Date,
	})
}
