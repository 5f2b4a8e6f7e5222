package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// OrderStatus represents the current state of an order.
type OrderStatus string

const (
	// OrderStatusProcessing indicates the order was placed and is being prepared.
	OrderStatusProcessing OrderStatus = "Processing"
	// OrderStatusShipped indicates the order has left the warehouse.
	OrderStatusShipped OrderStatus = "Shipped"
	// OrderStatusInTransit indicates the order is moving towards the delivery location.
	OrderStatusInTransit OrderStatus = "In Transit"
	// OrderStatusDelivered indicates the order reached the customer.
	OrderStatusDelivered OrderStatus = "Delivered"
	// OrderStatusCancelled indicates the order was cancelled.
	OrderStatusCancelled OrderStatus = "Cancelled"
	// OrderStatusPendingPayment indicates the order waits for its payment.
	OrderStatusPendingPayment OrderStatus = "Pending Payment"
)

var knownStatuses = map[OrderStatus]bool{
	OrderStatusProcessing:     true,
	OrderStatusShipped:        true,
	OrderStatusInTransit:      true,
	OrderStatusDelivered:      true,
	OrderStatusCancelled:      true,
	OrderStatusPendingPayment: true,
}

// AllStatuses lists every status in lifecycle order.
func AllStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPendingPayment,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusInTransit,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// ParseOrderStatus converts a raw string into an OrderStatus, rejecting unknown values.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if !knownStatuses[status] {
		return "", fmt.Errorf("%w: unknown order status %q", ErrValidation, s)
	}
	return status, nil
}

// IsTerminal reports whether no further lifecycle transitions are expected.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// UnmarshalJSON rejects statuses outside the closed set.
func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	status, err := ParseOrderStatus(raw)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// PaymentMethod is the payment option chosen at checkout.
type PaymentMethod string

const (
	PaymentMethodCreditCard     PaymentMethod = "Credit Card"
	PaymentMethodPayPal         PaymentMethod = "PayPal"
	PaymentMethodCashOnDelivery PaymentMethod = "Cash on Delivery"
)

// ParsePaymentMethod converts a raw string into a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentMethodCreditCard, PaymentMethodPayPal, PaymentMethodCashOnDelivery:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown payment method %q", ErrValidation, s)
}

// PaymentStatus is the settlement state of an order's payment.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusPending PaymentStatus = "Pending"
)

// ParsePaymentStatus converts a raw string into a PaymentStatus.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch p := PaymentStatus(s); p {
	case PaymentStatusPaid, PaymentStatusPending:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown payment status %q", ErrValidation, s)
}

// OrderStatus derives the order status implied by a payment status.
func (p PaymentStatus) OrderStatus() OrderStatus {
	if p == PaymentStatusPaid {
		return OrderStatusProcessing
	}
	return OrderStatusPendingPayment
}

// OrderItem is a cart line captured at checkout.
type OrderItem struct {
	// ProductID identifies the catalog product.
	ProductID int64 `json:"productId"`
	// Name is the product name at checkout time.
	Name string `json:"name"`
	// Price is the unit price at checkout time.
	Price float64 `json:"price"`
	// Quantity is the number of units purchased.
	Quantity int `json:"quantity"`
	// Image is the URL of the product picture.
	Image string `json:"image"`
}

// Address is the shipping destination of an order.
type Address struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// TrackingUpdate is an immutable record of one status change.
type TrackingUpdate struct {
	// Date is the moment the update was recorded.
	Date time.Time `json:"date"`
	// Status is the order status set by this update.
	Status OrderStatus `json:"status"`
	// Location is where the order was when the update happened.
	Location string `json:"location"`
	// Details is a human readable description of the update.
	Details string `json:"details"`
}

// Order is a single checkout transaction and its evolving delivery and payment state.
type Order struct {
	ID              string           `json:"id"`
	Date            time.Time        `json:"date"`
	Items           []OrderItem      `json:"items"`
	Status          OrderStatus      `json:"status"`
	PaymentMethod   PaymentMethod    `json:"paymentMethod"`
	PaymentStatus   PaymentStatus    `json:"paymentStatus"`
	TrackingNumber  string           `json:"trackingNumber"`
	TrackingUpdates []TrackingUpdate `json:"trackingUpdates"`
	Subtotal        float64          `json:"subtotal"`
	Shipping        float64          `json:"shipping"`
	Tax             float64          `json:"tax"`
	Total           float64          `json:"total"`
	ShippingAddress Address          `json:"shippingAddress"`
}

// Clone returns a deep copy so callers never share slices with the store.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = append([]OrderItem(nil), o.Items...)
	c.TrackingUpdates = append([]TrackingUpdate(nil), o.TrackingUpdates...)
	return &c
}

// ApplyStatus sets the status and appends the matching tracking record.
func (o *Order) ApplyStatus(status OrderStatus, at time.Time, location, details string) TrackingUpdate {
	update := TrackingUpdate{
		Date:     at,
		Status:   status,
		Location: location,
		Details:  details,
	}
	o.Status = status
	o.TrackingUpdates = append(o.TrackingUpdates, update)
	return update
}

// LastUpdate returns the most recent tracking record, if any.
func (o *Order) LastUpdate() (TrackingUpdate, bool) {
	if len(o.TrackingUpdates) == 0 {
		return TrackingUpdate{}, false
	}
	return o.TrackingUpdates[len(o.TrackingUpdates)-1], true
}

// StatusUpdate carries the descriptive part of a tracking record.
type StatusUpdate struct {
	Location string `json:"location"`
	Details  string `json:"details"`
}
