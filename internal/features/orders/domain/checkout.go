package domain

import (
	"fmt"
	"math"
)

// Pricing holds the checkout rates applied to a cart.
type Pricing struct {
	// TaxRate is the fraction of the subtotal charged as tax (0.10 = 10%).
	TaxRate float64
	// ShippingFee is a flat shipping charge.
	ShippingFee float64
}

// Totals are the amounts computed once at checkout.
type Totals struct {
	Subtotal float64
	Shipping float64
	Tax      float64
	Total    float64
}

// Checkout is the cart snapshot and customer input used to place an order.
type Checkout struct {
	Items         []OrderItem
	Address       Address
	PaymentMethod PaymentMethod
}

// Validate rejects an empty cart and a payment method outside the closed set.
// Line items are taken as given; their shape is checked where requests are decoded.
func (c Checkout) Validate() error {
	if len(c.Items) == 0 {
		return fmt.Errorf("%w: cart is empty", ErrValidation)
	}
	if _, err := ParsePaymentMethod(string(c.PaymentMethod)); err != nil {
		return err
	}
	return nil
}

// Compute derives the order totals for the given items.
func (p Pricing) Compute(items []OrderItem) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}
	subtotal = roundCents(subtotal)
	shipping := roundCents(p.ShippingFee)
	tax := roundCents(subtotal * p.TaxRate)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    roundCents(subtotal + shipping + tax),
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
