package handler

import (
	"fmt"
	"reflect"
	"strings"

	"storefront-orders/internal/features/orders/domain"

	"github.com/go-playground/validator/v10"
)

// OrderItemRequest is one cart line in a checkout request.
type OrderItemRequest struct {
	ProductID int64   `json:"productId" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Price     float64 `json:"price" validate:"gte=0"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
	Image     string  `json:"image"`
}

// AddressRequest is the shipping address of a checkout request.
type AddressRequest struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state"`
	Zip     string `json:"zip" validate:"required"`
	Country string `json:"country" validate:"required"`
}

// CreateOrderRequest represents the request body for placing an order.
type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress AddressRequest     `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod" validate:"required"`
}

// Checkout converts the request into the domain checkout snapshot.
func (r CreateOrderRequest) Checkout() domain.Checkout {
	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, domain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}
	return domain.Checkout{
		Items: items,
		Address: domain.Address{
			Name:    r.ShippingAddress.Name,
			Address: r.ShippingAddress.Address,
			City:    r.ShippingAddress.City,
			State:   r.ShippingAddress.State,
			Zip:     r.ShippingAddress.Zip,
			Country: r.ShippingAddress.Country,
		},
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
	}
}

// UpdateStatusRequest represents the request body for a manual status change.
type UpdateStatusRequest struct {
	Status   string `json:"status" validate:"required"`
	Location string `json:"location"`
	Details  string `json:"details"`
}

// UpdatePaymentRequest represents the request body for a payment change.
type UpdatePaymentRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required"`
	PaymentStatus string `json:"paymentStatus" validate:"required"`
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// formatValidationErrors turns validator errors into client readable lines.
func formatValidationErrors(errs validator.ValidationErrors) []string {
	details := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			details = append(details, fmt.Sprintf("%s is required", field))
		case "min":
			details = append(details, fmt.Sprintf("%s must contain at least %s element(s)", field, fe.Param()))
		case "gt":
			details = append(details, fmt.Sprintf("%s must be greater than %s", field, fe.Param()))
		case "gte":
			details = append(details, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		default:
			details = append(details, fmt.Sprintf("%s failed on %s", field, fe.Tag()))
		}
	}
	return details
}
