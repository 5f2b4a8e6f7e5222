package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-orders/internal/features/orders/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of ports.OrderService
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, checkout domain.Checkout) (*domain.Order, error) {
	args := m.Called(ctx, checkout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderService) Stats(ctx context.Context) (domain.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Stats), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, update domain.StatusUpdate) (*domain.Order, error) {
	args := m.Called(ctx, id, status, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderService) UpdatePayment(ctx context.Context, id string, method domain.PaymentMethod, status domain.PaymentStatus) (*domain.Order, error) {
	args := m.Called(ctx, id, method, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func setupApp(service *MockOrderService) *fiber.App {
	app := fiber.New()
	NewOrderHandler(service).RegisterRoutes(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()
	var out ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func validCreateRequest() CreateOrderRequest {
	return CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: 7, Name: "Wireless Headphones", Price: 10, Quantity: 2},
		},
		ShippingAddress: AddressRequest{
			Name: "John Doe", Address: "123 Main St", City: "New York", State: "NY", Zip: "10001", Country: "USA",
		},
		PaymentMethod: "Credit Card",
	}
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		req := validCreateRequest()
		created := &domain.Order{ID: "ORD-1", Status: domain.OrderStatusProcessing, Total: 22}
		mockService.On("PlaceOrder", mock.Anything, req.Checkout()).Return(created, nil).Once()

		resp := doJSON(t, app, "POST", "/orders", req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var got domain.Order
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "ORD-1", got.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("EmptyCart", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		req := validCreateRequest()
		req.Items = nil

		resp := doJSON(t, app, "POST", "/orders", req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "Validation failed", body.Message)
		assert.Contains(t, body.Details, "items is required")
		mockService.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
	})

	t.Run("ZeroQuantity", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		req := validCreateRequest()
		req.Items[0].Quantity = 0

		resp := doJSON(t, app, "POST", "/orders", req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeError(t, resp).Details, "items[0].quantity must be greater than 0")
	})

	t.Run("MalformedBody", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		req := httptest.NewRequest("POST", "/orders", bytes.NewReader([]byte("{")))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid request body", decodeError(t, resp).Message)
	})

	t.Run("UnknownPaymentMethod", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		req := validCreateRequest()
		req.PaymentMethod = "Gift Card"
		mockService.On("PlaceOrder", mock.Anything, req.Checkout()).
			Return(nil, fmt.Errorf("%w: unknown payment method", domain.ErrValidation)).Once()

		resp := doJSON(t, app, "POST", "/orders", req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestOrderHandler_ListOrders(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		mockService.On("ListOrders", mock.Anything).Return([]domain.Order{{ID: "ORD-2"}, {ID: "ORD-1"}}, nil).Once()

		resp := doJSON(t, app, "GET", "/orders", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got []domain.Order
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		require.Len(t, got, 2)
		assert.Equal(t, "ORD-2", got[0].ID)
	})

	t.Run("InternalError", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		mockService.On("ListOrders", mock.Anything).Return(nil, errors.New("boom")).Once()

		resp := doJSON(t, app, "GET", "/orders", nil)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Internal Server Error", decodeError(t, resp).Message)
	})
}

func TestOrderHandler_Stats(t *testing.T) {
	mockService := new(MockOrderService)
	app := setupApp(mockService)

	stats := domain.Stats{Orders: 1, ByStatus: map[domain.OrderStatus]int{domain.OrderStatusShipped: 1}, Revenue: 22}
	mockService.On("Stats", mock.Anything).Return(stats, nil).Once()

	resp := doJSON(t, app, "GET", "/orders/stats", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var got domain.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 1, got.ByStatus[domain.OrderStatusShipped])
	mockService.AssertNotCalled(t, "GetOrder", mock.Anything, mock.Anything)
}

func TestOrderHandler_GetOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		mockService.On("GetOrder", mock.Anything, "ORD-1").Return(&domain.Order{ID: "ORD-1"}, nil).Once()

		resp := doJSON(t, app, "GET", "/orders/ORD-1", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		mockService.On("GetOrder", mock.Anything, "ORD-X").
			Return(nil, fmt.Errorf("service: %w", domain.ErrOrderNotFound)).Once()

		resp := doJSON(t, app, "GET", "/orders/ORD-X", nil)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Order not found", decodeError(t, resp).Message)
	})
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		update := domain.StatusUpdate{Location: "Hub", Details: "Sorted"}
		mockService.On("UpdateStatus", mock.Anything, "ORD-1", domain.OrderStatusInTransit, update).
			Return(&domain.Order{ID: "ORD-1", Status: domain.OrderStatusInTransit}, nil).Once()

		resp := doJSON(t, app, "PUT", "/orders/ORD-1/status", UpdateStatusRequest{
			Status: "In Transit", Location: "Hub", Details: "Sorted",
		})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockService.AssertExpectations(t)
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		resp := doJSON(t, app, "PUT", "/orders/ORD-1/status", UpdateStatusRequest{Status: "Lost"})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockService.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		mockService.On("UpdateStatus", mock.Anything, "ORD-X", domain.OrderStatusShipped, domain.StatusUpdate{}).
			Return(nil, domain.ErrOrderNotFound).Once()

		resp := doJSON(t, app, "PUT", "/orders/ORD-X/status", UpdateStatusRequest{Status: "Shipped"})

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestOrderHandler_UpdatePayment(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		mockService.On("UpdatePayment", mock.Anything, "ORD-1", domain.PaymentMethodCashOnDelivery, domain.PaymentStatusPending).
			Return(&domain.Order{ID: "ORD-1", Status: domain.OrderStatusPendingPayment}, nil).Once()

		resp := doJSON(t, app, "PUT", "/orders/ORD-1/payment", UpdatePaymentRequest{
			PaymentMethod: "Cash on Delivery", PaymentStatus: "Pending",
		})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockService.AssertExpectations(t)
	})

	t.Run("TerminalOrder", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		mockService.On("UpdatePayment", mock.Anything, "ORD-1", domain.PaymentMethodPayPal, domain.PaymentStatusPaid).
			Return(nil, fmt.Errorf("service: failed to update payment of ORD-1: %w", domain.ErrOrderTerminal)).Once()

		resp := doJSON(t, app, "PUT", "/orders/ORD-1/payment", UpdatePaymentRequest{
			PaymentMethod: "PayPal", PaymentStatus: "Paid",
		})

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Contains(t, decodeError(t, resp).Message, "terminal status")
		mockService.AssertExpectations(t)
	})

	t.Run("MissingFields", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		resp := doJSON(t, app, "PUT", "/orders/ORD-1/payment", UpdatePaymentRequest{PaymentMethod: "PayPal"})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeError(t, resp).Details, "paymentStatus is required")
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		resp := doJSON(t, app, "PUT", "/orders/ORD-1/payment", UpdatePaymentRequest{
			PaymentMethod: "PayPal", PaymentStatus: "Refunded",
		})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestOrderHandler_CancelOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		mockService.On("Cancel", mock.Anything, "ORD-1").
			Return(&domain.Order{ID: "ORD-1", Status: domain.OrderStatusCancelled}, nil).Once()

		resp := doJSON(t, app, "PUT", "/orders/ORD-1/cancel", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got domain.Order
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, domain.OrderStatusCancelled, got.Status)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		mockService.On("Cancel", mock.Anything, "ORD-X").Return(nil, domain.ErrOrderNotFound).Once()

		resp := doJSON(t, app, "PUT", "/orders/ORD-X/cancel", nil)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "unknown", decodeError(t, resp).RayID)
	})
}
