package handler

import (
	"errors"
	"net/http"

	"storefront-orders/internal/core/logger"
	"storefront-orders/internal/features/orders/domain"
	"storefront-orders/internal/features/orders/ports"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests related to orders.
type OrderHandler struct {
	service  ports.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(s ports.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  s,
		validate: newValidator(),
	}
}

// CreateOrder handles POST /orders.
// @Summary Place an order
// @Description Creates an order from the cart snapshot and starts its simulated shipping lifecycle.
// @Tags Orders
// @Accept json
// @Produce json
// @Param order body CreateOrderRequest true "Checkout details"
// @Success 201 {object} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	order, err := h.service.PlaceOrder(c.Context(), req.Checkout())
	if err != nil {
		return h.fail(c, err, "Failed to place order", "")
	}

	return c.Status(http.StatusCreated).JSON(order)
}

// ListOrders handles GET /orders.
// @Summary List orders
// @Description Returns every order, newest first.
// @Tags Orders
// @Produce json
// @Success 200 {array} domain.Order
// @Failure 500 {object} ErrorResponse
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.Context())
	if err != nil {
		return h.fail(c, err, "Failed to list orders", "")
	}

	return c.Status(http.StatusOK).JSON(orders)
}

// Stats handles GET /orders/stats.
// @Summary Order statistics
// @Description Counts orders per status and sums the revenue of orders that were not cancelled.
// @Tags Orders
// @Produce json
// @Success 200 {object} domain.Stats
// @Failure 500 {object} ErrorResponse
// @Router /orders/stats [get]
func (h *OrderHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return h.fail(c, err, "Failed to compute stats", "")
	}

	return c.Status(http.StatusOK).JSON(stats)
}

// GetOrder handles GET /orders/:id.
// @Summary Get Order by ID
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")

	order, err := h.service.GetOrder(c.Context(), orderID)
	if err != nil {
		return h.fail(c, err, "Failed to fetch order", orderID)
	}

	return c.Status(http.StatusOK).JSON(order)
}

// UpdateStatus handles PUT /orders/:id/status.
// @Summary Update order status
// @Description Sets the status and appends one tracking update. Location and details are optional.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param update body UpdateStatusRequest true "Status update"
// @Success 200 {object} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")

	var req UpdateStatusRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		return h.fail(c, err, "Invalid status", orderID)
	}

	order, err := h.service.UpdateStatus(c.Context(), orderID, status, domain.StatusUpdate{
		Location: req.Location,
		Details:  req.Details,
	})
	if err != nil {
		return h.fail(c, err, "Failed to update order status", orderID)
	}

	return c.Status(http.StatusOK).JSON(order)
}

// UpdatePayment handles PUT /orders/:id/payment.
// @Summary Update order payment
// @Description Sets the payment method and status; the order status follows the payment status.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param payment body UpdatePaymentRequest true "Payment update"
// @Success 200 {object} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /orders/{id}/payment [put]
func (h *OrderHandler) UpdatePayment(c *fiber.Ctx) error {
	orderID := c.Params("id")

	var req UpdatePaymentRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	method, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return h.fail(c, err, "Invalid payment method", orderID)
	}
	status, err := domain.ParsePaymentStatus(req.PaymentStatus)
	if err != nil {
		return h.fail(c, err, "Invalid payment status", orderID)
	}

	order, err := h.service.UpdatePayment(c.Context(), orderID, method, status)
	if err != nil {
		return h.fail(c, err, "Failed to update payment", orderID)
	}

	return c.Status(http.StatusOK).JSON(order)
}

// CancelOrder handles PUT /orders/:id/cancel.
// @Summary Cancel an order
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /orders/{id}/cancel [put]
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")

	order, err := h.service.Cancel(c.Context(), orderID)
	if err != nil {
		return h.fail(c, err, "Failed to cancel order", orderID)
	}

	return c.Status(http.StatusOK).JSON(order)
}

// bind decodes and validates the body. When it reports false the 400
// response has already been written.
func (h *OrderHandler) bind(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Invalid request body",
			RayID:   rayID(c),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return false, c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Message: "Validation failed",
				RayID:   rayID(c),
				Details: formatValidationErrors(validationErrors),
			})
		}
		logger.Get().Error("Unexpected validation error", zap.Error(err))
		return false, c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Message: "Internal validation error",
			RayID:   rayID(c),
		})
	}
	return true, nil
}

// fail logs the error and maps it onto the response status.
func (h *OrderHandler) fail(c *fiber.Ctx, err error, msg, orderID string) error {
	id := rayID(c)
	status := http.StatusInternalServerError
	message := "Internal Server Error"

	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		status = http.StatusNotFound
		message = "Order not found"
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, domain.ErrOrderTerminal):
		status = http.StatusConflict
		message = err.Error()
	}

	fields := []zap.Field{zap.String("ray_id", id), zap.Error(err)}
	if orderID != "" {
		fields = append(fields, zap.String("order_id", orderID))
	}
	if status == http.StatusInternalServerError {
		logger.Get().Error(msg, fields...)
	} else {
		logger.Get().Warn(msg, fields...)
	}

	return c.Status(status).JSON(ErrorResponse{
		Message: message,
		RayID:   id,
	})
}

func rayID(c *fiber.Ctx) string {
	id, ok := c.Locals("requestid").(string)
	if !ok {
		return "unknown"
	}
	return id
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
	// Details lists individual validation failures.
	Details []string `json:"details,omitempty"`
}

// RegisterRoutes mounts the order endpoints on r.
func (h *OrderHandler) RegisterRoutes(r fiber.Router) {
	orders := r.Group("/orders")
	orders.Post("/", h.CreateOrder)
	orders.Get("/", h.ListOrders)
	orders.Get("/stats", h.Stats)
	orders.Get("/:id", h.GetOrder)
	orders.Put("/:id/status", h.UpdateStatus)
	orders.Put("/:id/payment", h.UpdatePayment)
	orders.Put("/:id/cancel", h.CancelOrder)
}
