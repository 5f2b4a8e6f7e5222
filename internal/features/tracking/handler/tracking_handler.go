package handler

import (
	"errors"

	"storefront-orders/internal/core/logger"
	"storefront-orders/internal/features/tracking/domain"
	"storefront-orders/internal/features/tracking/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TrackingHandler handles HTTP requests for tracking operations.
type TrackingHandler struct {
	trackingService *service.TrackingService
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(trackingService *service.TrackingService) *TrackingHandler {
	return &TrackingHandler{
		trackingService: trackingService,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// GetTrackingHistory godoc
// @Summary Get tracking history for a shipment
// @Description Retrieves the tracking history for a tracking number. The carrier defaults to the storefront's own simulated shipping.
// @Tags tracking
// @Produce json
// @Param number path string true "Tracking Number"
// @Param carrier query string false "Carrier name (default storefront)"
// @Success 200 {object} domain.TrackingHistory
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tracking/{number} [get]
func (h *TrackingHandler) GetTrackingHistory(c *fiber.Ctx) error {
	rayID, _ := c.Locals("requestid").(string)

	trackingNumber := c.Params("number")
	if trackingNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "tracking number is required",
			RayID:   rayID,
		})
	}

	history, err := h.trackingService.GetTrackingHistory(c.Context(), trackingNumber, c.Query("carrier"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCarrierNotSupported):
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Message: "carrier not supported",
				RayID:   rayID,
			})
		case errors.Is(err, domain.ErrTrackingNotFound):
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Message: "tracking number not found",
				RayID:   rayID,
			})
		}

		logger.Get().Error("Failed to get tracking history",
			zap.String("tracking_number", trackingNumber),
			zap.String("ray_id", rayID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID,
		})
	}

	return c.JSON(history)
}
