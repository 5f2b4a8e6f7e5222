package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"storefront-orders/internal/features/tracking/domain"
	"storefront-orders/internal/features/tracking/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTrackingProvider is a mock implementation of TrackingProvider for testing.
type mockTrackingProvider struct {
	supportedCarrier string
	returnHistory    *domain.TrackingHistory
	returnError      error
}

// GetTrackingHistory implements TrackingProvider.
func (m *mockTrackingProvider) GetTrackingHistory(ctx context.Context, trackingNumber string) (*domain.TrackingHistory, error) {
	if m.returnError != nil {
		return nil, m.returnError
	}
	return m.returnHistory, nil
}

// SupportsCarrier implements TrackingProvider.
func (m *mockTrackingProvider) SupportsCarrier(carrier string) bool {
	return carrier == m.supportedCarrier
}

func setupApp(provider *mockTrackingProvider) *fiber.App {
	handler := NewTrackingHandler(service.NewTrackingService("storefront", provider))

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("requestid", "test-ray-id")
		return c.Next()
	})
	app.Get("/tracking/:number", handler.GetTrackingHistory)
	return app
}

// TestTrackingHandler_GetTrackingHistory_Success verifies successful tracking retrieval.
func TestTrackingHandler_GetTrackingHistory_Success(t *testing.T) {
	expectedHistory := &domain.TrackingHistory{
		TrackingNumber: "1Z123",
		GlobalStatus:   domain.TrackingStatusProcessing,
		History:        []domain.TrackingEvent{},
	}

	app := setupApp(&mockTrackingProvider{supportedCarrier: "storefront", returnHistory: expectedHistory})

	req := httptest.NewRequest("GET", "/tracking/1Z123", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result domain.TrackingHistory
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, expectedHistory.GlobalStatus, result.GlobalStatus)
	assert.Equal(t, "1Z123", result.TrackingNumber)
}

// TestTrackingHandler_GetTrackingHistory_MissingTrackingNumber verifies the route needs a number.
func TestTrackingHandler_GetTrackingHistory_MissingTrackingNumber(t *testing.T) {
	app := setupApp(&mockTrackingProvider{supportedCarrier: "storefront"})

	req := httptest.NewRequest("GET", "/tracking/", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

// TestTrackingHandler_GetTrackingHistory_CarrierNotSupported verifies unsupported carrier response.
func TestTrackingHandler_GetTrackingHistory_CarrierNotSupported(t *testing.T) {
	app := setupApp(&mockTrackingProvider{supportedCarrier: "storefront"})

	req := httptest.NewRequest("GET", "/tracking/1Z123?carrier=unknown", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "carrier not supported", errResp.Message)
	assert.Equal(t, "test-ray-id", errResp.RayID)
}

// TestTrackingHandler_GetTrackingHistory_NotFound verifies unknown tracking numbers return 404.
func TestTrackingHandler_GetTrackingHistory_NotFound(t *testing.T) {
	app := setupApp(&mockTrackingProvider{supportedCarrier: "storefront", returnError: domain.ErrTrackingNotFound})

	req := httptest.NewRequest("GET", "/tracking/1Z404", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

// TestTrackingHandler_GetTrackingHistory_ServiceError verifies error response on service failure.
func TestTrackingHandler_GetTrackingHistory_ServiceError(t *testing.T) {
	app := setupApp(&mockTrackingProvider{supportedCarrier: "storefront", returnError: errors.New("lookup failed")})

	req := httptest.NewRequest("GET", "/tracking/1Z123", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Contains(t, errResp.Message, "lookup failed")
}
