package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookPublisher_Publish(t *testing.T) {
	var received TrackingEvent
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "evt-1", r.Header.Get("X-Event-ID"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	p := NewWebhookPublisher(server.URL, time.Second)
	defer p.Close()

	err := p.Publish(context.Background(), TrackingEvent{
		EventID:  "evt-1",
		Type:     TypeOrderTracking,
		OrderID:  "ORD-1",
		Status:   "Shipped",
		Location: "Warehouse",
	})
	require.NoError(t, err)

	assert.Equal(t, "ORD-1", received.OrderID)
	assert.Equal(t, "Shipped", received.Status)
	assert.Equal(t, "webhook", p.Name())
}

func TestWebhookPublisher_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	p := NewWebhookPublisher(server.URL, time.Second)

	err := p.Publish(context.Background(), TrackingEvent{EventID: "evt-2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestWebhookPublisher_Unreachable(t *testing.T) {
	p := NewWebhookPublisher("http://127.0.0.1:1", 500*time.Millisecond)

	err := p.Publish(context.Background(), TrackingEvent{EventID: "evt-3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute request")
}
