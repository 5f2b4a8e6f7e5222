package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"storefront-orders/internal/core/httpclient"
)

// WebhookPublisher POSTs tracking events as JSON to a fixed URL.
type WebhookPublisher struct {
	client *http.Client
	url    string
}

// NewWebhookPublisher creates a publisher posting to url.
func NewWebhookPublisher(url string, timeout time.Duration) *WebhookPublisher {
	return &WebhookPublisher{
		client: httpclient.NewClient(timeout),
		url:    url,
	}
}

// Name implements Publisher.
func (p *WebhookPublisher) Name() string {
	return "webhook"
}

// Publish implements Publisher.
func (p *WebhookPublisher) Publish(ctx context.Context, event TrackingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-ID", event.EventID)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}
	return nil
}

// Close implements Publisher.
func (p *WebhookPublisher) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
