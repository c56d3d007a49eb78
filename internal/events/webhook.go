package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookPublisher posts each event as JSON to an HTTP endpoint.
type WebhookPublisher struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// NewWebhook creates a webhook publisher. headers are added to every request.
func NewWebhook(url string, headers map[string]string) (*WebhookPublisher, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook: url is required")
	}
	return &WebhookPublisher{
		url:     url,
		headers: headers,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (w *WebhookPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("webhook: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: server returned %d", resp.StatusCode)
	}

	return nil
}

func (w *WebhookPublisher) Close() error {
	w.client.CloseIdleConnections()
	return nil
}
