package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kitchenstock/internal/models"
)

// WebhookAlerter POSTs alerts as JSON to a configured URL.
type WebhookAlerter struct {
	url    string
	token  string
	client *http.Client
}

type webhookPayload struct {
	Event      string                 `json:"event"`
	Message    string                 `json:"message"`
	Alert      *models.LowStockAlert  `json:"alert,omitempty"`
	TenantCode string                 `json:"tenant_code,omitempty"`
	Alerts     []models.LowStockAlert `json:"alerts,omitempty"`
}

func NewWebhookAlerter(url, token string, timeout time.Duration) *WebhookAlerter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookAlerter{url: url, token: token, client: &http.Client{Timeout: timeout}}
}

func (w *WebhookAlerter) LowStock(ctx context.Context, alert models.LowStockAlert) error {
	return w.post(ctx, webhookPayload{
		Event:   "low_stock",
		Message: FormatAlert(alert),
		Alert:   &alert,
	})
}

// Digest posts every alert of a tenant in one request.
func (w *WebhookAlerter) Digest(ctx context.Context, tenantCode string, alerts []models.LowStockAlert) error {
	if len(alerts) == 0 {
		return nil
	}
	return w.post(ctx, webhookPayload{
		Event:      "low_stock_digest",
		Message:    FormatDigest(tenantCode, alerts),
		TenantCode: tenantCode,
		Alerts:     alerts,
	})
}

func (w *WebhookAlerter) post(ctx context.Context, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(w.token) != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("low stock webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("low stock webhook status=%d: %s", resp.StatusCode, msg)
	}
	return nil
}
