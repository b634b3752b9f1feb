package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/opslane/riskplane/models"
	"go.uber.org/zap"
)

// WebhookNotifier posts notifications to an ops webhook endpoint.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

// NewWebhookNotifier creates a notifier posting to the given URL.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type webhookPayload struct {
	OrderID   string `json:"order_id"`
	Supplier  string `json:"supplier"`
	RiskLevel string `json:"risk_level"`
	Action    string `json:"action"`
	Reason    string `json:"reason"`
}

// Notify implements Notifier.
func (n *WebhookNotifier) Notify(ctx context.Context, event models.Event, decision models.Decision) error {
	body, err := json.Marshal(webhookPayload{
		OrderID:   event.OrderID,
		Supplier:  event.Supplier,
		RiskLevel: string(decision.RiskLevel),
		Action:    string(decision.Action),
		Reason:    decision.Reason,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notification transport error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// LogNotifier writes notifications to the application log. Used in
// development when no webhook is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(_ context.Context, event models.Event, decision models.Decision) error {
	n.logger.Info("ops notification",
		zap.String("order_id", event.OrderID),
		zap.String("supplier", event.Supplier),
		zap.String("risk_level", string(decision.RiskLevel)),
		zap.String("action", string(decision.Action)),
		zap.String("reason", decision.Reason))
	return nil
}
