package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opslane/riskplane/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWebhookNotifier_Notify(t *testing.T) {
	decision := models.Decision{
		RiskLevel: models.RiskHigh,
		Action:    models.ActionEscalate,
		Reason:    "guardrail classified risk as HIGH",
	}

	t.Run("posts JSON payload", func(t *testing.T) {
		var received webhookPayload
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		n := NewWebhookNotifier(server.URL, 5*time.Second)
		err := n.Notify(context.Background(), testEvent(), decision)

		require.NoError(t, err)
		assert.Equal(t, "ORD-1042", received.OrderID)
		assert.Equal(t, "Acme Logistics", received.Supplier)
		assert.Equal(t, "HIGH", received.RiskLevel)
		assert.Equal(t, "ESCALATE", received.Action)
	})

	t.Run("non-2xx status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		n := NewWebhookNotifier(server.URL, 5*time.Second)
		err := n.Notify(context.Background(), testEvent(), decision)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("unreachable endpoint is an error", func(t *testing.T) {
		n := NewWebhookNotifier("http://127.0.0.1:1", time.Second)
		err := n.Notify(context.Background(), testEvent(), decision)

		assert.Error(t, err)
	})
}

func TestLogNotifier_Notify(t *testing.T) {
	n := NewLogNotifier(zap.NewNop())
	err := n.Notify(context.Background(), testEvent(), models.Decision{
		RiskLevel: models.RiskMedium,
		Action:    models.ActionNotify,
		Reason:    "r",
	})
	assert.NoError(t, err)
}
