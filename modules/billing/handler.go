package billing

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/chargekit/pkg/subscription"
)

// EventHandler applies one delivered provider event.
// *subscription.Reconciler satisfies it.
type EventHandler interface {
	Handle(ctx context.Context, payload []byte) (subscription.EventResult, error)
}

// WebhookHandler is the inbound endpoint for provider event notifications.
// It answers 200 for every outcome except an infrastructure failure, since
// the provider retries on non-2xx and neither unknown event types nor
// lookup misses will self-correct by retrying.
type WebhookHandler struct {
	events EventHandler
	log    *slog.Logger
}

// NewWebhookHandler creates the webhook endpoint handler. A nil logger
// falls back to slog.Default().
func NewWebhookHandler(events EventHandler, log *slog.Logger) *WebhookHandler {
	if events == nil {
		panic("billing: EventHandler is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &WebhookHandler{events: events, log: log}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to read webhook body", "error", err)
		http.Error(w, "Failed to read request body.", http.StatusInternalServerError)
		return
	}

	result, err := h.events.Handle(r.Context(), payload)
	if err != nil {
		h.log.ErrorContext(r.Context(), "webhook reconciliation failed",
			"event_type", result.EventType, "error", err)
		http.Error(w, "Webhook handling failed.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if !result.Handled {
		_, _ = io.WriteString(w, "No event handler for "+result.EventType)
		return
	}
	_, _ = io.WriteString(w, "Webhook handled successfully.")
}
