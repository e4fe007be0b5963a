package billing

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router creates the billing module router with the webhook endpoint
// mounted at the root. Mount it wherever the host application routes
// provider callbacks:
//
//	reconciler := subscription.NewReconciler(store, client, logger)
//	r.Mount("/chargebee", billing.Router(reconciler, logger))
func Router(events EventHandler, log *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Method(http.MethodPost, "/webhook", NewWebhookHandler(events, log))
	return r
}

// PublishRoutes mounts the webhook endpoint on the host router at the
// configured path when Config.PublishRoutes is set. Returns whether the
// route was published.
func PublishRoutes(r chi.Router, cfg Config, events EventHandler, log *slog.Logger) bool {
	if !cfg.PublishRoutes {
		return false
	}
	r.Method(http.MethodPost, cfg.WebhookPath, NewWebhookHandler(events, log))
	return true
}
