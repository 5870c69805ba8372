// Package webhook receives, verifies, and dispatches provider webhook
// deliveries.
package webhook

import (
	"log/slog"
	"net/http"

	gh "github.com/google/go-github/v82/github"
)

// Handler terminates the provider's webhook endpoint. It verifies the HMAC
// signature, parses the payload, and hands the typed event to the dispatcher.
//
// Responses: 401 for a bad signature, 400 for a payload that does not parse,
// and 200 for everything else. Processing failures still return 200 so the
// provider does not redeliver an event we have already decided to drop.
type Handler struct {
	secret     []byte
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewHandler creates a new webhook Handler with the shared webhook secret.
func NewHandler(secret string, dispatcher *Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{
		secret:     []byte(secret),
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// ServeHTTP implements http.Handler for POST deliveries.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	deliveryID := gh.DeliveryID(r)
	eventType := gh.WebHookType(r)

	payload, err := gh.ValidatePayload(r, h.secret)
	if err != nil {
		h.logger.Warn("webhook signature validation failed",
			"delivery_id", deliveryID,
			"event", eventType,
			"error", err,
		)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := gh.ParseWebHook(eventType, payload)
	if err != nil {
		h.logger.Warn("webhook payload parsing failed",
			"delivery_id", deliveryID,
			"event", eventType,
			"error", err,
		)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	h.dispatcher.Dispatch(r.Context(), deliveryID, eventType, event)

	w.WriteHeader(http.StatusOK)
}
