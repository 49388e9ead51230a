// This file implements the Stripe webhook handler. The endpoint is NOT
// behind any auth; security comes from verifying the Stripe-Signature
// header against the webhook signing secret.
package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	stripe "github.com/stripe/stripe-go/v82"

	"brandgate/internal/core"
	"brandgate/internal/external"
	"brandgate/internal/types"
)

// maxWebhookBodySize caps a Stripe webhook payload at 64 KB. Stripe payloads
// are small; the limit protects against abuse.
const maxWebhookBodySize = 64 * 1024

// StripeWebhookHandler handles asynchronous events from Stripe.
type StripeWebhookHandler struct {
	verifier external.WebhookVerifier
	secret   string
	logger   *slog.Logger
}

// NewStripeWebhookHandler creates a StripeWebhookHandler.
func NewStripeWebhookHandler(verifier external.WebhookVerifier, secret string, logger *slog.Logger) *StripeWebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StripeWebhookHandler{
		verifier: verifier,
		secret:   secret,
		logger:   logger,
	}
}

// RegisterRoutes mounts the webhook endpoint.
func (h *StripeWebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/webhooks/stripe", h.Handle)
}

// WebhookResponse is the success shape for POST /api/webhooks/stripe.
type WebhookResponse struct {
	Received bool `json:"received"`
}

// Handle processes an inbound Stripe webhook:
//  1. Read the raw body (size-limited).
//  2. Require the Stripe-Signature header; a missing header is rejected
//     before the verification primitive is ever invoked.
//  3. Verify the signature; an invalid one is a 400, never a panic or 500.
//  4. Dispatch the event by type and acknowledge with {received:true}.
func (h *StripeWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodySize)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"failed to read request body",
			err,
		))
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	if sigHeader == "" {
		h.logger.WarnContext(r.Context(), "missing Stripe-Signature header")
		core.Error(w, r, types.NewAppError(
			types.ErrCodeWebhookSignatureMissing,
			"missing signature",
			nil,
		))
		return
	}

	event, err := h.verifier.Verify(payload, sigHeader, h.secret)
	if err != nil {
		h.logger.WarnContext(r.Context(), "webhook signature verification failed",
			"error", err,
		)
		core.Error(w, r, types.NewAppError(
			types.ErrCodeWebhookSignatureInvalid,
			"invalid signature",
			err,
		))
		return
	}

	h.dispatch(r.Context(), event)

	core.JSON(w, r, http.StatusOK, WebhookResponse{Received: true})
}

// dispatch routes the event by type. Each branch currently only logs; these
// are the integration points where subscription-state persistence would be
// wired in. Unknown event types are logged and ignored, never an error.
func (h *StripeWebhookHandler) dispatch(ctx context.Context, event stripe.Event) {
	switch string(event.Type) {
	case external.EventCheckoutCompleted:
		h.logger.InfoContext(ctx, "checkout completed",
			"event_id", event.ID,
			"session_id", objectID(event),
		)
	case external.EventSubUpdated:
		h.logger.InfoContext(ctx, "subscription updated",
			"event_id", event.ID,
			"subscription_id", objectID(event),
		)
	case external.EventSubDeleted:
		h.logger.InfoContext(ctx, "subscription deleted",
			"event_id", event.ID,
			"subscription_id", objectID(event),
		)
	case external.EventInvoicePaid:
		h.logger.InfoContext(ctx, "invoice paid",
			"event_id", event.ID,
			"invoice_id", objectID(event),
		)
	default:
		h.logger.InfoContext(ctx, "ignoring unhandled webhook event type",
			"event_id", event.ID,
			"event_type", event.Type,
		)
	}
}

// objectID pulls the id of the event's payload object, for log correlation.
func objectID(event stripe.Event) string {
	if event.Data == nil {
		return ""
	}
	id, _ := event.Data.Object["id"].(string)
	return id
}
