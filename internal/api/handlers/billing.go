package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brandgate/internal/config"
	"brandgate/internal/core"
	"brandgate/internal/external"
	"brandgate/internal/types"
)

// CheckoutService abstracts checkout-session creation at the payment
// processor.
type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, p external.CheckoutParams) (external.CheckoutSession, error)
}

// BillingHandler handles synchronous billing actions initiated by the user.
type BillingHandler struct {
	service   CheckoutService
	cfg       *config.Config
	validator *core.Validator
	logger    *slog.Logger
}

// NewBillingHandler creates a BillingHandler.
func NewBillingHandler(service CheckoutService, cfg *config.Config, validator *core.Validator, logger *slog.Logger) *BillingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BillingHandler{
		service:   service,
		cfg:       cfg,
		validator: validator,
		logger:    logger,
	}
}

// RegisterRoutes mounts the billing endpoints.
func (h *BillingHandler) RegisterRoutes(r chi.Router) {
	r.Post("/billing/checkout", h.Checkout)
}

// CheckoutRequest is the request body for POST /api/billing/checkout.
// SuccessURL and CancelURL are optional; when absent the frontend origin
// supplies the defaults.
type CheckoutRequest struct {
	Plan       string `json:"plan" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

// CheckoutResponse is the success shape for POST /api/billing/checkout.
type CheckoutResponse struct {
	Success     bool   `json:"success"`
	CheckoutURL string `json:"checkoutUrl"`
	SessionID   string `json:"sessionId"`
}

// Checkout creates a subscription checkout session for a purchasable plan.
// An unrecognized plan name is a 400 validation error; the processor is not
// called in that case.
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		core.Error(w, r, err)
		return
	}

	priceID, ok := h.priceIDForPlan(req.Plan)
	if !ok {
		core.Error(w, r, types.NewAppErrorWithDetails(
			types.ErrCodeValidationInvalidPlan,
			"invalid plan",
			nil,
			map[string]any{"plan": req.Plan},
		))
		return
	}

	successURL := req.SuccessURL
	if successURL == "" {
		successURL = h.cfg.Server.FrontendURL + "/billing/success"
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = h.cfg.Server.FrontendURL + "/pricing"
	}

	session, err := h.service.CreateCheckoutSession(r.Context(), external.CheckoutParams{
		PriceID:    priceID,
		Email:      req.Email,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "checkout session creation failed",
			"plan", req.Plan,
			"error", err,
		)
		core.Error(w, r, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"checkout failed",
			err,
		))
		return
	}

	core.JSON(w, r, http.StatusOK, CheckoutResponse{
		Success:     true,
		CheckoutURL: session.URL,
		SessionID:   session.SessionID,
	})
}

// priceIDForPlan maps a purchasable plan name to its Stripe price ID.
// Only pro and agency can be bought through checkout: free needs no payment
// and enterprise is sold by contract.
func (h *BillingHandler) priceIDForPlan(plan string) (string, bool) {
	switch types.PlanName(plan) {
	case types.PlanPro:
		return h.cfg.Billing.StripePricePro, true
	case types.PlanAgency:
		return h.cfg.Billing.StripePriceAgency, true
	default:
		return "", false
	}
}
