package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"brandgate/internal/core"
	"brandgate/internal/types"
)

// TrialLedger is the slice of the trial ledger the trial endpoints need.
type TrialLedger interface {
	// Get returns the live (unexpired) account for userID, if any.
	Get(ctx context.Context, userID string) (types.TrialAccount, bool)
	// Consume spends one credit; false when none remain or no record exists.
	Consume(ctx context.Context, userID string) bool
}

// TrialHandler exposes trial status and credit consumption.
//
// Absence of entitlement is a normal outcome here, never an error status:
// a missing, expired, or exhausted trial still answers 200 with a boolean.
type TrialHandler struct {
	ledger TrialLedger
}

// NewTrialHandler creates a TrialHandler.
func NewTrialHandler(ledger TrialLedger) *TrialHandler {
	return &TrialHandler{ledger: ledger}
}

// RegisterRoutes mounts the trial endpoints.
func (h *TrialHandler) RegisterRoutes(r chi.Router) {
	r.Get("/trial/{userId}", h.Status)
	r.Post("/trial/{userId}/consume", h.Consume)
}

// TrialStatusResponse is the success shape for GET /api/trial/{userId}.
// RunsCompleted and ExpiresAt are present only when a live account exists.
type TrialStatusResponse struct {
	HasTrialCredits  bool       `json:"hasTrialCredits"`
	CreditsRemaining int        `json:"creditsRemaining"`
	RunsCompleted    *int       `json:"runsCompleted,omitempty"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
}

// Status reports the trial account state for a user. Expired accounts are
// indistinguishable from absent ones.
func (h *TrialHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	account, ok := h.ledger.Get(r.Context(), userID)
	if !ok {
		core.JSON(w, r, http.StatusOK, TrialStatusResponse{
			HasTrialCredits:  false,
			CreditsRemaining: 0,
		})
		return
	}

	core.JSON(w, r, http.StatusOK, TrialStatusResponse{
		HasTrialCredits:  account.CreditsRemaining > 0,
		CreditsRemaining: account.CreditsRemaining,
		RunsCompleted:    &account.RunsCompleted,
		ExpiresAt:        &account.ExpiresAt,
	})
}

// ConsumeResponse is the success shape for POST /api/trial/{userId}/consume.
type ConsumeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Consume spends one trial credit ahead of a paid-feature run.
func (h *TrialHandler) Consume(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	consumed := h.ledger.Consume(r.Context(), userID)

	message := "No trial credits available"
	if consumed {
		message = "Trial credit consumed"
	}
	core.JSON(w, r, http.StatusOK, ConsumeResponse{
		Success: consumed,
		Message: message,
	})
}
