// Package handlers contains the HTTP handler implementations for the
// brandgate API. Each handler defines the service contract it needs locally
// and receives implementations via its constructor, which keeps handlers
// decoupled from concrete services and easy to mock in tests.
package handlers

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"brandgate/internal/core"
	"brandgate/internal/types"
)

// TrialCreator is the slice of the trial ledger the auth handler needs.
type TrialCreator interface {
	// Create constructs and best-effort persists a trial account.
	Create(ctx context.Context, userID, email string) types.TrialAccount
}

// AuthHandler implements the signup/login stubs. There is no real credential
// store: signup mints a user ID and a trial account, and login returns an
// opaque placeholder token (NOT a credential) so the frontend flow can be
// exercised end to end.
type AuthHandler struct {
	trials    TrialCreator
	validator *core.Validator
	logger    *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(trials TrialCreator, validator *core.Validator, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		trials:    trials,
		validator: validator,
		logger:    logger,
	}
}

// RegisterRoutes mounts the auth endpoints.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/signup", h.Signup)
	r.Post("/auth/login", h.Login)
}

// SignupRequest is the request body for POST /api/auth/signup.
type SignupRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

// SignupResponse is the success shape for POST /api/auth/signup.
type SignupResponse struct {
	Success bool        `json:"success"`
	UserID  string      `json:"userId"`
	Trial   TrialDigest `json:"trial"`
}

// TrialDigest is the trial summary embedded in the signup response.
type TrialDigest struct {
	CreditsRemaining int       `json:"creditsRemaining"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

// Signup registers a new user and opens their trial window.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		core.Error(w, r, err)
		return
	}

	userID := "user_" + uuid.NewString()
	trial := h.trials.Create(r.Context(), userID, req.Email)

	h.logger.InfoContext(r.Context(), "user signed up",
		"user_id", userID,
		"trial_expires_at", trial.ExpiresAt,
	)

	core.JSON(w, r, http.StatusOK, SignupResponse{
		Success: true,
		UserID:  userID,
		Trial: TrialDigest{
			CreditsRemaining: trial.CreditsRemaining,
			ExpiresAt:        trial.ExpiresAt,
		},
	})
}

// LoginRequest is the request body for POST /api/auth/login.
type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// LoginResponse is the success shape for POST /api/auth/login.
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Email   string `json:"email"`
}

// Login issues the placeholder token. The token is a reversible encoding of
// the email, not a signed credential; nothing in the backend trusts it.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		core.Error(w, r, err)
		return
	}

	token := base64.StdEncoding.EncodeToString([]byte(req.Email))

	core.JSON(w, r, http.StatusOK, LoginResponse{
		Success: true,
		Token:   token,
		Email:   req.Email,
	})
}
