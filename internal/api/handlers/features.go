package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brandgate/internal/core"
	"brandgate/internal/types"
	"brandgate/internal/usage"
)

// FeatureGate resolves plan entitlements for a user.
type FeatureGate interface {
	// EnsurePaidFeature returns a feature_not_allowed error when the user's
	// plan lacks the capability.
	EnsurePaidFeature(userID, featureName string, tag types.FeatureTag) error
}

// TrialConsumer is the slice of the trial ledger used for gating runs.
type TrialConsumer interface {
	HasCredits(ctx context.Context, userID string) bool
	Consume(ctx context.Context, userID string) bool
}

// UsageRecorder appends a usage record, best-effort.
type UsageRecorder interface {
	Record(ctx context.Context, entry types.UsageRecord)
}

// FeatureHandler authorizes and meters paid-feature runs. This is the seat
// of the gating control flow: trial users consume a credit first; everyone
// else goes through plan gating; an authorized run is metered on the way
// out.
type FeatureHandler struct {
	gate      FeatureGate
	trials    TrialConsumer
	meter     UsageRecorder
	validator *core.Validator
	logger    *slog.Logger
}

// NewFeatureHandler creates a FeatureHandler.
func NewFeatureHandler(
	gate FeatureGate,
	trials TrialConsumer,
	meter UsageRecorder,
	validator *core.Validator,
	logger *slog.Logger,
) *FeatureHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeatureHandler{
		gate:      gate,
		trials:    trials,
		meter:     meter,
		validator: validator,
		logger:    logger,
	}
}

// RegisterRoutes mounts the feature-run endpoint.
func (h *FeatureHandler) RegisterRoutes(r chi.Router) {
	r.Post("/features/{tag}/run", h.Run)
}

// FeatureRunRequest is the request body for POST /api/features/{tag}/run.
// Text is the input whose token footprint gets metered; Feature defaults to
// the tag when empty.
type FeatureRunRequest struct {
	UserID  string `json:"userId" validate:"required"`
	Feature string `json:"feature"`
	Brand   string `json:"brand"`
	Text    string `json:"text"`
}

// FeatureRunResponse is the success shape for POST /api/features/{tag}/run.
// Source says which entitlement authorized the run: "trial" or "plan".
type FeatureRunResponse struct {
	Success    bool    `json:"success"`
	Source     string  `json:"source"`
	TokensUsed int     `json:"tokensUsed"`
	CostUSD    float64 `json:"costUSD"`
}

// Run authorizes one feature execution and records its usage.
//
// Authorization order: a live trial credit is consumed first; only when no
// credit is available does plan gating apply. A plan rejection is a 403
// carrying the plan name and an upgrade message.
func (h *FeatureHandler) Run(w http.ResponseWriter, r *http.Request) {
	tag := types.FeatureTag(chi.URLParam(r, "tag"))

	var req FeatureRunRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		core.Error(w, r, err)
		return
	}

	featureName := req.Feature
	if featureName == "" {
		featureName = string(tag)
	}

	source := "plan"
	if h.trials.HasCredits(r.Context(), req.UserID) && h.trials.Consume(r.Context(), req.UserID) {
		source = "trial"
	} else if err := h.gate.EnsurePaidFeature(req.UserID, featureName, tag); err != nil {
		core.Error(w, r, err)
		return
	}

	tokens := usage.EstimateTokens(req.Text)
	cost := usage.EstimateCost(tokens)

	h.meter.Record(r.Context(), types.UsageRecord{
		UserID:     req.UserID,
		Feature:    featureName,
		Brand:      req.Brand,
		TokensUsed: tokens,
		CostUSD:    cost,
		Success:    true,
	})

	h.logger.InfoContext(r.Context(), "feature run authorized",
		"user_id", req.UserID,
		"feature", featureName,
		"source", source,
	)

	core.JSON(w, r, http.StatusOK, FeatureRunResponse{
		Success:    true,
		Source:     source,
		TokensUsed: tokens,
		CostUSD:    cost,
	})
}
