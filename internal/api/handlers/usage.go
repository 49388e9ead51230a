package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brandgate/internal/core"
	"brandgate/internal/types"
)

// UsageReporter aggregates a user's usage for the current month.
type UsageReporter interface {
	MonthlyUsage(ctx context.Context, userID string) types.MonthlyUsage
}

// UsageHandler exposes the monthly usage snapshot. The meter swallows its
// own read failures into the zero aggregate, so this endpoint never fails
// on a broken log.
type UsageHandler struct {
	meter UsageReporter
}

// NewUsageHandler creates a UsageHandler.
func NewUsageHandler(meter UsageReporter) *UsageHandler {
	return &UsageHandler{meter: meter}
}

// RegisterRoutes mounts the usage endpoint.
func (h *UsageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/usage/{userId}", h.Monthly)
}

// Monthly returns the tokens/runs/cost aggregate for the current month.
func (h *UsageHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	core.JSON(w, r, http.StatusOK, h.meter.MonthlyUsage(r.Context(), userID))
}
