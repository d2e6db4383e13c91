package handler

import (
	"net/http"

	"stock-empire/internal/middleware"
	"stock-empire/internal/viewlimit"
	"stock-empire/pkg/errors"
	"stock-empire/pkg/logger"
)

// ViewLimitHandler exposes the daily premium reveal counter
type ViewLimitHandler struct {
	tracker *viewlimit.Tracker
	logger  *logger.Logger
}

// NewViewLimitHandler creates a new view limit handler
func NewViewLimitHandler(tracker *viewlimit.Tracker, logger *logger.Logger) *ViewLimitHandler {
	return &ViewLimitHandler{
		tracker: tracker,
		logger:  logger,
	}
}

// Status handles GET /api/view-limit
func (h *ViewLimitHandler) Status(w http.ResponseWriter, r *http.Request) {
	count, err := h.tracker.CurrentCount(r.Context(), h.viewer(r))
	if err != nil {
		sendErrorResponse(w, r, errors.NewInternalError("Failed to read view limit", err), h.logger)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, http.StatusOK, h.tracker.Status(count, middleware.TierFromContext(r.Context())), h.logger)
}

// Reveal handles POST /api/view-limit/reveal. The count always increments;
// the limited flag tells the client whether to show the paywall.
func (h *ViewLimitHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	count, err := h.tracker.Increment(r.Context(), h.viewer(r))
	if err != nil {
		sendErrorResponse(w, r, errors.NewInternalError("Failed to update view limit", err), h.logger)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, http.StatusOK, h.tracker.Status(count, middleware.TierFromContext(r.Context())), h.logger)
}

func (h *ViewLimitHandler) viewer(r *http.Request) string {
	var sub string
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		sub = claims.Sub
	}
	return viewlimit.ViewerKey(sub, clientIP(r))
}
