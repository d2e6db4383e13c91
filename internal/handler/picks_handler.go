package handler

import (
	"net/http"

	"stock-empire/internal/middleware"
	"stock-empire/internal/service"
	"stock-empire/pkg/logger"
)

// PicksHandler serves the alpha board, VVIP picks and exchange rate. All
// three answer 200 with fallback bodies when upstream is down.
type PicksHandler struct {
	picks  service.PicksService
	logger *logger.Logger
}

// NewPicksHandler creates a new picks handler
func NewPicksHandler(picks service.PicksService, logger *logger.Logger) *PicksHandler {
	return &PicksHandler{
		picks:  picks,
		logger: logger,
	}
}

// AlphaSignals handles GET /api/alpha-signals
func (h *PicksHandler) AlphaSignals(w http.ResponseWriter, r *http.Request) {
	tier := middleware.TierFromContext(r.Context())

	w.Header().Set("Cache-Control", "private, no-cache")
	respondJSON(w, http.StatusOK, h.picks.AlphaSignals(r.Context(), langParam(r), tier), h.logger)
}

// VVIPPicks handles GET /api/vvip-picks
func (h *PicksHandler) VVIPPicks(w http.ResponseWriter, r *http.Request) {
	tier := middleware.TierFromContext(r.Context())

	w.Header().Set("Cache-Control", "private, no-cache")
	respondJSON(w, http.StatusOK, h.picks.VVIPPicks(r.Context(), langParam(r), tier), h.logger)
}

// ExchangeRate handles GET /api/exchange-rate
func (h *PicksHandler) ExchangeRate(w http.ResponseWriter, r *http.Request) {
	respondCached(w, r, h.picks.ExchangeRate(r.Context()), 3600, h.logger)
}
