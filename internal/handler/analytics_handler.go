package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"stock-empire/internal/domain"
	"stock-empire/internal/service"
	"stock-empire/pkg/errors"
	"stock-empire/pkg/logger"
)

// maxTrackBody bounds the POST /api/track body
const maxTrackBody = 16 << 10

// AnalyticsHandler handles event tracking and statistics requests
type AnalyticsHandler struct {
	analytics service.AnalyticsService
	logger    *logger.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics service.AnalyticsService, logger *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		logger:    logger,
	}
}

// TrackResponse is the body of POST /api/track
type TrackResponse struct {
	Success bool                    `json:"success"`
	Data    *domain.AnalyticsLedger `json:"data,omitempty"`
}

// Track handles POST /api/track
func (h *AnalyticsHandler) Track(w http.ResponseWriter, r *http.Request) {
	var event domain.TrackEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTrackBody)).Decode(&event); err != nil {
		sendErrorResponse(w, r, errors.NewValidationError("Invalid request body", map[string]interface{}{
			"reason": err.Error(),
		}), h.logger)
		return
	}

	ledger, rateLimitInfo, err := h.analytics.Record(r.Context(), event, clientIP(r))
	if rateLimitInfo != nil {
		setRateLimitHeaders(w, rateLimitInfo)
	}
	if err != nil {
		sendErrorResponse(w, r, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, TrackResponse{Success: true, Data: ledger}, h.logger)
}

// Stats handles GET /api/stats
func (h *AnalyticsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.Stats(r.Context())
	if err != nil {
		sendErrorResponse(w, r, err, h.logger)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	respondJSON(w, http.StatusOK, stats, h.logger)
}

// setRateLimitHeaders sets rate limit headers in the response
func setRateLimitHeaders(w http.ResponseWriter, info *domain.RateLimitInfo) {
	w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(info.Limit, 10))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(info.Remaining(), 10))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.WindowStart.Add(info.TTL).Unix(), 10))
}
