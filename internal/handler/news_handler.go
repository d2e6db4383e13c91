package handler

import (
	"net/http"
	"strings"

	"stock-empire/internal/domain"
	"stock-empire/internal/middleware"
	"stock-empire/internal/service"
	"stock-empire/pkg/logger"
)

// NewsHandler serves the breaking news document and the tiered news feed
type NewsHandler struct {
	news   service.NewsService
	logger *logger.Logger
}

// NewNewsHandler creates a new news handler
func NewNewsHandler(news service.NewsService, logger *logger.Logger) *NewsHandler {
	return &NewsHandler{
		news:   news,
		logger: logger,
	}
}

// BreakingNews handles GET /api/breaking-news. Read failures are reported
// in the body with status 200.
func (h *NewsHandler) BreakingNews(w http.ResponseWriter, r *http.Request) {
	respondCached(w, r, h.news.BreakingNews(r.Context()), 60, h.logger)
}

// NewsResponse is the body of GET /api/news
type NewsResponse struct {
	Market string              `json:"market"`
	Count  int                 `json:"count"`
	Items  []domain.Resolution `json:"items"`
}

// News handles GET /api/news
func (h *NewsHandler) News(w http.ResponseWriter, r *http.Request) {
	market := strings.ToUpper(r.URL.Query().Get("market"))
	if market == "" {
		market = service.MarketAll
	}

	items, err := h.news.News(r.Context(), market, middleware.TierFromContext(r.Context()))
	if err != nil {
		sendErrorResponse(w, r, err, h.logger)
		return
	}

	w.Header().Set("Cache-Control", "private, no-cache")
	respondJSON(w, http.StatusOK, NewsResponse{Market: market, Count: len(items), Items: items}, h.logger)
}
