package handler

import (
	"net/http"

	"stock-empire/internal/middleware"
	"stock-empire/internal/service"
	"stock-empire/pkg/errors"
	"stock-empire/pkg/logger"
)

// MarketHandler serves quotes, macro signals, theme signals and ticker analysis
type MarketHandler struct {
	quotes  service.QuoteService
	signals service.SignalService
	logger  *logger.Logger
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(quotes service.QuoteService, signals service.SignalService, logger *logger.Logger) *MarketHandler {
	return &MarketHandler{
		quotes:  quotes,
		signals: signals,
		logger:  logger,
	}
}

// MarketSignals handles GET /api/market-signals
func (h *MarketHandler) MarketSignals(w http.ResponseWriter, r *http.Request) {
	tier := middleware.TierFromContext(r.Context())

	signals, err := h.signals.MarketSignals(r.Context(), langParam(r), tier)
	if err != nil {
		sendErrorResponse(w, r, err, h.logger)
		return
	}

	// Tiered bodies must not be shared by caches.
	w.Header().Set("Cache-Control", "private, no-cache")
	respondJSON(w, http.StatusOK, signals, h.logger)
}

// ThemeSignals handles GET /api/theme-signals
func (h *MarketHandler) ThemeSignals(w http.ResponseWriter, r *http.Request) {
	signals, err := h.signals.ThemeSignals(r.Context(), r.URL.Query().Get("id"), langParam(r))
	if err != nil {
		sendErrorResponse(w, r, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, signals, h.logger)
}

// Themes handles GET /api/themes
func (h *MarketHandler) Themes(w http.ResponseWriter, r *http.Request) {
	respondCached(w, r, h.signals.Themes(), 300, h.logger)
}

// Quote handles GET /api/quote
func (h *MarketHandler) Quote(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		sendErrorResponse(w, r, errors.NewValidationError("Symbol is required", map[string]interface{}{
			"param": "symbol",
		}), h.logger)
		return
	}

	quote, err := h.quotes.GetQuote(r.Context(), symbol)
	if err != nil {
		sendErrorResponse(w, r, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, quote, h.logger)
}

// StockAnalysis handles GET /api/stock-analysis
func (h *MarketHandler) StockAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.signals.StockAnalysis(r.Context(), r.URL.Query().Get("ticker"), langParam(r))
	if err != nil {
		sendErrorResponse(w, r, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, analysis, h.logger)
}
