package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stock-empire/internal/domain"
	"stock-empire/internal/market"
	"stock-empire/internal/signal"
	apperrors "stock-empire/pkg/errors"
	"stock-empire/pkg/logger"
)

// Symbols read for the VVIP macro block alongside the classified metrics
const (
	vixSymbol      = "^VIX"
	usdIndexSymbol = "DX-Y.NYB"
)

// signalService builds the macro, theme and ticker signal responses
type signalService struct {
	quotes    QuoteService
	catalogue *market.Catalogue
	analyst   market.Analyst
	logger    *logger.Logger
	now       func() time.Time
}

// NewSignalService creates a new signal service
func NewSignalService(quotes QuoteService, catalogue *market.Catalogue, analyst market.Analyst, logger *logger.Logger) SignalService {
	return &signalService{
		quotes:    quotes,
		catalogue: catalogue,
		analyst:   analyst,
		logger:    logger,
		now:       time.Now,
	}
}

// MarketSignals classifies the macro metrics. The macro dashboard is only
// attached for tiers holding macro_dashboard.
func (s *signalService) MarketSignals(ctx context.Context, lang string, tier domain.Tier) (*domain.MarketSignals, error) {
	symbols := append(append([]string{}, signal.SymbolOrder...), vixSymbol, usdIndexSymbol)

	quotes, err := s.quotes.LiveQuotes(ctx, symbols)
	if err != nil {
		s.logger.WithError(err).Error("Failed to fetch market signal quotes")
		return nil, apperrors.NewInternalError("Failed to load market signals", err)
	}

	bySymbol := make(map[string]domain.Quote, len(quotes))
	for _, q := range quotes {
		bySymbol[q.Symbol] = q
	}

	now := s.now()
	resp := &domain.MarketSignals{
		Signals:   make([]domain.SignalReading, 0, len(signal.SymbolOrder)),
		Timestamp: now.UTC().Format(time.RFC3339),
	}

	for _, symbol := range signal.SymbolOrder {
		q, ok := bySymbol[symbol]
		if !ok {
			continue
		}
		reading := signal.Classify(signal.Symbols[symbol], q.RegularMarketPrice, lang)
		reading.Change = q.RegularMarketChangePercent
		resp.Signals = append(resp.Signals, reading)
	}

	if tier.Has(domain.CapMacroDashboard) {
		var in signal.MacroInputs
		if q, ok := bySymbol[vixSymbol]; ok {
			in.VIX = q.RegularMarketPrice
			in.VIXChangePct = q.RegularMarketChangePercent
		}
		if q, ok := bySymbol[usdIndexSymbol]; ok {
			in.USDIndex = q.RegularMarketPrice
		}
		dashboard := signal.MacroDashboard(in, lang, now)
		resp.VVIP = &dashboard
	}

	return resp, nil
}

// ThemeSignals analyzes every ticker of a theme. When upstream fails the
// signals are built from fallback quotes and flagged is_fallback.
func (s *signalService) ThemeSignals(ctx context.Context, themeID, lang string) (*domain.ThemeSignals, error) {
	if themeID == "" {
		return nil, apperrors.NewValidationError("Theme id is required", map[string]interface{}{
			"param": "id",
		})
	}

	theme, ok := s.catalogue.Find(themeID)
	if !ok {
		return nil, apperrors.NewNotFoundError("Theme not found")
	}

	now := s.now()
	resp := &domain.ThemeSignals{
		ThemeName: theme.Name(lang),
		Signals:   make([]domain.ThemeSignal, 0, len(theme.Tickers)),
	}

	quotes, err := s.quotes.LiveQuotes(ctx, theme.Tickers)
	if err != nil {
		s.logger.WithError(err).WithField("theme", themeID).Warn("Theme quotes unavailable, serving fallback signals")
		for _, ticker := range theme.Tickers {
			q, _ := market.FallbackQuote(ticker)
			sig := s.analyst.Analyze(q, lang, now)
			sig.ID = fmt.Sprintf("%s-fallback-%d", ticker, now.UnixMilli())
			sig.IsFallback = true
			resp.Signals = append(resp.Signals, sig)
		}
		return resp, nil
	}

	for _, q := range quotes {
		resp.Signals = append(resp.Signals, s.analyst.Analyze(q, lang, now))
	}
	return resp, nil
}

// Themes returns the theme catalogue
func (s *signalService) Themes() []domain.Theme {
	return s.catalogue.All()
}

// StockAnalysis bands the ticker's live daily change into a verdict
func (s *signalService) StockAnalysis(ctx context.Context, ticker, lang string) (*domain.StockAnalysis, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, apperrors.NewValidationError("Ticker is required", map[string]interface{}{
			"param": "ticker",
		})
	}

	quotes, err := s.quotes.LiveQuotes(ctx, []string{ticker})
	if err == nil && len(quotes) == 0 {
		err = fmt.Errorf("symbol %s not found", ticker)
	}
	if err != nil {
		s.logger.WithError(err).WithField("ticker", ticker).Error("Stock analysis failed")
		return nil, apperrors.NewInternalError("Failed to analyze ticker. It might be delisted or invalid.", err)
	}

	q := quotes[0]
	change := q.RegularMarketChangePercent
	verdict := signal.StockVerdict(ticker, change, lang)
	fundamental, risk := signal.StockNarrative(q.RegularMarketPrice, q.Currency, change, lang)

	sign := ""
	if change > 0 {
		sign = "+"
	}

	return &domain.StockAnalysis{
		Ticker:      ticker,
		Price:       fmt.Sprintf("%.2f", q.RegularMarketPrice),
		Change:      fmt.Sprintf("%s%.2f%%", sign, change),
		Currency:    q.Currency,
		Verdict:     verdict.Label,
		Score:       verdict.Score,
		Macro:       verdict.Macro,
		Fundamental: fundamental,
		Technical:   verdict.Technical,
		Risk:        risk,
	}, nil
}
