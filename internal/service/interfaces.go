package service

import (
	"context"

	"stock-empire/internal/domain"
)

// AuthService defines the interface for identity token verification
type AuthService interface {
	// ValidateToken verifies an identity provider session token and returns its claims
	ValidateToken(ctx context.Context, token string) (*domain.AuthClaims, error)
}

// AnalyticsService defines the interface for the analytics ledger
type AnalyticsService interface {
	// Start restores from the latest snapshot if needed and begins periodic snapshots
	Start(ctx context.Context) error

	// Stop ends periodic snapshots and writes a final one
	Stop(ctx context.Context) error

	// Record applies one tracked event. clientIP feeds the visit rate limit.
	Record(ctx context.Context, event domain.TrackEvent, clientIP string) (*domain.AnalyticsLedger, *domain.RateLimitInfo, error)

	// Snapshot returns the current ledger
	Snapshot(ctx context.Context) (*domain.AnalyticsLedger, error)

	// Stats returns the ledger with the registered user count
	Stats(ctx context.Context) (*domain.Stats, error)
}

// UserCounter reports how many accounts the identity provider holds
type UserCounter interface {
	UserCount(ctx context.Context) (int, error)
}

// QuoteService defines the interface for quote lookups
type QuoteService interface {
	// GetQuote returns a live quote, or fallback data when upstream fails or
	// does not know the symbol
	GetQuote(ctx context.Context, symbol string) (domain.Quote, error)

	// LiveQuotes returns upstream quotes for symbols without any fallback
	LiveQuotes(ctx context.Context, symbols []string) ([]domain.Quote, error)
}

// SignalService defines the interface for macro, theme and ticker signals
type SignalService interface {
	MarketSignals(ctx context.Context, lang string, tier domain.Tier) (*domain.MarketSignals, error)
	ThemeSignals(ctx context.Context, themeID, lang string) (*domain.ThemeSignals, error)
	Themes() []domain.Theme
	StockAnalysis(ctx context.Context, ticker, lang string) (*domain.StockAnalysis, error)
}

// NewsService defines the interface for the news feeds
type NewsService interface {
	// BreakingNews reads the analyzed breaking news document. It never fails;
	// problems are reported in the response's error field.
	BreakingNews(ctx context.Context) *domain.BreakingNewsResponse

	// News returns the market's news resolved for tier
	News(ctx context.Context, market string, tier domain.Tier) ([]domain.Resolution, error)
}

// PicksService defines the interface for the alpha board, VVIP picks and
// exchange rate. None of its calls fail; upstream problems yield fallback data.
type PicksService interface {
	AlphaSignals(ctx context.Context, lang string, tier domain.Tier) *domain.AlphaSignals
	VVIPPicks(ctx context.Context, lang string, tier domain.Tier) *domain.VVIPPicks
	ExchangeRate(ctx context.Context) domain.ExchangeRate
}

// Services aggregates all service interfaces
type Services struct {
	Auth      AuthService
	Analytics AnalyticsService
	Quotes    QuoteService
	Signals   SignalService
	News      NewsService
	Picks     PicksService
}
