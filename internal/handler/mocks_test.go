package handler

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/mock"

	"stock-empire/internal/domain"
	"stock-empire/internal/middleware"
)

type mockAnalyticsService struct {
	mock.Mock
}

func (m *mockAnalyticsService) Start(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockAnalyticsService) Stop(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockAnalyticsService) Record(ctx context.Context, event domain.TrackEvent, clientIP string) (*domain.AnalyticsLedger, *domain.RateLimitInfo, error) {
	args := m.Called(ctx, event, clientIP)
	ledger, _ := args.Get(0).(*domain.AnalyticsLedger)
	info, _ := args.Get(1).(*domain.RateLimitInfo)
	return ledger, info, args.Error(2)
}

func (m *mockAnalyticsService) Snapshot(ctx context.Context) (*domain.AnalyticsLedger, error) {
	args := m.Called(ctx)
	ledger, _ := args.Get(0).(*domain.AnalyticsLedger)
	return ledger, args.Error(1)
}

func (m *mockAnalyticsService) Stats(ctx context.Context) (*domain.Stats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*domain.Stats)
	return stats, args.Error(1)
}

type mockQuoteService struct {
	mock.Mock
}

func (m *mockQuoteService) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(domain.Quote), args.Error(1)
}

func (m *mockQuoteService) LiveQuotes(ctx context.Context, symbols []string) ([]domain.Quote, error) {
	args := m.Called(ctx, symbols)
	quotes, _ := args.Get(0).([]domain.Quote)
	return quotes, args.Error(1)
}

type mockSignalService struct {
	mock.Mock
}

func (m *mockSignalService) MarketSignals(ctx context.Context, lang string, tier domain.Tier) (*domain.MarketSignals, error) {
	args := m.Called(ctx, lang, tier)
	signals, _ := args.Get(0).(*domain.MarketSignals)
	return signals, args.Error(1)
}

func (m *mockSignalService) ThemeSignals(ctx context.Context, themeID, lang string) (*domain.ThemeSignals, error) {
	args := m.Called(ctx, themeID, lang)
	signals, _ := args.Get(0).(*domain.ThemeSignals)
	return signals, args.Error(1)
}

func (m *mockSignalService) Themes() []domain.Theme {
	return m.Called().Get(0).([]domain.Theme)
}

func (m *mockSignalService) StockAnalysis(ctx context.Context, ticker, lang string) (*domain.StockAnalysis, error) {
	args := m.Called(ctx, ticker, lang)
	analysis, _ := args.Get(0).(*domain.StockAnalysis)
	return analysis, args.Error(1)
}

type mockNewsService struct {
	mock.Mock
}

func (m *mockNewsService) BreakingNews(ctx context.Context) *domain.BreakingNewsResponse {
	return m.Called(ctx).Get(0).(*domain.BreakingNewsResponse)
}

func (m *mockNewsService) News(ctx context.Context, market string, tier domain.Tier) ([]domain.Resolution, error) {
	args := m.Called(ctx, market, tier)
	items, _ := args.Get(0).([]domain.Resolution)
	return items, args.Error(1)
}

type mockSnapshotRepository struct {
	mock.Mock
}

func (m *mockSnapshotRepository) SaveSnapshot(ctx context.Context, snapshot *domain.LedgerSnapshot) error {
	return m.Called(ctx, snapshot).Error(0)
}

func (m *mockSnapshotRepository) GetLatestSnapshot(ctx context.Context) (*domain.LedgerSnapshot, error) {
	args := m.Called(ctx)
	snapshot, _ := args.Get(0).(*domain.LedgerSnapshot)
	return snapshot, args.Error(1)
}

func (m *mockSnapshotRepository) DeleteOldSnapshots(ctx context.Context, retentionDays int) (int64, error) {
	args := m.Called(ctx, retentionDays)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSnapshotRepository) GetSnapshotCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// withClaims attaches verified claims the way the auth middleware does
func withClaims(r *http.Request, claims *domain.AuthClaims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.ClaimsContextKey, claims))
}

type mockPicksService struct {
	mock.Mock
}

func (m *mockPicksService) AlphaSignals(ctx context.Context, lang string, tier domain.Tier) *domain.AlphaSignals {
	return m.Called(ctx, lang, tier).Get(0).(*domain.AlphaSignals)
}

func (m *mockPicksService) VVIPPicks(ctx context.Context, lang string, tier domain.Tier) *domain.VVIPPicks {
	return m.Called(ctx, lang, tier).Get(0).(*domain.VVIPPicks)
}

func (m *mockPicksService) ExchangeRate(ctx context.Context) domain.ExchangeRate {
	return m.Called(ctx).Get(0).(domain.ExchangeRate)
}
