package service

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"stock-empire/internal/domain"
	"stock-empire/internal/market"
	"stock-empire/internal/metrics"
	apperrors "stock-empire/pkg/errors"
	"stock-empire/pkg/logger"
)

// sharedCallTimeout bounds an upstream call shared by several requests.
const sharedCallTimeout = 10 * time.Second

// quoteService serves quotes from the provider, through the Redis cache when
// one is configured. Identical concurrent upstream calls share one request,
// which runs detached from any single caller's cancellation.
type quoteService struct {
	provider market.QuoteProvider
	cache    *CacheService // nil without Redis
	group    singleflight.Group
	logger   *logger.Logger
}

// NewQuoteService creates a new quote service
func NewQuoteService(provider market.QuoteProvider, cache *CacheService, logger *logger.Logger) QuoteService {
	return &quoteService{
		provider: provider,
		cache:    cache,
		logger:   logger,
	}
}

// GetQuote returns the live quote for symbol. Upstream failures and unknown
// symbols are answered with the known-symbol table or a simulated quote.
func (s *quoteService) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return domain.Quote{}, apperrors.NewValidationError("Symbol is required", map[string]interface{}{
			"param": "symbol",
		})
	}

	var (
		quote *domain.Quote
		err   error
	)
	if s.cache != nil {
		quote, err = s.cache.GetQuoteWithCache(ctx, symbol, s.fetchOne)
	} else {
		quote, err = s.fetchOne(ctx, symbol)
	}

	if err == nil && quote != nil {
		return *quote, nil
	}
	if err != nil {
		s.logger.WithError(err).WithField("symbol", symbol).Warn("Quote provider failed, serving fallback")
	}

	fallback, source := market.FallbackQuote(symbol)
	metrics.QuoteFallbackTotal.WithLabelValues(source).Inc()
	return fallback, nil
}

// LiveQuotes returns upstream quotes only. Symbols upstream does not know are
// missing from the result.
func (s *quoteService) LiveQuotes(ctx context.Context, symbols []string) ([]domain.Quote, error) {
	ch := s.group.DoChan(strings.Join(symbols, ","), func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCallTimeout)
		defer cancel()
		return s.provider.Quotes(callCtx, symbols)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	shared := res.Val.([]domain.Quote)
	quotes := make([]domain.Quote, len(shared))
	copy(quotes, shared)
	return quotes, nil
}

func (s *quoteService) fetchOne(ctx context.Context, symbol string) (*domain.Quote, error) {
	quotes, err := s.LiveQuotes(ctx, []string{symbol})
	if err != nil {
		return nil, err
	}
	for i := range quotes {
		if strings.EqualFold(quotes[i].Symbol, symbol) {
			return &quotes[i], nil
		}
	}
	return nil, nil
}
