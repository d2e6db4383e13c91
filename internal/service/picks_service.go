package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"stock-empire/internal/content"
	"stock-empire/internal/domain"
	"stock-empire/internal/market"
	"stock-empire/internal/signal"
	"stock-empire/pkg/logger"
)

// PicksLimit is the number of VVIP picks on the board
const PicksLimit = 3

// rateTTL is how long a provider exchange rate is reused
const rateTTL = time.Hour

// RateProvider returns the USD/KRW exchange rate
type RateProvider interface {
	USDKRW(ctx context.Context) (float64, error)
}

// picksService builds the alpha board, the VVIP picks and the exchange rate.
// Every response degrades to fallback data instead of failing.
type picksService struct {
	quotes QuoteService
	news   NewsService
	rates  RateProvider
	logger *logger.Logger
	now    func() time.Time

	rateGroup singleflight.Group
	rateMu    sync.Mutex
	rate      float64
	rateAt    time.Time
}

// NewPicksService creates a new picks service
func NewPicksService(quotes QuoteService, news NewsService, rates RateProvider, logger *logger.Logger) PicksService {
	return &picksService{
		quotes: quotes,
		news:   news,
		rates:  rates,
		logger: logger,
		now:    time.Now,
	}
}

// AlphaSignals scores the watchlist. Tiers without full analysis see the
// board with targets, stops and reasons withheld.
func (s *picksService) AlphaSignals(ctx context.Context, lang string, tier domain.Tier) *domain.AlphaSignals {
	now := s.now()
	resp := &domain.AlphaSignals{UpdatedAt: now.UTC().Format(time.RFC3339)}

	quotes, err := s.quotes.LiveQuotes(ctx, market.Watchlist)
	if err == nil && len(quotes) == 0 {
		err = fmt.Errorf("no watchlist quotes")
	}
	if err != nil {
		s.logger.WithError(err).Warn("Alpha quotes unavailable, serving fallback board")
		resp.Signals = market.FallbackAlphaSignals(lang, now)
		resp.IsFallback = true
	} else {
		resp.Signals = make([]domain.ThemeSignal, 0, len(quotes))
		for _, q := range quotes {
			resp.Signals = append(resp.Signals, market.AlphaSignal(q, lang, now))
		}
	}

	if !tier.Has(domain.CapFullAnalysis) {
		for i := range resp.Signals {
			resp.Signals[i].TargetPrice = 0
			resp.Signals[i].StopLoss = 0
			resp.Signals[i].AIReason = content.Mask(resp.Signals[i].AIReason)
		}
		resp.Locked = true
		resp.UnlockAction = upgradeTo(domain.TierVIP)
	}
	return resp
}

type pickCandidate struct {
	ticker string
	reason string
	impact int
	source string
}

// VVIPPicks returns the top picks for tiers holding macro_dashboard. Picks
// come from bullish or neutral US news tickers ranked by impact score, topped
// up from the watchlist.
func (s *picksService) VVIPPicks(ctx context.Context, lang string, tier domain.Tier) *domain.VVIPPicks {
	now := s.now()
	resp := &domain.VVIPPicks{
		Success:   true,
		Data:      []domain.VVIPPick{},
		UpdatedAt: now.UTC().Format(time.RFC3339),
	}

	if !tier.Has(domain.CapMacroDashboard) {
		resp.Locked = true
		resp.UnlockAction = upgradeTo(domain.TierVVIP)
		return resp
	}

	candidates := s.newsCandidates(ctx)
	for _, ticker := range market.Watchlist {
		if len(candidates) >= PicksLimit {
			break
		}
		if !hasCandidate(candidates, ticker) {
			candidates = append(candidates, pickCandidate{ticker: ticker, source: domain.PickSourceWatchlist})
		}
	}

	tickers := make([]string, len(candidates))
	for i, c := range candidates {
		tickers[i] = c.ticker
	}

	bySymbol := map[string]domain.Quote{}
	quotes, err := s.quotes.LiveQuotes(ctx, tickers)
	if err != nil {
		s.logger.WithError(err).Warn("Pick quotes unavailable, serving fallback prices")
	}
	for _, q := range quotes {
		bySymbol[strings.ToUpper(q.Symbol)] = q
	}

	for _, c := range candidates {
		q, ok := bySymbol[c.ticker]
		if !ok {
			q, _ = market.FallbackQuote(c.ticker)
			resp.IsFallback = true
		}
		resp.Data = append(resp.Data, buildPick(c, q, lang))
	}
	return resp
}

func (s *picksService) newsCandidates(ctx context.Context) []pickCandidate {
	items, err := s.news.News(ctx, MarketUS, domain.TierVVIP)
	if err != nil {
		s.logger.WithError(err).Warn("News unavailable for picks, using watchlist")
		return nil
	}

	var out []pickCandidate
	for _, res := range items {
		item := res.Content
		ticker := strings.ToUpper(strings.TrimSpace(item.Ticker))
		if ticker == "" || item.Sentiment == domain.SentimentBearish || hasCandidate(out, ticker) {
			continue
		}

		c := pickCandidate{ticker: ticker, reason: item.Title, source: domain.PickSourceNews}
		if item.HasAnalysisBody() {
			a := item.VIPTier.AIAnalysis
			c.impact = a.ImpactScore
			if a.InvestmentInsight != "" {
				c.reason = a.InvestmentInsight
			}
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].impact > out[j].impact })
	if len(out) > PicksLimit {
		out = out[:PicksLimit]
	}
	return out
}

func buildPick(c pickCandidate, q domain.Quote, lang string) domain.VVIPPick {
	impact := c.impact
	if impact <= 0 {
		impact = market.ImpactScore(c.ticker)
	}

	reason := c.reason
	if reason == "" {
		reason = market.Reason(c.ticker, q.RegularMarketChangePercent, lang)
	}

	name := q.ShortName
	if name == "" {
		name = c.ticker
	}

	price := q.RegularMarketPrice
	return domain.VVIPPick{
		Ticker:     c.ticker,
		Name:       name,
		Price:      fmt.Sprintf("$%.2f", price),
		Target:     fmt.Sprintf("$%.2f", market.AlphaTarget(price, impact)),
		Stop:       fmt.Sprintf("$%.2f", market.AlphaStop(price, impact)),
		Reason:     reason,
		Impact:     fmt.Sprintf("%d", impact),
		Signal:     signal.StockVerdict(c.ticker, q.RegularMarketChangePercent, lang).Label,
		Confidence: impact,
		Source:     c.source,
	}
}

func hasCandidate(cs []pickCandidate, ticker string) bool {
	for _, c := range cs {
		if c.ticker == ticker {
			return true
		}
	}
	return false
}

// ExchangeRate returns USD/KRW, reusing a provider rate for an hour. Provider
// failures serve FallbackUSDKRW and are not remembered.
func (s *picksService) ExchangeRate(ctx context.Context) domain.ExchangeRate {
	resp := domain.ExchangeRate{Base: "USD", Quote: "KRW"}

	s.rateMu.Lock()
	if !s.rateAt.IsZero() && s.now().Sub(s.rateAt) < rateTTL {
		resp.Rate = s.rate
		s.rateMu.Unlock()
		return resp
	}
	s.rateMu.Unlock()

	ch := s.rateGroup.DoChan("USDKRW", func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCallTimeout)
		defer cancel()

		rate, err := s.rates.USDKRW(callCtx)
		if err != nil {
			return 0.0, err
		}
		s.rateMu.Lock()
		s.rate, s.rateAt = rate, s.now()
		s.rateMu.Unlock()
		return rate, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		res.Err = ctx.Err()
	case res = <-ch:
	}

	if res.Err != nil {
		s.logger.WithError(res.Err).Warn("Exchange rate unavailable, serving fallback")
		resp.Rate = market.FallbackUSDKRW
		resp.IsFallback = true
		return resp
	}
	resp.Rate = res.Val.(float64)
	return resp
}

func upgradeTo(tier domain.Tier) *domain.UnlockAction {
	return &domain.UnlockAction{
		Type:         "UPGRADE",
		RequiredTier: tier,
		URL:          content.PricingURL,
	}
}
