package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-empire/internal/domain"
)

func TestYahooClient_Quotes(t *testing.T) {
	var gotSymbols, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/quote", r.URL.Path)
		gotSymbols = r.URL.Query().Get("symbols")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quoteResponse":{"result":[
			{"symbol":"KRW=X","regularMarketPrice":1412.5,"regularMarketChangePercent":0.4},
			{"symbol":"^TNX","regularMarketPrice":4.21,"regularMarketChangePercent":-1.1,"regularMarketVolume":0}
		],"error":null}}`))
	}))
	defer srv.Close()

	client := NewYahooClient(srv.URL+"/", time.Second)
	quotes, err := client.Quotes(context.Background(), []string{"KRW=X", "^TNX"})
	require.NoError(t, err)

	assert.Equal(t, "KRW=X,^TNX", gotSymbols)
	assert.Contains(t, gotUA, "Mozilla/5.0")
	require.Len(t, quotes, 2)
	assert.Equal(t, 1412.5, quotes[0].RegularMarketPrice)
	assert.Equal(t, -1.1, quotes[1].RegularMarketChangePercent)
}

func TestYahooClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"bad status", http.StatusTooManyRequests, `{}`, "status 429"},
		{"invalid json", http.StatusOK, `<html>`, "failed to parse"},
		{"provider error", http.StatusOK, `{"quoteResponse":{"result":[],"error":{"code":"Unauthorized","description":"no crumb"}}}`, "Unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewYahooClient(srv.URL, time.Second).Quotes(context.Background(), []string{"NVDA"})
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestKnownQuote(t *testing.T) {
	q, ok := KnownQuote("nvda")
	require.True(t, ok)
	assert.Equal(t, "NVIDIA Corporation", q.ShortName)
	assert.Equal(t, 185.41, q.RegularMarketPrice)
	assert.False(t, q.IsSimulated)

	q, ok = KnownQuote("JTAI")
	require.True(t, ok)
	assert.Nil(t, q.TrailingPE)

	_, ok = KnownQuote("ZZZZ")
	assert.False(t, ok)
}

func TestSimulatedQuote_Deterministic(t *testing.T) {
	a := SimulatedQuote("zzzz")
	b := SimulatedQuote("ZZZZ")

	assert.Equal(t, a, b)
	assert.True(t, a.IsSimulated)
	assert.Equal(t, "ZZZZ", a.Symbol)
	assert.Equal(t, "ZZZZ (Simulated)", a.ShortName)
	assert.GreaterOrEqual(t, a.RegularMarketPrice, 0.5)
	assert.Less(t, a.RegularMarketPrice, 200.5)
	assert.LessOrEqual(t, a.RegularMarketChangePercent, 5.0)
	assert.GreaterOrEqual(t, a.RegularMarketChangePercent, -5.0)
}

func TestSymbolHash(t *testing.T) {
	// "AB": 65, then 66 + (65<<5 - 65) = 66 + 2015
	assert.Equal(t, int64(2081), symbolHash("AB"))
	assert.Equal(t, int64(0), symbolHash(""))
}

func TestFallbackQuote(t *testing.T) {
	q, source := FallbackQuote("AAPL")
	assert.Equal(t, "known", source)
	assert.Equal(t, 248.50, q.RegularMarketPrice)

	q, source = FallbackQuote("QQQQ")
	assert.Equal(t, "simulated", source)
	assert.True(t, q.IsSimulated)
}

func TestCatalogue(t *testing.T) {
	c, err := LoadCatalogue("")
	require.NoError(t, err)

	assert.Len(t, c.All(), 5)
	theme, ok := c.Find("ai-revolution")
	require.True(t, ok)
	assert.Equal(t, "AI Revolution", theme.Name("en"))
	assert.Equal(t, "AI 혁명", theme.Name("ko"))
	assert.Contains(t, theme.Tickers, "NVDA")

	_, ok = c.Find("space")
	assert.False(t, ok)
}

func TestLoadCatalogue_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "themes.yaml")
	doc := `
themes:
  - id: space
    name_ko: 우주
    name_en: Space
    tickers: [RKLB, ASTS]
  - id: space
    name_en: Duplicate
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := LoadCatalogue(path)
	require.NoError(t, err)
	require.Len(t, c.All(), 1)

	theme, ok := c.Find("space")
	require.True(t, ok)
	assert.Equal(t, "Space", theme.NameEN)
	assert.Equal(t, []string{"RKLB", "ASTS"}, theme.Tickers)

	require.NoError(t, os.WriteFile(path, []byte("themes: []\n"), 0o644))
	_, err = LoadCatalogue(path)
	assert.Error(t, err)
}

func TestDemoAnalyst(t *testing.T) {
	now := time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)
	q := domain.Quote{Symbol: "NVDA", ShortName: "NVIDIA Corporation", RegularMarketPrice: 100, RegularMarketChangePercent: 2.345, RegularMarketVolume: 1000}

	s := DemoAnalyst{}.Analyze(q, "en", now)
	assert.Equal(t, "NVDA", s.Ticker)
	assert.Equal(t, 2.35, s.ChangePct)
	assert.Equal(t, domain.SentimentBullish, s.Sentiment)
	assert.GreaterOrEqual(t, s.ImpactScore, 65)
	assert.Less(t, s.ImpactScore, 95)
	assert.Equal(t, s.ImpactScore > 85, s.WhaleActive)
	assert.Greater(t, s.TargetPrice, 104.0)
	assert.Less(t, s.StopLoss, 97.0)
	assert.Contains(t, s.AIReason, "Blackwell")
	assert.Equal(t, "2026-02-07T09:00:00Z", s.UpdatedAt)

	assert.Equal(t, s, DemoAnalyst{}.Analyze(q, "en", now))
}

func TestReason(t *testing.T) {
	assert.Equal(t, bearEN[(4+15)%3], Reason("AMZN", -1.5, "en"))
	assert.Equal(t, bullKO[(4+0)%3], Reason("MSFT", 0, "ko"))
	assert.Contains(t, Reason("TSLA", -0.1, "ko"), "로보택시")
}

func TestAlphaSignal(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		change    float64
		sentiment domain.Sentiment
		reason    string
		minImpact int
	}{
		{"steady", 0.4, domain.SentimentBullish, "Institutional inflow", 85},
		{"breakout", 3.5, domain.SentimentBullish, "Resistance breakout", 92},
		{"oversold", -2.5, domain.SentimentBullish, "oversold territory", 85},
		{"selling", -5.5, domain.SentimentBearish, "selling pressure", 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := domain.Quote{Symbol: "META", RegularMarketPrice: 100, RegularMarketChangePercent: tt.change}
			sig := AlphaSignal(q, "en", now)

			assert.Equal(t, tt.sentiment, sig.Sentiment)
			assert.Contains(t, sig.AIReason, tt.reason)
			assert.GreaterOrEqual(t, sig.ImpactScore, tt.minImpact)
			assert.LessOrEqual(t, sig.ImpactScore, 99)
			assert.Equal(t, "META", sig.Name)
			assert.Equal(t, AlphaTarget(100, sig.ImpactScore), sig.TargetPrice)
			assert.Equal(t, AlphaStop(100, sig.ImpactScore), sig.StopLoss)
			assert.Equal(t, sig, AlphaSignal(q, "en", now))
		})
	}
}

func TestFallbackAlphaSignals(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	signals := FallbackAlphaSignals("ko", now)
	require.Len(t, signals, 4)
	assert.Equal(t, "TSLA-fallback", signals[0].ID)
	assert.Equal(t, 94, signals[0].ImpactScore)
	assert.Equal(t, domain.SentimentNeutral, signals[2].Sentiment)
	assert.Contains(t, signals[0].AIReason, "FSD")
	assert.Equal(t, "2026-03-15T09:00:00Z", signals[3].UpdatedAt)
	for _, s := range signals {
		assert.True(t, s.IsFallback)
	}

	// Callers get their own copies.
	signals[0].Price = 1
	assert.Equal(t, 412.50, FallbackAlphaSignals("en", now)[0].Price)
}

func TestExchangeRateClient(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    float64
		wantErr string
	}{
		{name: "rate", status: http.StatusOK, body: `{"base":"USD","rates":{"KRW":1385.5,"JPY":150.1}}`, want: 1385.5},
		{name: "missing KRW", status: http.StatusOK, body: `{"base":"USD","rates":{"JPY":150.1}}`, wantErr: "no KRW rate"},
		{name: "bad status", status: http.StatusBadGateway, body: `{}`, wantErr: "status 502"},
		{name: "invalid json", status: http.StatusOK, body: `nope`, wantErr: "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v4/latest/USD", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			rate, err := NewExchangeRateClient(srv.URL+"/", time.Second).USDKRW(context.Background())
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rate)
		})
	}
}
