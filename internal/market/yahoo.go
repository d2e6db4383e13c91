// Package market fetches quotes and derives the simulated market data served
// when upstream is unavailable.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stock-empire/internal/domain"
	"stock-empire/internal/metrics"
)

// QuoteProvider returns quotes for symbols. Symbols the provider does not
// know are omitted from the result.
type QuoteProvider interface {
	Quotes(ctx context.Context, symbols []string) ([]domain.Quote, error)
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// YahooClient reads the public Yahoo Finance quote endpoint
type YahooClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewYahooClient creates a client with a bounded request timeout
func NewYahooClient(baseURL string, timeout time.Duration) *YahooClient {
	return &YahooClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []domain.Quote `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

// Quotes fetches all symbols in one request
func (c *YahooClient) Quotes(ctx context.Context, symbols []string) ([]domain.Quote, error) {
	start := time.Now()
	quotes, err := c.fetch(ctx, symbols)
	metrics.RecordUpstream("yahoo", time.Since(start).Seconds(), err)
	return quotes, err
}

func (c *YahooClient) fetch(ctx context.Context, symbols []string) ([]domain.Quote, error) {
	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", c.baseURL, url.QueryEscape(strings.Join(symbols, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call quote provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote provider returned status %d", resp.StatusCode)
	}

	var parsed yahooQuoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse quote response: %w", err)
	}
	if e := parsed.QuoteResponse.Error; e != nil {
		return nil, fmt.Errorf("quote provider error %s: %s", e.Code, e.Description)
	}

	return parsed.QuoteResponse.Result, nil
}
