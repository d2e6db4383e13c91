package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"stock-empire/internal/metrics"
)

// FallbackUSDKRW is served when the rate provider is unavailable
const FallbackUSDKRW = 1400.0

// ExchangeRateClient reads USD rates from an exchangerate-api compatible endpoint
type ExchangeRateClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewExchangeRateClient creates a client with a bounded request timeout
func NewExchangeRateClient(baseURL string, timeout time.Duration) *ExchangeRateClient {
	return &ExchangeRateClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type latestRatesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// USDKRW returns the current won per dollar
func (c *ExchangeRateClient) USDKRW(ctx context.Context) (float64, error) {
	start := time.Now()
	rate, err := c.fetch(ctx)
	metrics.RecordUpstream("exchangerate", time.Since(start).Seconds(), err)
	return rate, err
}

func (c *ExchangeRateClient) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v4/latest/USD", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to call rate provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate provider returned status %d", resp.StatusCode)
	}

	var parsed latestRatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("failed to parse rate response: %w", err)
	}

	rate, ok := parsed.Rates["KRW"]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("rate provider has no KRW rate")
	}
	return rate, nil
}
