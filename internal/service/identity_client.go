package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stock-empire/internal/metrics"
	"stock-empire/pkg/logger"
)

// identityCountResponse is the body of the provider's user count endpoint
type identityCountResponse struct {
	Object     string `json:"object"`
	TotalCount int    `json:"total_count"`
}

// IdentityClient reads account data from the identity provider's backend API
type IdentityClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewIdentityClient creates a new identity provider client
func NewIdentityClient(baseURL, apiKey string, timeout time.Duration, logger *logger.Logger) *IdentityClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &IdentityClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// UserCount returns the number of registered accounts
func (c *IdentityClient) UserCount(ctx context.Context) (int, error) {
	start := time.Now()
	count, err := c.fetchUserCount(ctx)
	metrics.RecordUpstream("identity", time.Since(start).Seconds(), err)
	return count, err
}

func (c *IdentityClient) fetchUserCount(ctx context.Context) (int, error) {
	url := fmt.Sprintf("%s/v1/users/count", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to call identity provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("identity provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var countResp identityCountResponse
	if err := json.Unmarshal(body, &countResp); err != nil {
		c.logger.WithFields(map[string]interface{}{
			"response_body": string(body),
			"status_code":   resp.StatusCode,
		}).Error("Failed to parse identity provider response")
		return 0, fmt.Errorf("failed to parse identity provider response: %w", err)
	}

	c.logger.WithField("total_count", countResp.TotalCount).Debug("Fetched identity provider user count")
	return countResp.TotalCount, nil
}
