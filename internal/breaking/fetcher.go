package breaking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"stock-empire/internal/domain"
	"stock-empire/internal/metrics"
)

// Fetcher returns the current feed snapshot in feed order.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.NewsItem, error)
}

// HTTPFetcher reads the feed from a URL. Every request carries a t=<unix ms>
// parameter so intermediate caches never serve a stale snapshot.
type HTTPFetcher struct {
	feedURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewHTTPFetcher creates a fetcher with a bounded request timeout.
func NewHTTPFetcher(feedURL string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		feedURL:    feedURL,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context) ([]domain.NewsItem, error) {
	u, err := url.Parse(f.feedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed url: %w", err)
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(f.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstream("news_feed", time.Since(start).Seconds(), err)
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err == nil && resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("feed returned status %d", resp.StatusCode)
	}
	metrics.RecordUpstream("news_feed", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}

	return decodeFeed(body)
}

// FileFetcher reads the feed from a local file.
type FileFetcher struct {
	path string
}

func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{path: path}
}

func (f *FileFetcher) Fetch(_ context.Context) ([]domain.NewsItem, error) {
	body, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}
	return decodeFeed(body)
}

func decodeFeed(body []byte) ([]domain.NewsItem, error) {
	var items []domain.NewsItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}
	return items, nil
}
