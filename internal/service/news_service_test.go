package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-empire/internal/domain"
	"stock-empire/internal/repository"
	apperrors "stock-empire/pkg/errors"
	"stock-empire/pkg/logger"
)

var testNewsFiles = NewsFiles{
	Breaking: "breaking_news_analyzed.json",
	KR:       "kr_news_latest.json",
	US:       "us_news_latest.json",
}

func newNewsService(t *testing.T, files map[string]string) NewsService {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return NewNewsService(repository.NewFeedRepository([]string{dir}), testNewsFiles, logger.NewNop())
}

func newsFeed(prefix string, n int) string {
	items := make([]domain.NewsItem, n)
	for i := range items {
		items[i] = domain.NewsItem{
			ID:       fmt.Sprintf("%s-%d", prefix, i),
			FreeTier: domain.FreeTierContent{Title: "headline"},
			VIPTier: &domain.VIPTierContent{AIAnalysis: &domain.AIAnalysis{
				InvestmentInsight: "premium insight",
			}},
		}
	}
	raw, _ := json.Marshal(items)
	return string(raw)
}

func TestNewsService_BreakingNews(t *testing.T) {
	ctx := context.Background()

	resp := newNewsService(t, nil).BreakingNews(ctx)
	assert.Empty(t, resp.BreakingNews)
	assert.NotNil(t, resp.BreakingNews)
	assert.Zero(t, resp.TotalCount)
	assert.Nil(t, resp.LastAnalyzed)
	assert.Empty(t, resp.Error)

	resp = newNewsService(t, map[string]string{
		testNewsFiles.Breaking: `{"analyzed_news":[{"id":"b1"},{"id":"b2"}],"last_analyzed":"2026-03-15T08:00:00Z","total_count":2}`,
	}).BreakingNews(ctx)
	assert.Len(t, resp.BreakingNews, 2)
	assert.Equal(t, 2, resp.TotalCount)
	require.NotNil(t, resp.LastAnalyzed)
	assert.Equal(t, "2026-03-15T08:00:00Z", *resp.LastAnalyzed)
	assert.Equal(t, DefaultAnalyst, resp.Analyst)

	resp = newNewsService(t, map[string]string{
		testNewsFiles.Breaking: `{"analyzed_news":[],"analyst":"Desk"}`,
	}).BreakingNews(ctx)
	assert.Equal(t, "Desk", resp.Analyst)

	resp = newNewsService(t, map[string]string{testNewsFiles.Breaking: "{broken"}).BreakingNews(ctx)
	assert.Equal(t, "Failed to load breaking news", resp.Error)
	assert.Zero(t, resp.TotalCount)
	assert.NotNil(t, resp.BreakingNews)
}

func TestNewsService_NewsMarkets(t *testing.T) {
	svc := newNewsService(t, map[string]string{
		testNewsFiles.KR: newsFeed("kr", 2),
		testNewsFiles.US: newsFeed("us", 3),
	})
	ctx := context.Background()

	all, err := svc.News(ctx, "", domain.TierFree)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "kr-0", all[0].Content.ID)
	assert.Equal(t, "us-0", all[2].Content.ID)

	kr, err := svc.News(ctx, "kr", domain.TierFree)
	require.NoError(t, err)
	assert.Len(t, kr, 2)

	us, err := svc.News(ctx, "US", domain.TierFree)
	require.NoError(t, err)
	assert.Len(t, us, 3)

	_, err = svc.News(ctx, "JP", domain.TierFree)
	assert.Equal(t, http.StatusBadRequest, apperrors.As(err).StatusCode)
}

func TestNewsService_NewsResolvesTier(t *testing.T) {
	svc := newNewsService(t, map[string]string{testNewsFiles.US: newsFeed("us", 1)})
	ctx := context.Background()

	free, err := svc.News(ctx, "US", domain.TierFree)
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.True(t, free[0].Redacted)
	require.NotNil(t, free[0].UnlockAction)
	assert.NotEqual(t, "premium insight", free[0].Content.VIPTier.AIAnalysis.InvestmentInsight)

	vip, err := svc.News(ctx, "US", domain.TierVIP)
	require.NoError(t, err)
	assert.False(t, vip[0].Redacted)
	assert.Equal(t, "premium insight", vip[0].Content.VIPTier.AIAnalysis.InvestmentInsight)
}

func TestNewsService_NewsLimitAndErrors(t *testing.T) {
	svc := newNewsService(t, map[string]string{
		testNewsFiles.KR: newsFeed("kr", 40),
		testNewsFiles.US: newsFeed("us", 40),
	})
	items, err := svc.News(context.Background(), "ALL", domain.TierVIP)
	require.NoError(t, err)
	assert.Len(t, items, NewsLimit)

	empty := newNewsService(t, nil)
	items, err = empty.News(context.Background(), "ALL", domain.TierVIP)
	require.NoError(t, err)
	assert.Empty(t, items)

	broken := newNewsService(t, map[string]string{testNewsFiles.KR: "[{"})
	_, err = broken.News(context.Background(), "KR", domain.TierVIP)
	assert.Equal(t, http.StatusInternalServerError, apperrors.As(err).StatusCode)
}
