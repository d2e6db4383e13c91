package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"stock-empire/internal/content"
	"stock-empire/internal/domain"
	"stock-empire/internal/repository"
	apperrors "stock-empire/pkg/errors"
	"stock-empire/pkg/logger"
)

// NewsLimit caps the items returned by News
const NewsLimit = 60

// DefaultAnalyst names the desk when the breaking news document does not
const DefaultAnalyst = "코부장"

// News markets
const (
	MarketAll = "ALL"
	MarketKR  = "KR"
	MarketUS  = "US"
)

// NewsFiles names the feed files read by the news service
type NewsFiles struct {
	Breaking string
	KR       string
	US       string
}

type newsService struct {
	feeds  *repository.FeedRepository
	files  NewsFiles
	logger *logger.Logger
}

// NewNewsService creates a new news service
func NewNewsService(feeds *repository.FeedRepository, files NewsFiles, logger *logger.Logger) NewsService {
	return &newsService{
		feeds:  feeds,
		files:  files,
		logger: logger,
	}
}

// BreakingNews reads the analyzed breaking news document
func (s *newsService) BreakingNews(ctx context.Context) *domain.BreakingNewsResponse {
	doc, err := s.feeds.ReadAnalyzed(s.files.Breaking)
	if errors.Is(err, repository.ErrFeedNotFound) {
		return &domain.BreakingNewsResponse{BreakingNews: []json.RawMessage{}}
	}
	if err != nil {
		s.logger.WithError(err).Error("Failed to load breaking news")
		return &domain.BreakingNewsResponse{
			BreakingNews: []json.RawMessage{},
			Error:        "Failed to load breaking news",
		}
	}

	resp := &domain.BreakingNewsResponse{
		BreakingNews: doc.AnalyzedNews,
		LastAnalyzed: doc.LastAnalyzed,
		TotalCount:   doc.TotalCount,
		Analyst:      doc.Analyst,
	}
	if resp.BreakingNews == nil {
		resp.BreakingNews = []json.RawMessage{}
	}
	if resp.Analyst == "" {
		resp.Analyst = DefaultAnalyst
	}
	return resp
}

// News returns up to NewsLimit items of the market's feeds, resolved for tier.
// KR items come before US items when both are requested.
func (s *newsService) News(ctx context.Context, market string, tier domain.Tier) ([]domain.Resolution, error) {
	market = strings.ToUpper(strings.TrimSpace(market))
	if market == "" {
		market = MarketAll
	}

	var files []string
	switch market {
	case MarketAll:
		files = []string{s.files.KR, s.files.US}
	case MarketKR:
		files = []string{s.files.KR}
	case MarketUS:
		files = []string{s.files.US}
	default:
		return nil, apperrors.NewValidationError("Invalid market", map[string]interface{}{
			"market":  market,
			"allowed": []string{MarketAll, MarketKR, MarketUS},
		})
	}

	var items []domain.NewsItem
	for _, name := range files {
		feed, err := s.feeds.ReadNews(name)
		if errors.Is(err, repository.ErrFeedNotFound) {
			s.logger.WithField("file", name).Debug("News feed file not present")
			continue
		}
		if err != nil {
			s.logger.WithError(err).WithField("file", name).Error("News feed read error")
			return nil, apperrors.NewInternalError("Failed to read news feed", err)
		}
		items = append(items, feed...)
	}

	if len(items) > NewsLimit {
		items = items[:NewsLimit]
	}
	return content.ResolveAll(items, tier), nil
}
