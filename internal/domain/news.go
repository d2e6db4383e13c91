package domain

import (
	"encoding/json"
	"time"
)

// Sentiment is the market bias attached to a news item or signal
type Sentiment string

const (
	SentimentBullish Sentiment = "BULLISH"
	SentimentBearish Sentiment = "BEARISH"
	SentimentNeutral Sentiment = "NEUTRAL"
)

// FreeTierContent is visible to every viewer
type FreeTierContent struct {
	Title          string `json:"title"`
	SummaryKR      string `json:"summary_kr,omitempty"`
	Link           string `json:"link,omitempty"`
	OriginalSource string `json:"original_source,omitempty"`
}

// AIAnalysis is the premium analysis body
type AIAnalysis struct {
	SummaryKR         string `json:"summary_kr,omitempty"`
	InvestmentInsight string `json:"investment_insight,omitempty"`
	ImpactScore       int    `json:"impact_score,omitempty"`
}

// VIPTierContent wraps the premium analysis
type VIPTierContent struct {
	AIAnalysis *AIAnalysis `json:"ai_analysis,omitempty"`
	Locked     bool        `json:"locked,omitempty"`
}

// NewsItem is one entry of the realtime news feed
type NewsItem struct {
	ID          string          `json:"id"`
	Market      string          `json:"market,omitempty"`
	Ticker      string          `json:"ticker,omitempty"`
	Title       string          `json:"title,omitempty"`
	TitleKR     string          `json:"title_kr,omitempty"`
	Link        string          `json:"link,omitempty"`
	PublishedAt string          `json:"published_at,omitempty"`
	Sentiment   Sentiment       `json:"sentiment,omitempty"`
	IsBreaking  bool            `json:"is_breaking,omitempty"`
	WinRate     *float64        `json:"win_rate,omitempty"`
	FreeTier    FreeTierContent `json:"free_tier"`
	VIPTier     *VIPTierContent `json:"vip_tier,omitempty"`
}

// HasAnalysisBody reports whether the item carries premium text
func (n NewsItem) HasAnalysisBody() bool {
	if n.VIPTier == nil || n.VIPTier.AIAnalysis == nil {
		return false
	}
	a := n.VIPTier.AIAnalysis
	return a.SummaryKR != "" || a.InvestmentInsight != ""
}

// BreakingNewsItem is the notification payload for a breaking item
type BreakingNewsItem struct {
	ID          string    `json:"id"`
	IsBreaking  bool      `json:"is_breaking"`
	Sentiment   Sentiment `json:"sentiment"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
}

// Breaking projects a feed item onto a notification. Free-tier title and link win
// over the top-level ones, as the feed fills those first.
func (n NewsItem) Breaking() BreakingNewsItem {
	title := n.FreeTier.Title
	if title == "" {
		title = n.Title
	}
	link := n.FreeTier.Link
	if link == "" {
		link = n.Link
	}
	published, _ := time.Parse(time.RFC3339, n.PublishedAt)

	sentiment := n.Sentiment
	if sentiment == "" {
		sentiment = SentimentNeutral
	}

	return BreakingNewsItem{
		ID:          n.ID,
		IsBreaking:  n.IsBreaking,
		Sentiment:   sentiment,
		Title:       title,
		Link:        link,
		PublishedAt: published,
	}
}

// AnalyzedNewsFile is the breaking_news_analyzed.json document
type AnalyzedNewsFile struct {
	AnalyzedNews []json.RawMessage `json:"analyzed_news"`
	LastAnalyzed *string           `json:"last_analyzed"`
	TotalCount   int               `json:"total_count"`
	Analyst      string            `json:"analyst,omitempty"`
}

// BreakingNewsResponse is the body of GET /api/breaking-news
type BreakingNewsResponse struct {
	BreakingNews []json.RawMessage `json:"breaking_news"`
	LastAnalyzed *string           `json:"last_analyzed"`
	TotalCount   int               `json:"total_count"`
	Analyst      string            `json:"analyst,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// UnlockAction tells a client how to reach redacted content
type UnlockAction struct {
	Type         string `json:"type"`
	RequiredTier Tier   `json:"required_tier"`
	URL          string `json:"url"`
}

// Resolution is a news item as a given tier may see it
type Resolution struct {
	Content      NewsItem      `json:"content"`
	Redacted     bool          `json:"redacted"`
	UnlockAction *UnlockAction `json:"unlock_action,omitempty"`
}
