// Package content decides how much of a news item a viewer's tier may see.
package content

import (
	"strings"
	"unicode/utf8"

	"stock-empire/internal/domain"
)

// PricingURL is where redacted content sends viewers to upgrade.
const PricingURL = "/pricing"

const maskRune = '•'

// maxMaskLen caps the mask so it hints at length without echoing it.
const maxMaskLen = 48

// Resolve returns the item as tier may see it. Without full analysis the
// free-tier preview is kept and the analysis body is masked; items with no
// analysis body are returned whole.
func Resolve(item domain.NewsItem, tier domain.Tier) domain.Resolution {
	if tier.Has(domain.CapFullAnalysis) || !item.HasAnalysisBody() {
		return domain.Resolution{Content: item}
	}

	redacted := item
	src := item.VIPTier.AIAnalysis
	redacted.VIPTier = &domain.VIPTierContent{
		Locked: true,
		AIAnalysis: &domain.AIAnalysis{
			SummaryKR:         Mask(src.SummaryKR),
			InvestmentInsight: Mask(src.InvestmentInsight),
			ImpactScore:       src.ImpactScore,
		},
	}

	return domain.Resolution{
		Content:  redacted,
		Redacted: true,
		UnlockAction: &domain.UnlockAction{
			Type:         "UPGRADE",
			RequiredTier: domain.TierVIP,
			URL:          PricingURL,
		},
	}
}

// ResolveAll resolves every item against the same tier.
func ResolveAll(items []domain.NewsItem, tier domain.Tier) []domain.Resolution {
	out := make([]domain.Resolution, 0, len(items))
	for _, item := range items {
		out = append(out, Resolve(item, tier))
	}
	return out
}

// Mask replaces text with placeholder runes.
func Mask(text string) string {
	if text == "" {
		return ""
	}
	n := utf8.RuneCountInString(text)
	if n > maxMaskLen {
		n = maxMaskLen
	}
	return strings.Repeat(string(maskRune), n)
}
