package market

import (
	"fmt"
	"time"

	"stock-empire/internal/domain"
)

// Watchlist is the fixed universe scanned for alpha signals
var Watchlist = []string{"META", "NVDA", "AAPL", "TSLA", "AMD", "MSFT", "GOOGL", "PLTR"}

type alphaNote struct{ ko, en string }

var (
	noteInflow = alphaNote{
		ko: "주요 지지선에서 기관의 강한 매수세가 확인됩니다. 추세 지속 가능성이 매우 높습니다.",
		en: "Institutional inflow detected at support levels. High probability of trend continuation.",
	}
	noteOversold = alphaNote{
		ko: "RSI 과매도 구간 진입에 따른 기술적 반등이 강력하게 예상되는 시점입니다.",
		en: "Technical bounce expected from oversold territory. RSI indicator oversold.",
	}
	noteBreakout = alphaNote{
		ko: "상승 모멘텀이 가속화되고 있으며, 주요 저항선 돌파가 진행 중입니다.",
		en: "Upward momentum accelerating. Resistance breakout in progress.",
	}
	noteSelling = alphaNote{
		ko: "강한 매도 압력이 감지되었습니다. 보수적인 관점에서의 리스크 관리가 필요합니다.",
		en: "Significant selling pressure detected. Recommend defensive positioning.",
	}
)

func (n alphaNote) text(lang string) string {
	if lang == "en" {
		return n.en
	}
	return n.ko
}

// AlphaSignal scores a watchlist quote. Only a drop below -5% reads bearish;
// an oversold drop is read as a bounce setup.
func AlphaSignal(q domain.Quote, lang string, now time.Time) domain.ThemeSignal {
	change := q.RegularMarketChangePercent
	h := abs64(symbolHash(q.Symbol))

	sentiment := domain.SentimentBullish
	impact := 85 + int(h%15)
	note := noteInflow

	switch {
	case change < -5:
		sentiment = domain.SentimentBearish
		impact = 90 + int(h%10)
		note = noteSelling
	case change < -2:
		note = noteOversold
	case change > 3:
		impact = 92 + int(h%7)
		note = noteBreakout
	}

	name := q.ShortName
	if name == "" {
		name = q.Symbol
	}

	return domain.ThemeSignal{
		ID:          fmt.Sprintf("%s-%d", q.Symbol, now.UnixMilli()),
		Ticker:      q.Symbol,
		Name:        name,
		Price:       q.RegularMarketPrice,
		ChangePct:   round2(change),
		Sentiment:   sentiment,
		ImpactScore: impact,
		TargetPrice: AlphaTarget(q.RegularMarketPrice, impact),
		StopLoss:    AlphaStop(q.RegularMarketPrice, impact),
		AIReason:    note.text(lang),
		UpdatedAt:   now.UTC().Format(time.RFC3339),
	}
}

// AlphaTarget and AlphaStop bracket price by impact score
func AlphaTarget(price float64, impact int) float64 {
	return round2(price * (1 + float64(impact)/1200 + 0.04))
}

func AlphaStop(price float64, impact int) float64 {
	return round2(price * (1 - float64(impact)/2500 - 0.02))
}

var fallbackAlpha = []struct {
	signal domain.ThemeSignal
	note   alphaNote
}{
	{
		signal: domain.ThemeSignal{Ticker: "TSLA", Name: "Tesla, Inc.", Price: 412.50, ChangePct: 3.2, Sentiment: domain.SentimentBullish, ImpactScore: 94, TargetPrice: 468.20, StopLoss: 382.40},
		note: alphaNote{
			ko: "FSD 채택 급증 소식이 기관의 재평가를 유도하고 있습니다. 강력한 거래량 프로필이 포착됩니다.",
			en: "Surge in FSD adoption news driving institutional re-rating. Strong volume profile.",
		},
	},
	{
		signal: domain.ThemeSignal{Ticker: "NVDA", Name: "NVIDIA Corporation", Price: 142.30, ChangePct: -1.5, Sentiment: domain.SentimentBullish, ImpactScore: 88, TargetPrice: 158.40, StopLoss: 131.50},
		note: alphaNote{
			ko: "차세대 블랙웰 수요가 공급을 압도하고 있습니다. AI 고래 로직에 의해 저점 매수가 확인되었습니다.",
			en: "Next-gen Blackwell demand exceeds supply. Buy the dip confirmed by AI Whale logic.",
		},
	},
	{
		signal: domain.ThemeSignal{Ticker: "AAPL", Name: "Apple Inc.", Price: 238.40, ChangePct: 0.8, Sentiment: domain.SentimentNeutral, ImpactScore: 75, TargetPrice: 254.10, StopLoss: 226.50},
		note: alphaNote{
			ko: "50일 EMA 근처에서 매집 단계가 진행 중입니다. AI 통합에 대한 시장 정서가 긍정적입니다.",
			en: "Accumulation phase near 50-day EMA. AI integration sentiment remains positive.",
		},
	},
	{
		signal: domain.ThemeSignal{Ticker: "AMD", Name: "Advanced Micro Devices", Price: 182.10, ChangePct: 2.1, Sentiment: domain.SentimentBullish, ImpactScore: 91, TargetPrice: 204.50, StopLoss: 168.20},
		note: alphaNote{
			ko: "데이터 센터 시장 점유율 확보가 가속화되고 있습니다. 고확신 돌파 시그널이 발생했습니다.",
			en: "Data center market share gains accelerating. High conviction breakout signal.",
		},
	},
}

// FallbackAlphaSignals is the fixed board served when upstream is unavailable
func FallbackAlphaSignals(lang string, now time.Time) []domain.ThemeSignal {
	out := make([]domain.ThemeSignal, 0, len(fallbackAlpha))
	for _, f := range fallbackAlpha {
		sig := f.signal
		sig.ID = sig.Ticker + "-fallback"
		sig.AIReason = f.note.text(lang)
		sig.UpdatedAt = now.UTC().Format(time.RFC3339)
		sig.IsFallback = true
		out = append(out, sig)
	}
	return out
}
