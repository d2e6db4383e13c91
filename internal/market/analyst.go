package market

import (
	"fmt"
	"math"
	"time"

	"stock-empire/internal/domain"
	"stock-empire/internal/signal"
)

// Analyst turns a quote into a theme signal
type Analyst interface {
	Analyze(quote domain.Quote, lang string, now time.Time) domain.ThemeSignal
}

// DemoAnalyst is a scripted analyst for the demo site. Scores and reasons
// are derived from the ticker and change alone, so repeated calls agree.
type DemoAnalyst struct{}

type insight struct{ bullKO, bullEN, bearKO, bearEN string }

var tickerInsights = map[string]insight{
	"NVDA": {
		bullKO: "블랙웰(Blackwell) 칩셋 공급 부족이 가시화되며 기관의 '묻지마 매수'가 이어지고 있습니다. $185 지지는 강력한 추세 연장을 시사합니다.",
		bullEN: "Blackwell supply tightness is fueling aggressive institutional accumulation. Support at $185 indicates a robust trend extension.",
		bearKO: "차익 실현 매물이 출회되고 있으나, 데이터센터 부문의 성장성은 여전히 독보적입니다. 하방 경직성을 테스트하는 구간입니다.",
		bearEN: "Profit-taking is causing short-term friction, but Data Center fundamentals remain unrivaled. Currently testing floor integrity.",
	},
	"TSLA": {
		bullKO: "FSD v13 버전의 압도적 성과가 월가의 재평가를 이끌고 있습니다. 에너지 사업부의 마진 개선이 주가 상승의 촉매제입니다.",
		bullEN: "Exceptional performance of FSD v13 is driving a Wall Street re-rating. Energy division margin expansion is the key catalyst.",
		bearKO: "인도시장 진출 연기 노이즈로 변동성이 커졌으나, 로보택시 비전은 여전히 유효합니다. $400 초반 매수 대기 자금이 확인됩니다.",
		bearEN: "Delay in India expansion is causing volatility, but the Robotaxi vision holds. Strong bid interest confirmed near low $400s.",
	},
	"AAPL": {
		bullKO: "아이폰 17 시제품의 AI 성능 혁신 기대감이 유입되고 있습니다. 현금 흐름 기반의 자사주 매입이 하단을 강력하게 지지합니다.",
		bullEN: "Innovation expectations for iPhone 17's AI capabilities are rising. Buybacks based on cash flow are providing a solid floor.",
		bearKO: "중국 내 점유율 회복 속도가 예상보다 더디지만, 서비스 부문의 안정적 성장이 밸류에이션 하락을 방어하고 있습니다.",
		bearEN: "Recovery in China market share is slower than expected, but steady Service segment growth is protecting the valuation.",
	},
}

var (
	bullKO = []string{
		"장기 이평선 돌파와 함께 대량 거래가 동반된 고확신 매수 시그널입니다.",
		"기관의 바스켓 매수세가 유입되며 섹터 내 주도주로 부상하고 있습니다.",
		"추세 추종(Trend Following) 전략가들의 타겟이 되며 상방 압력이 강해지고 있습니다.",
	}
	bullEN = []string{
		"High-conviction buy signal confirmed by breakout above long-term EMAs with massive volume.",
		"Emerging as a sector leader as institutional basket orders flood the tape.",
		"Becoming a target for trend-following strategists, intensifying upward pressure.",
	}
	bearKO = []string{
		"기술적 반등 구간에 진입했으나, 상단 저항 매물이 두터워 보수적 접근이 필요합니다.",
		"섹터 전반의 심리 위축으로 인해 일시적인 투매(Sell-off) 압력을 받고 있는 구간입니다.",
		"에너지 응축을 위한 건강한 조정(Healthy Correction) 과정으로 판단되며 지지선 확인이 우선입니다.",
	}
	bearEN = []string{
		"Entering a technical bounce zone, but heavy overhead resistance warrants a cautious approach.",
		"Facing temporary sell-off pressure due to broad sector sentiment dampening.",
		"Viewed as a healthy correction to build momentum; verifying support levels is a priority.",
	}
)

// Analyze scores the quote and attaches a reason, target and stop
func (DemoAnalyst) Analyze(q domain.Quote, lang string, now time.Time) domain.ThemeSignal {
	change := q.RegularMarketChangePercent
	impact := ImpactScore(q.Symbol)

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
		Sentiment:   signal.ThemeSentiment(change),
		ImpactScore: impact,
		WhaleActive: q.RegularMarketVolume > 5000000 || impact > 85,
		TargetPrice: round2(q.RegularMarketPrice * (1 + float64(impact)/1200 + 0.04)),
		StopLoss:    round2(q.RegularMarketPrice * (1 - float64(impact)/2000 - 0.03)),
		AIReason:    Reason(q.Symbol, change, lang),
		UpdatedAt:   now.UTC().Format(time.RFC3339),
	}
}

// ImpactScore maps a ticker onto 65..94
func ImpactScore(ticker string) int {
	return 65 + int(abs64(symbolHash(ticker))%30)
}

// Reason picks the analyst note for a ticker's move
func Reason(ticker string, change float64, lang string) string {
	isEn := lang == "en"
	up := change >= 0

	if in, ok := tickerInsights[ticker]; ok {
		switch {
		case up && isEn:
			return in.bullEN
		case up:
			return in.bullKO
		case isEn:
			return in.bearEN
		default:
			return in.bearKO
		}
	}

	pool := bearKO
	switch {
	case up && isEn:
		pool = bullEN
	case up:
		pool = bullKO
	case isEn:
		pool = bearEN
	}

	seed := (len(ticker) + int(math.Floor(math.Abs(change)*10))) % len(pool)
	return pool[seed]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
