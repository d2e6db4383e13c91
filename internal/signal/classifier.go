// Package signal classifies macro readings and price action into fixed bands.
// Every function here is pure.
package signal

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"stock-empire/internal/domain"
)

// Symbols maps upstream quote symbols to classified metrics.
var Symbols = map[string]domain.MetricID{
	"KRW=X": domain.MetricExchangeRate,
	"^TNX":  domain.MetricUSYield,
	"CL=F":  domain.MetricOilPrice,
	"GC=F":  domain.MetricGold,
}

// SymbolOrder is the order readings are listed in.
var SymbolOrder = []string{"KRW=X", "^TNX", "CL=F", "GC=F"}

// band is one severity band. Bands are listed most severe first and the
// first band whose inclusive lower bound is met wins.
type band struct {
	min         float64
	status      domain.SignalStatus
	probability int
	direction   domain.Direction
	descKO      string
	descEN      string
}

type metricSpec struct {
	nameKO, nameEN           string
	thresholdKO, thresholdEN string
	bands                    []band
	fallback                 band
}

var metrics = map[domain.MetricID]metricSpec{
	domain.MetricExchangeRate: {
		nameKO: "USD/KRW 환율", nameEN: "USD/KRW Rate",
		thresholdKO: "1,350원", thresholdEN: "1,350 KRW",
		bands: []band{
			{1400, domain.StatusCritical, 88, domain.DirectionDown,
				"환율이 %s원으로 심각한 수준입니다. 외국인 자본 이탈 가능성이 매우 높습니다.",
				"Exchange rate is at %s KRW, a critical level. High risk of capital outflow."},
			{1350, domain.StatusCaution, 72, domain.DirectionDown,
				"환율이 %s원으로 경계 구간입니다.",
				"Exchange rate is at %s KRW, warning zone."},
		},
		fallback: band{0, domain.StatusSafe, 60, domain.DirectionUp,
			"환율이 %s원으로 안정적입니다.",
			"Exchange rate is at %s KRW, stable."},
	},
	domain.MetricUSYield: {
		nameKO: "미국 10년물 국채 금리", nameEN: "US 10Y Treasury Yield",
		thresholdKO: "4.5%", thresholdEN: "4.5%",
		bands: []band{
			{4.5, domain.StatusCritical, 85, domain.DirectionDown,
				"금리가 %s%%로 치솟았습니다.",
				"Yield spiked to %s%%."},
		},
		fallback: band{0, domain.StatusSafe, 70, domain.DirectionUp,
			"금리가 %s%%로 안정적입니다.",
			"Yield stable at %s%%."},
	},
	domain.MetricOilPrice: {
		nameKO: "WTI 원유(유가)", nameEN: "Crude Oil (WTI)",
		thresholdKO: "$90", thresholdEN: "$90",
		bands: []band{
			{90, domain.StatusCritical, 80, domain.DirectionDown,
				"유가가 $%s로 높습니다.",
				"Oil price at $%s."},
		},
		fallback: band{0, domain.StatusSafe, 65, domain.DirectionUp,
			"유가가 $%s로 안정적입니다.",
			"Oil price stable at $%s."},
	},
	domain.MetricGold: {
		nameKO: "국제 금 시세", nameEN: "Gold Price",
		thresholdKO: "$2,400", thresholdEN: "$2,400",
		fallback: band{0, domain.StatusSafe, 50, domain.DirectionNeutral,
			"금값이 $%s입니다.",
			"Gold price is $%s."},
	},
}

var grouped = message.NewPrinter(language.English)

// Classify maps a raw metric value to its reading. lang is "en" or anything
// else for Korean. Unknown metrics return a neutral reading with no bands.
func Classify(metric domain.MetricID, raw float64, lang string) domain.SignalReading {
	def, ok := metrics[metric]
	if !ok {
		return domain.SignalReading{
			ID:          metric,
			Name:        string(metric),
			Value:       fmt.Sprintf("%.2f", raw),
			RawValue:    raw,
			Status:      domain.StatusSafe,
			Probability: 50,
			Direction:   domain.DirectionNeutral,
		}
	}

	b := def.fallback
	for _, candidate := range def.bands {
		if raw >= candidate.min {
			b = candidate
			break
		}
	}

	isEn := lang == "en"
	shown := fmt.Sprintf("%.2f", raw)
	if metric == domain.MetricGold {
		shown = groupDigits(raw)
	}

	desc, name, threshold := b.descKO, def.nameKO, def.thresholdKO
	if isEn {
		desc, name, threshold = b.descEN, def.nameEN, def.thresholdEN
	}

	return domain.SignalReading{
		ID:          metric,
		Name:        name,
		Value:       formatValue(metric, raw, isEn),
		RawValue:    raw,
		Threshold:   threshold,
		Status:      b.status,
		Probability: b.probability,
		Direction:   b.direction,
		Description: fmt.Sprintf(desc, shown),
	}
}

func formatValue(metric domain.MetricID, raw float64, isEn bool) string {
	switch metric {
	case domain.MetricUSYield:
		return fmt.Sprintf("%.2f%%", raw)
	case domain.MetricExchangeRate:
		if isEn {
			return fmt.Sprintf("%.2f KRW", raw)
		}
		return fmt.Sprintf("%.2f원", raw)
	default:
		return "$" + groupDigits(raw)
	}
}

// groupDigits renders v with thousands separators and at most two decimals.
func groupDigits(v float64) string {
	return grouped.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}
