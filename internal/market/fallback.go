package market

import (
	"math"
	"strings"

	"stock-empire/internal/domain"
)

func pe(v float64) *float64 { return &v }

// knownQuotes are last-known values for frequently requested tickers
var knownQuotes = map[string]domain.Quote{
	"JTAI": {Symbol: "JTAI", ShortName: "Jet.AI Inc.", RegularMarketPrice: 0.15, RegularMarketChangePercent: -2.3, RegularMarketVolume: 1250000, MarketCap: 15400000},
	"NVDA": {Symbol: "NVDA", ShortName: "NVIDIA Corporation", RegularMarketPrice: 185.41, RegularMarketChangePercent: 8.01, RegularMarketVolume: 320000000, MarketCap: 4500000000000, TrailingPE: pe(82.4)},
	"AMD":  {Symbol: "AMD", ShortName: "Advanced Micro Devices, Inc.", RegularMarketPrice: 208.28, RegularMarketChangePercent: 8.28, RegularMarketVolume: 110000000, MarketCap: 335000000000, TrailingPE: pe(42.5)},
	"MSFT": {Symbol: "MSFT", ShortName: "Microsoft Corporation", RegularMarketPrice: 393.67, RegularMarketChangePercent: -1.2, RegularMarketVolume: 25000000, MarketCap: 3100000000000, TrailingPE: pe(35.2)},
	"TSLA": {Symbol: "TSLA", ShortName: "Tesla, Inc.", RegularMarketPrice: 392.67, RegularMarketChangePercent: 3.2, RegularMarketVolume: 98000000, MarketCap: 1200000000000, TrailingPE: pe(60.1)},
	"AAPL": {Symbol: "AAPL", ShortName: "Apple Inc.", RegularMarketPrice: 248.50, RegularMarketChangePercent: 1.2, RegularMarketVolume: 48000000, MarketCap: 3850000000000, TrailingPE: pe(35.1)},
	"PLTR": {Symbol: "PLTR", ShortName: "Palantir Technologies", RegularMarketPrice: 135.90, RegularMarketChangePercent: 4.8, RegularMarketVolume: 72000000, MarketCap: 280000000000, TrailingPE: pe(95.2)},
	"SMCI": {Symbol: "SMCI", ShortName: "Super Micro Computer, Inc.", RegularMarketPrice: 33.43, RegularMarketChangePercent: -2.5, RegularMarketVolume: 15000000, MarketCap: 22000000000, TrailingPE: pe(12.5)},
	"AMZN": {Symbol: "AMZN", ShortName: "Amazon.com, Inc.", RegularMarketPrice: 210.45, RegularMarketChangePercent: -5.5, RegularMarketVolume: 55000000, MarketCap: 2200000000000, TrailingPE: pe(42.1)},
}

// KnownQuote returns the stored quote for symbol, if any
func KnownQuote(symbol string) (domain.Quote, bool) {
	q, ok := knownQuotes[strings.ToUpper(symbol)]
	if ok && q.TrailingPE != nil {
		v := *q.TrailingPE
		q.TrailingPE = &v
	}
	return q, ok
}

// SimulatedQuote derives a stable quote from the symbol text alone, so the
// same symbol always yields the same numbers.
func SimulatedQuote(symbol string) domain.Quote {
	s := strings.ToUpper(symbol)
	h := symbolHash(s)

	price := math.Abs(float64(h%20000))/100 + 0.5
	change := math.Abs(float64(h%500)) / 100
	if h%2 != 0 {
		change = -change
	}
	trailing := math.Abs(float64(h%50)) + 5

	return domain.Quote{
		Symbol:                     s,
		ShortName:                  s + " (Simulated)",
		RegularMarketPrice:         math.Round(price*100) / 100,
		RegularMarketChangePercent: change,
		RegularMarketVolume:        abs64(h * 10000),
		MarketCap:                  abs64(h * 10000000),
		TrailingPE:                 &trailing,
		IsSimulated:                true,
	}
}

// FallbackQuote returns the known quote for symbol or a simulated one
func FallbackQuote(symbol string) (domain.Quote, string) {
	if q, ok := KnownQuote(symbol); ok {
		return q, "known"
	}
	return SimulatedQuote(symbol), "simulated"
}

// symbolHash is the 31-multiplier string hash, wrapping the shifted term to
// 32 bits on every step.
func symbolHash(s string) int64 {
	var h int64
	for _, c := range s {
		shifted := int32(uint32(h)) << 5
		h = int64(c) + (int64(shifted) - h)
	}
	return h
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
