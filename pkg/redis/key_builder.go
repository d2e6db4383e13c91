package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// Ledger key builders

// KeyLedgerCounters is a hash of the scalar ledger counters.
func (kb *KeyBuilder) KeyLedgerCounters() string {
	return kb.BuildKey("ledger:counters")
}

func (kb *KeyBuilder) KeyLedgerDaily() string {
	return kb.BuildKey("ledger:daily_visitors")
}

func (kb *KeyBuilder) KeyLedgerMonthly() string {
	return kb.BuildKey("ledger:monthly_visitors")
}

func (kb *KeyBuilder) KeyLedgerPayments() string {
	return kb.BuildKey("ledger:payments")
}

// KeyVisitRateLimit is the per-IP visit counter for the current window.
func (kb *KeyBuilder) KeyVisitRateLimit(ipHash string) string {
	return kb.BuildKey(fmt.Sprintf("ratelimit:visit:%s", ipHash))
}

// Viewer and market key builders

// KeyViewLimit is a hash of the viewer's reveal date and count.
func (kb *KeyBuilder) KeyViewLimit(viewer string) string {
	return kb.BuildKey(fmt.Sprintf("views:%s", viewer))
}

func (kb *KeyBuilder) KeyQuote(symbol string) string {
	return kb.BuildKey(fmt.Sprintf("quote:%s", symbol))
}
