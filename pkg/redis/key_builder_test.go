package redis

import (
	"testing"
)

func TestKeyBuilder_Environment_Prefixes(t *testing.T) {
	tests := []struct {
		name           string
		environment    string
		expectedPrefix string
	}{
		{
			name:           "Production environment should use prod prefix",
			environment:    "production",
			expectedPrefix: "prod",
		},
		{
			name:           "Development environment should use staging prefix",
			environment:    "development",
			expectedPrefix: "staging",
		},
		{
			name:           "Staging environment should use staging prefix",
			environment:    "staging",
			expectedPrefix: "staging",
		},
		{
			name:           "Unknown environment should default to prod prefix",
			environment:    "unknown",
			expectedPrefix: "prod",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := NewKeyBuilder(tt.environment)
			if kb.GetPrefix() != tt.expectedPrefix {
				t.Errorf("NewKeyBuilder(%s).GetPrefix() = %s, want %s",
					tt.environment, kb.GetPrefix(), tt.expectedPrefix)
			}
		})
	}
}

func TestKeyBuilder_KeyGeneration(t *testing.T) {
	kb := NewKeyBuilder("production")

	tests := []struct {
		name     string
		method   func() string
		expected string
	}{
		{
			name:     "LedgerCounters key",
			method:   kb.KeyLedgerCounters,
			expected: "prod:ledger:counters",
		},
		{
			name:     "LedgerDaily key",
			method:   kb.KeyLedgerDaily,
			expected: "prod:ledger:daily_visitors",
		},
		{
			name:     "LedgerMonthly key",
			method:   kb.KeyLedgerMonthly,
			expected: "prod:ledger:monthly_visitors",
		},
		{
			name:     "LedgerPayments key",
			method:   kb.KeyLedgerPayments,
			expected: "prod:ledger:payments",
		},
		{
			name:     "VisitRateLimit key",
			method:   func() string { return kb.KeyVisitRateLimit("abc123") },
			expected: "prod:ratelimit:visit:abc123",
		},
		{
			name:     "ViewLimit key",
			method:   func() string { return kb.KeyViewLimit("user:u_1") },
			expected: "prod:views:user:u_1",
		},
		{
			name:     "Quote key",
			method:   func() string { return kb.KeyQuote("NVDA") },
			expected: "prod:quote:NVDA",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.method(); got != tt.expected {
				t.Errorf("got %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestKeyBuilder_StagingIsolation(t *testing.T) {
	prod := NewKeyBuilder("production")
	staging := NewKeyBuilder("staging")

	if prod.KeyLedgerCounters() == staging.KeyLedgerCounters() {
		t.Error("production and staging ledger keys must differ")
	}
}
