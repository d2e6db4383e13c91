package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EventType identifies a tracked analytics event
type EventType string

const (
	EventVisit   EventType = "VISIT"
	EventSignup  EventType = "SIGNUP"
	EventPayment EventType = "PAYMENT"
)

// Valid reports whether t is a known event type
func (t EventType) Valid() bool {
	switch t {
	case EventVisit, EventSignup, EventPayment:
		return true
	}
	return false
}

// PaymentPayload carries the PAYMENT event details
type PaymentPayload struct {
	Amount decimal.Decimal `json:"amount"`
	Plan   string          `json:"plan"`
}

// TrackEvent is the body of POST /api/track
type TrackEvent struct {
	Type    EventType       `json:"type"`
	Payload *PaymentPayload `json:"payload,omitempty"`
}

// PaymentID identifies a payment. Older ledgers stored the id as a
// millisecond timestamp number; both forms decode.
type PaymentID string

func (id *PaymentID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PaymentID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("payment id must be a string or number: %w", err)
	}
	*id = PaymentID(n.String())
	return nil
}

// Payment is one recorded payment in the ledger
type Payment struct {
	ID        PaymentID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Plan      string          `json:"plan"`
	Timestamp time.Time       `json:"timestamp"`
}

// MarshalJSON writes the amount as a JSON number
func (p Payment) MarshalJSON() ([]byte, error) {
	type payment Payment
	return json.Marshal(struct {
		payment
		Amount json.RawMessage `json:"amount"`
	}{payment(p), jsonNumber(p.Amount)})
}

// AnalyticsLedger is the accumulated visitor, signup and revenue counters.
// Daily and monthly visitor maps are incremented independently of the total.
type AnalyticsLedger struct {
	TotalVisitors   int64            `json:"total_visitors"`
	DailyVisitors   map[string]int64 `json:"daily_visitors"`
	MonthlyVisitors map[string]int64 `json:"monthly_visitors"`
	TotalUsers      int64            `json:"total_users"`
	ProUsers        int64            `json:"pro_users"`
	MonthlyRevenue  decimal.Decimal  `json:"monthly_revenue"`
	Payments        []Payment        `json:"payments"`
}

// MarshalJSON writes monthly_revenue as a JSON number, the form the
// persisted document has always used.
func (l AnalyticsLedger) MarshalJSON() ([]byte, error) {
	type ledger AnalyticsLedger
	return json.Marshal(struct {
		ledger
		MonthlyRevenue json.RawMessage `json:"monthly_revenue"`
	}{ledger(l), jsonNumber(l.MonthlyRevenue)})
}

func jsonNumber(d decimal.Decimal) json.RawMessage {
	return json.RawMessage(d.String())
}

// NewLedger returns the all-zero ledger
func NewLedger() *AnalyticsLedger {
	return &AnalyticsLedger{
		DailyVisitors:   map[string]int64{},
		MonthlyVisitors: map[string]int64{},
		MonthlyRevenue:  decimal.Zero,
		Payments:        []Payment{},
	}
}

// Normalize fills nil collections left by a partial persisted document
func (l *AnalyticsLedger) Normalize() {
	if l.DailyVisitors == nil {
		l.DailyVisitors = map[string]int64{}
	}
	if l.MonthlyVisitors == nil {
		l.MonthlyVisitors = map[string]int64{}
	}
	if l.Payments == nil {
		l.Payments = []Payment{}
	}
}

// LedgerSnapshot is a ledger persisted to PostgreSQL
type LedgerSnapshot struct {
	ID           int64            `json:"id" db:"id"`
	Ledger       *AnalyticsLedger `json:"ledger" db:"ledger"`
	SnapshotDate time.Time        `json:"snapshot_date" db:"snapshot_date"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}

// DayKey and MonthKey format the ledger map keys
func DayKey(t time.Time) string   { return t.UTC().Format("2006-01-02") }
func MonthKey(t time.Time) string { return t.UTC().Format("2006-01") }

// RateLimitInfo describes a client's position in the visit rate limit window
type RateLimitInfo struct {
	RequestCount int64         `json:"request_count"`
	Limit        int64         `json:"limit"`
	WindowStart  time.Time     `json:"window_start"`
	TTL          time.Duration `json:"ttl"`
	IsAllowed    bool          `json:"is_allowed"`
}

// Remaining returns the requests left in the window
func (r *RateLimitInfo) Remaining() int64 {
	if left := r.Limit - r.RequestCount; left > 0 {
		return left
	}
	return 0
}

// Stats is the body of GET /api/stats
type Stats struct {
	Ledger          *AnalyticsLedger `json:"ledger"`
	RegisteredUsers int              `json:"registered_users"`
	UsersSource     string           `json:"users_source"`
	Timestamp       time.Time        `json:"timestamp"`
}

// Sources of Stats.RegisteredUsers
const (
	UsersSourceIdentity    = "identity_provider"
	UsersSourcePlaceholder = "placeholder"
)
