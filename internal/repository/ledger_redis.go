package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"stock-empire/internal/domain"
	"stock-empire/pkg/redis"
)

const (
	fieldTotalVisitors = "total_visitors"
	fieldTotalUsers    = "total_users"
	fieldProUsers      = "pro_users"
	fieldRevenueMicros = "monthly_revenue_micros"
)

// revenueScale keeps revenue as an integer count of millionths so HINCRBY
// stays exact.
const revenueScale = 6

// RedisLedgerStore keeps the ledger in four keys: a hash of scalar counters,
// hashes of daily and monthly visitors, and a list of payments. Each
// mutation runs as one MULTI/EXEC transaction.
type RedisLedgerStore struct {
	client *redis.Client
}

func NewRedisLedgerStore(client *redis.Client) *RedisLedgerStore {
	return &RedisLedgerStore{client: client}
}

func (s *RedisLedgerStore) Load(ctx context.Context) (*domain.AnalyticsLedger, error) {
	kb := s.client.KeyBuilder

	pipe := s.client.Pipeline()
	countersCmd := pipe.HGetAll(ctx, kb.KeyLedgerCounters())
	dailyCmd := pipe.HGetAll(ctx, kb.KeyLedgerDaily())
	monthlyCmd := pipe.HGetAll(ctx, kb.KeyLedgerMonthly())
	paymentsCmd := pipe.LRange(ctx, kb.KeyLedgerPayments(), 0, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	ledger := domain.NewLedger()

	counters := countersCmd.Val()
	ledger.TotalVisitors = parseCount(counters[fieldTotalVisitors])
	ledger.TotalUsers = parseCount(counters[fieldTotalUsers])
	ledger.ProUsers = parseCount(counters[fieldProUsers])
	ledger.MonthlyRevenue = decimal.New(parseCount(counters[fieldRevenueMicros]), -revenueScale)

	for day, v := range dailyCmd.Val() {
		ledger.DailyVisitors[day] = parseCount(v)
	}
	for month, v := range monthlyCmd.Val() {
		ledger.MonthlyVisitors[month] = parseCount(v)
	}

	for _, raw := range paymentsCmd.Val() {
		var p domain.Payment
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			// Skip entries that do not decode; they cannot be repaired here.
			continue
		}
		ledger.Payments = append(ledger.Payments, p)
	}

	return ledger, nil
}

func (s *RedisLedgerStore) IncrementVisit(ctx context.Context, at time.Time) error {
	kb := s.client.KeyBuilder

	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, kb.KeyLedgerCounters(), fieldTotalVisitors, 1)
	pipe.HIncrBy(ctx, kb.KeyLedgerDaily(), domain.DayKey(at), 1)
	pipe.HIncrBy(ctx, kb.KeyLedgerMonthly(), domain.MonthKey(at), 1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}
	return nil
}

func (s *RedisLedgerStore) IncrementSignup(ctx context.Context) error {
	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, s.client.KeyBuilder.KeyLedgerCounters(), fieldTotalUsers, 1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record signup: %w", err)
	}
	return nil
}

func (s *RedisLedgerStore) AddPayment(ctx context.Context, payment domain.Payment) error {
	kb := s.client.KeyBuilder

	data, err := json.Marshal(payment)
	if err != nil {
		return fmt.Errorf("failed to encode payment: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, kb.KeyLedgerCounters(), fieldRevenueMicros, toMicros(payment.Amount))
	pipe.HIncrBy(ctx, kb.KeyLedgerCounters(), fieldProUsers, 1)
	pipe.RPush(ctx, kb.KeyLedgerPayments(), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return nil
}

func (s *RedisLedgerStore) Restore(ctx context.Context, ledger *domain.AnalyticsLedger) error {
	kb := s.client.KeyBuilder

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, kb.KeyLedgerCounters(), kb.KeyLedgerDaily(), kb.KeyLedgerMonthly(), kb.KeyLedgerPayments())
	pipe.HSet(ctx, kb.KeyLedgerCounters(),
		fieldTotalVisitors, ledger.TotalVisitors,
		fieldTotalUsers, ledger.TotalUsers,
		fieldProUsers, ledger.ProUsers,
		fieldRevenueMicros, toMicros(ledger.MonthlyRevenue),
	)
	if len(ledger.DailyVisitors) > 0 {
		pipe.HSet(ctx, kb.KeyLedgerDaily(), toFieldValues(ledger.DailyVisitors))
	}
	if len(ledger.MonthlyVisitors) > 0 {
		pipe.HSet(ctx, kb.KeyLedgerMonthly(), toFieldValues(ledger.MonthlyVisitors))
	}
	for _, p := range ledger.Payments {
		data, err := json.Marshal(p)
		if err != nil {
			pipe.Discard()
			return fmt.Errorf("failed to encode payment: %w", err)
		}
		pipe.RPush(ctx, kb.KeyLedgerPayments(), data)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to restore ledger: %w", err)
	}
	return nil
}

func (s *RedisLedgerStore) IsEmpty(ctx context.Context) (bool, error) {
	n, err := s.client.Exists(ctx, s.client.KeyBuilder.KeyLedgerCounters())
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func parseCount(v string) int64 {
	n, _ := strconv.ParseInt(v, 10, 64)
	return n
}

func toMicros(d decimal.Decimal) int64 {
	return d.Shift(revenueScale).Round(0).IntPart()
}

func toFieldValues(m map[string]int64) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
