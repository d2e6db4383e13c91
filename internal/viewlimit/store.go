package viewlimit

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"stock-empire/internal/domain"
	"stock-empire/pkg/redis"
)

// MemoryStore keeps state in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]domain.DailyLimitState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]domain.DailyLimitState)}
}

func (s *MemoryStore) Add(_ context.Context, viewer, today string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[viewer]
	if !ok || state.LastResetDate != today {
		state = domain.DailyLimitState{LastResetDate: today}
	}
	state.Count += delta
	s.states[viewer] = state
	return state.Count, nil
}

func (s *MemoryStore) Load(_ context.Context, viewer string) (domain.DailyLimitState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[viewer]
	return state, ok, nil
}

// addScript resets a stale or unreadable hash to today and adds ARGV[2] to
// its count. ARGV[3] is the key TTL in milliseconds.
var addScript = redis.NewScript(`
local date = redis.call('HGET', KEYS[1], 'date')
local count = tonumber(redis.call('HGET', KEYS[1], 'count'))
if date ~= ARGV[1] or count == nil then
  redis.call('HSET', KEYS[1], 'date', ARGV[1], 'count', 0)
end
local n = redis.call('HINCRBY', KEYS[1], 'count', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return n
`)

// RedisStore keeps state as a {date, count} hash under a per-viewer key that
// expires after two days, so abandoned viewers clean themselves up. Updates
// run as one Lua script, so replicas sharing Redis never lose a reveal.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Add(ctx context.Context, viewer, today string, delta int) (int, error) {
	key := s.client.KeyBuilder.KeyViewLimit(viewer)
	v, err := s.client.RunScript(ctx, addScript, []string{key}, today, delta, redis.TTLViewLimit.Milliseconds())
	if err != nil {
		return 0, err
	}

	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected view limit reply %T", v)
	}
	return int(n), nil
}

func (s *RedisStore) Load(ctx context.Context, viewer string) (domain.DailyLimitState, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.client.KeyBuilder.KeyViewLimit(viewer))
	if err != nil {
		return domain.DailyLimitState{}, false, err
	}

	count, convErr := strconv.Atoi(fields["count"])
	if len(fields) == 0 || convErr != nil {
		// Unreadable state counts as no state.
		return domain.DailyLimitState{}, false, nil
	}
	return domain.DailyLimitState{Count: count, LastResetDate: fields["date"]}, true, nil
}
