package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	mr := miniredis.RunT(t)

	client, err := NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "Invalid URL", url: "invalid://url"},
		{name: "Empty URL", url: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.url, "test", nil)
			assert.Error(t, err)
			assert.Nil(t, client)
		})
	}

	t.Run("Reachable server", func(t *testing.T) {
		_, client := setupTestRedis(t)
		assert.NotNil(t, client.KeyBuilder)
		assert.Equal(t, "prod", client.KeyBuilder.GetPrefix())
	})
}

func TestClient_GetSet(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "test:key1", "value1", time.Minute))

	value, err := client.Get(ctx, "test:key1")
	require.NoError(t, err)
	assert.Equal(t, "value1", value)
	assert.Equal(t, time.Minute, mr.TTL("test:key1"))

	_, err = client.Get(ctx, "test:missing")
	assert.ErrorIs(t, err, Nil)
}

func TestClient_IncrAndExpire(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		v, err := client.Incr(ctx, "test:counter")
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}

	require.NoError(t, client.Expire(ctx, "test:counter", TTLVisitWindow))
	assert.Equal(t, TTLVisitWindow, mr.TTL("test:counter"))
}

func TestClient_ExistsDelete(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("test:a", "1"))
	require.NoError(t, mr.Set("test:b", "1"))

	n, err := client.Exists(ctx, "test:a", "test:b", "test:c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, client.Delete(ctx, "test:a", "test:b"))
	n, err = client.Exists(ctx, "test:a", "test:b")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClient_TxPipeline(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	pipe := client.TxPipeline()
	pipe.HIncrBy(ctx, "test:hash", "a", 2)
	pipe.RPush(ctx, "test:list", "x", "y")
	_, err := pipe.Exec(ctx)
	require.NoError(t, err)

	fields, err := client.HGetAll(ctx, "test:hash")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "2"}, fields)

	items, err := client.LRange(ctx, "test:list", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, items)
}

func TestClient_RunScript(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	script := NewScript(`return redis.call('INCRBY', KEYS[1], ARGV[1])`)

	v, err := client.RunScript(ctx, script, []string{"test:script"}, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)

	v, err = client.RunScript(ctx, script, []string{"test:script"}, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
}

func TestClient_Health(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	assert.NoError(t, client.Health(ctx))

	mr.Close()
	assert.Error(t, client.Health(ctx))
}

func TestPrefixForLog(t *testing.T) {
	assert.Equal(t, "prod:quote:NVDA", prefixForLog("prod:quote:NVDA"))
	long := "prod:viewlimit:user:0123456789abcdef"
	assert.Equal(t, long[:24]+"…", prefixForLog(long))
}
