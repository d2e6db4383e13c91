package service

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stock-empire/internal/domain"
	"stock-empire/internal/repository"
	apperrors "stock-empire/pkg/errors"
	"stock-empire/pkg/logger"
	"stock-empire/pkg/redis"
)

func newFileStore(t *testing.T) repository.LedgerStore {
	t.Helper()
	return repository.NewFileLedgerStore(filepath.Join(t.TempDir(), "analytics.json"))
}

func newAnalytics(store repository.LedgerStore, snapshots repository.SnapshotRepository, rc *redis.Client, users UserCounter, cfg AnalyticsConfig) *analyticsService {
	return NewAnalyticsService(store, snapshots, rc, users, cfg, logger.NewNop()).(*analyticsService)
}

func payment(amount string) domain.TrackEvent {
	return domain.TrackEvent{
		Type:    domain.EventPayment,
		Payload: &domain.PaymentPayload{Amount: decimal.RequireFromString(amount), Plan: "VIP"},
	}
}

func TestAnalyticsService_Record(t *testing.T) {
	svc := newAnalytics(newFileStore(t), nil, nil, nil, AnalyticsConfig{})
	svc.now = func() time.Time { return time.Date(2026, 5, 31, 23, 30, 0, 0, time.UTC) }
	ctx := context.Background()

	ledger, info, err := svc.Record(ctx, domain.TrackEvent{Type: domain.EventVisit}, "10.0.0.1")
	require.NoError(t, err)
	assert.Nil(t, info)
	assert.Equal(t, int64(1), ledger.TotalVisitors)
	assert.Equal(t, int64(1), ledger.DailyVisitors["2026-05-31"])
	assert.Equal(t, int64(1), ledger.MonthlyVisitors["2026-05"])

	ledger, _, err = svc.Record(ctx, domain.TrackEvent{Type: domain.EventSignup}, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), ledger.TotalUsers)

	ledger, _, err = svc.Record(ctx, payment("19.99"), "10.0.0.1")
	require.NoError(t, err)
	ledger, _, err = svc.Record(ctx, payment("9.99"), "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, int64(2), ledger.ProUsers)
	assert.True(t, decimal.RequireFromString("29.98").Equal(ledger.MonthlyRevenue))
	require.Len(t, ledger.Payments, 2)
	assert.NotEqual(t, ledger.Payments[0].ID, ledger.Payments[1].ID)
	assert.Less(t, string(ledger.Payments[0].ID), string(ledger.Payments[1].ID))
	assert.Equal(t, "VIP", ledger.Payments[0].Plan)

	snapshot, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, ledger, snapshot)
}

func TestAnalyticsService_RecordValidation(t *testing.T) {
	svc := newAnalytics(newFileStore(t), nil, nil, nil, AnalyticsConfig{})
	ctx := context.Background()

	tests := []struct {
		name  string
		event domain.TrackEvent
	}{
		{"unknown type", domain.TrackEvent{Type: "CLICK"}},
		{"empty type", domain.TrackEvent{}},
		{"payment without payload", domain.TrackEvent{Type: domain.EventPayment}},
		{"negative payment", payment("-1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Record(ctx, tt.event, "10.0.0.1")
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, apperrors.As(err).StatusCode)
		})
	}

	ledger, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Zero(t, ledger.TotalVisitors)
	assert.Empty(t, ledger.Payments)
}

func TestAnalyticsService_ConcurrentRecords(t *testing.T) {
	svc := newAnalytics(newFileStore(t), nil, nil, nil, AnalyticsConfig{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _, err := svc.Record(ctx, domain.TrackEvent{Type: domain.EventVisit}, "10.0.0.1")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, _, err := svc.Record(ctx, payment("1.10"), "10.0.0.1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	ledger, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(25), ledger.TotalVisitors)
	assert.Equal(t, int64(25), ledger.ProUsers)
	assert.Len(t, ledger.Payments, 25)
	assert.True(t, decimal.RequireFromString("27.5").Equal(ledger.MonthlyRevenue))
}

func TestAnalyticsService_VisitRateLimit(t *testing.T) {
	rc, mr := newTestRedis(t)
	store := repository.NewRedisLedgerStore(rc)
	svc := newAnalytics(store, nil, rc, nil, AnalyticsConfig{VisitRateLimit: 2})
	ctx := context.Background()

	for i := int64(1); i <= 2; i++ {
		_, info, err := svc.Record(ctx, domain.TrackEvent{Type: domain.EventVisit}, "203.0.113.9")
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, i, info.RequestCount)
		assert.True(t, info.IsAllowed)
	}

	_, info, err := svc.Record(ctx, domain.TrackEvent{Type: domain.EventVisit}, "203.0.113.9")
	require.Error(t, err)
	assert.Equal(t, http.StatusTooManyRequests, apperrors.As(err).StatusCode)
	require.NotNil(t, info)
	assert.False(t, info.IsAllowed)
	assert.Zero(t, info.Remaining())

	// other clients and other event types are unaffected
	_, _, err = svc.Record(ctx, domain.TrackEvent{Type: domain.EventVisit}, "203.0.113.10")
	require.NoError(t, err)
	_, info, err = svc.Record(ctx, domain.TrackEvent{Type: domain.EventSignup}, "203.0.113.9")
	require.NoError(t, err)
	assert.Nil(t, info)

	key := rc.KeyBuilder.KeyVisitRateLimit(hashIP("203.0.113.9"))
	assert.Equal(t, RateLimitWindow, mr.TTL(key))

	ledger, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), ledger.TotalVisitors)
}

func TestAnalyticsService_Stats(t *testing.T) {
	ctx := context.Background()

	users := &mockUserCounter{}
	users.On("UserCount", mock.Anything).Return(512, nil).Once()
	users.On("UserCount", mock.Anything).Return(0, errors.New("provider down")).Once()

	svc := newAnalytics(newFileStore(t), nil, nil, users, AnalyticsConfig{PlaceholderUserCount: 1284})

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 512, stats.RegisteredUsers)
	assert.Equal(t, domain.UsersSourceIdentity, stats.UsersSource)

	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1284, stats.RegisteredUsers)
	assert.Equal(t, domain.UsersSourcePlaceholder, stats.UsersSource)
	users.AssertExpectations(t)

	noProvider := newAnalytics(newFileStore(t), nil, nil, nil, AnalyticsConfig{PlaceholderUserCount: 7})
	stats, err = noProvider.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.RegisteredUsers)
}

func TestAnalyticsService_SnapshotLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)

	restored := domain.NewLedger()
	restored.TotalVisitors = 40
	restored.TotalUsers = 3

	snapshots := &mockSnapshotRepository{}
	snapshots.On("GetLatestSnapshot", mock.Anything).Return(&domain.LedgerSnapshot{
		Ledger:       restored,
		SnapshotDate: time.Now().UTC(),
	}, nil).Once()
	snapshots.On("SaveSnapshot", mock.Anything, mock.MatchedBy(func(s *domain.LedgerSnapshot) bool {
		return s.Ledger.TotalVisitors == 41
	})).Return(nil)

	svc := newAnalytics(store, snapshots, nil, nil, AnalyticsConfig{SnapshotInterval: time.Hour})
	require.NoError(t, svc.Start(ctx))
	require.NoError(t, svc.Start(ctx))

	ledger, _, err := svc.Record(ctx, domain.TrackEvent{Type: domain.EventVisit}, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(41), ledger.TotalVisitors)
	assert.Equal(t, int64(3), ledger.TotalUsers)

	require.NoError(t, svc.Stop(ctx))
	require.NoError(t, svc.Stop(ctx))

	snapshots.AssertNumberOfCalls(t, "GetLatestSnapshot", 1)
	snapshots.AssertNumberOfCalls(t, "SaveSnapshot", 1)
}

func TestAnalyticsService_RestoreSkipsPopulatedStore(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)
	require.NoError(t, store.IncrementSignup(ctx))

	snapshots := &mockSnapshotRepository{}
	snapshots.On("SaveSnapshot", mock.Anything, mock.Anything).Return(nil)

	svc := newAnalytics(store, snapshots, nil, nil, AnalyticsConfig{SnapshotInterval: time.Hour})
	require.NoError(t, svc.Start(ctx))
	require.NoError(t, svc.Stop(ctx))

	snapshots.AssertNotCalled(t, "GetLatestSnapshot", mock.Anything)
}

func TestAnalyticsService_StartWithoutSnapshots(t *testing.T) {
	svc := newAnalytics(newFileStore(t), nil, nil, nil, AnalyticsConfig{})
	require.NoError(t, svc.Start(context.Background()))
	assert.False(t, svc.isRunning)
	require.NoError(t, svc.Stop(context.Background()))
}

func TestHashIP(t *testing.T) {
	assert.Len(t, hashIP("10.0.0.1"), 16)
	assert.Equal(t, hashIP("10.0.0.1"), hashIP("10.0.0.1"))
	assert.NotEqual(t, hashIP("10.0.0.1"), hashIP("10.0.0.2"))
}
