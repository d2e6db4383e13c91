package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"stock-empire/internal/domain"
)

type mockSnapshotRepository struct {
	mock.Mock
}

func (m *mockSnapshotRepository) SaveSnapshot(ctx context.Context, snapshot *domain.LedgerSnapshot) error {
	return m.Called(ctx, snapshot).Error(0)
}

func (m *mockSnapshotRepository) GetLatestSnapshot(ctx context.Context) (*domain.LedgerSnapshot, error) {
	args := m.Called(ctx)
	snapshot, _ := args.Get(0).(*domain.LedgerSnapshot)
	return snapshot, args.Error(1)
}

func (m *mockSnapshotRepository) DeleteOldSnapshots(ctx context.Context, retentionDays int) (int64, error) {
	args := m.Called(ctx, retentionDays)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSnapshotRepository) GetSnapshotCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockUserCounter struct {
	mock.Mock
}

func (m *mockUserCounter) UserCount(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockQuoteProvider struct {
	mock.Mock
}

func (m *mockQuoteProvider) Quotes(ctx context.Context, symbols []string) ([]domain.Quote, error) {
	args := m.Called(ctx, symbols)
	quotes, _ := args.Get(0).([]domain.Quote)
	return quotes, args.Error(1)
}

type mockRateProvider struct {
	mock.Mock
}

func (m *mockRateProvider) USDKRW(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}
