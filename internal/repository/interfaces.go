package repository

import (
	"context"
	"time"

	"stock-empire/internal/domain"
)

// LedgerStore persists the analytics ledger. Every mutation is atomic with
// respect to concurrent mutations on the same store.
type LedgerStore interface {
	// Load returns the current ledger; absent or unreadable state is all zero
	Load(ctx context.Context) (*domain.AnalyticsLedger, error)

	// IncrementVisit bumps the total, daily and monthly visitor counters for at
	IncrementVisit(ctx context.Context, at time.Time) error

	// IncrementSignup bumps total_users
	IncrementSignup(ctx context.Context) error

	// AddPayment adds revenue, bumps pro_users and appends the payment
	AddPayment(ctx context.Context, payment domain.Payment) error

	// Restore replaces the stored ledger wholesale
	Restore(ctx context.Context, ledger *domain.AnalyticsLedger) error

	// IsEmpty reports whether nothing has been stored yet
	IsEmpty(ctx context.Context) (bool, error)
}

// SnapshotRepository defines the interface for ledger snapshot operations
type SnapshotRepository interface {
	// SaveSnapshot upserts the snapshot for its date
	SaveSnapshot(ctx context.Context, snapshot *domain.LedgerSnapshot) error

	// GetLatestSnapshot retrieves the most recent snapshot, nil when none exist
	GetLatestSnapshot(ctx context.Context) (*domain.LedgerSnapshot, error)

	// DeleteOldSnapshots removes snapshots older than the retention period
	DeleteOldSnapshots(ctx context.Context, retentionDays int) (int64, error)

	// GetSnapshotCount returns the total number of snapshots
	GetSnapshotCount(ctx context.Context) (int64, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Ledger    LedgerStore
	Snapshots SnapshotRepository // nil without PostgreSQL
	Feeds     *FeedRepository
}
