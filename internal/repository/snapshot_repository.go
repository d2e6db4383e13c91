package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"stock-empire/internal/domain"
	"stock-empire/pkg/database"
)

// snapshotRepository handles ledger snapshot operations with PostgreSQL
type snapshotRepository struct {
	db *database.PostgresDB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *database.PostgresDB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// SaveSnapshot upserts the snapshot for its date
func (r *snapshotRepository) SaveSnapshot(ctx context.Context, snapshot *domain.LedgerSnapshot) error {
	ledger, err := json.Marshal(snapshot.Ledger)
	if err != nil {
		return fmt.Errorf("failed to encode ledger snapshot: %w", err)
	}

	query := `
		INSERT INTO ledger_snapshots (snapshot_date, ledger, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (snapshot_date) DO UPDATE SET
			ledger = EXCLUDED.ledger,
			created_at = EXCLUDED.created_at
		RETURNING id, created_at
	`

	err = r.db.Pool.QueryRow(ctx, query,
		snapshot.SnapshotDate.Format("2006-01-02"),
		ledger,
		snapshot.CreatedAt,
	).Scan(&snapshot.ID, &snapshot.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save ledger snapshot: %w", err)
	}

	return nil
}

// GetLatestSnapshot retrieves the most recent snapshot
func (r *snapshotRepository) GetLatestSnapshot(ctx context.Context) (*domain.LedgerSnapshot, error) {
	query := `
		SELECT id, ledger, snapshot_date, created_at
		FROM ledger_snapshots
		ORDER BY snapshot_date DESC, created_at DESC
		LIMIT 1
	`

	var raw []byte
	snapshot := &domain.LedgerSnapshot{}
	err := r.db.GetReadPool().QueryRow(ctx, query).Scan(
		&snapshot.ID,
		&raw,
		&snapshot.SnapshotDate,
		&snapshot.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest ledger snapshot: %w", err)
	}

	ledger := domain.NewLedger()
	if err := json.Unmarshal(raw, ledger); err != nil {
		return nil, fmt.Errorf("failed to decode ledger snapshot: %w", err)
	}
	ledger.Normalize()
	snapshot.Ledger = ledger

	return snapshot, nil
}

// DeleteOldSnapshots removes snapshots older than the retention period
func (r *snapshotRepository) DeleteOldSnapshots(ctx context.Context, retentionDays int) (int64, error) {
	cutoffDate := time.Now().AddDate(0, 0, -retentionDays).Format("2006-01-02")

	result, err := r.db.Pool.Exec(ctx, `DELETE FROM ledger_snapshots WHERE snapshot_date < $1`, cutoffDate)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old ledger snapshots: %w", err)
	}

	return result.RowsAffected(), nil
}

// GetSnapshotCount returns the total number of snapshots
func (r *snapshotRepository) GetSnapshotCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetReadPool().QueryRow(ctx, `SELECT COUNT(*) FROM ledger_snapshots`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get ledger snapshot count: %w", err)
	}

	return count, nil
}
