package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"stock-empire/internal/domain"
)

// FileLedgerStore keeps the ledger as one JSON document. Mutations are
// serialized by a mutex and written through a temp file and rename, so a
// reader never sees a half-written document. A corrupt document reads as
// zero and is overwritten by the next mutation.
type FileLedgerStore struct {
	path string
	mu   sync.Mutex
}

// NewFileLedgerStore creates a store at path. The file is created on first write.
func NewFileLedgerStore(path string) *FileLedgerStore {
	return &FileLedgerStore{path: path}
}

func (s *FileLedgerStore) Load(_ context.Context) (*domain.AnalyticsLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(), nil
}

func (s *FileLedgerStore) IncrementVisit(_ context.Context, at time.Time) error {
	return s.mutate(func(l *domain.AnalyticsLedger) {
		l.TotalVisitors++
		l.DailyVisitors[domain.DayKey(at)]++
		l.MonthlyVisitors[domain.MonthKey(at)]++
	})
}

func (s *FileLedgerStore) IncrementSignup(_ context.Context) error {
	return s.mutate(func(l *domain.AnalyticsLedger) {
		l.TotalUsers++
	})
}

func (s *FileLedgerStore) AddPayment(_ context.Context, payment domain.Payment) error {
	return s.mutate(func(l *domain.AnalyticsLedger) {
		l.MonthlyRevenue = l.MonthlyRevenue.Add(payment.Amount)
		l.ProUsers++
		l.Payments = append(l.Payments, payment)
	})
}

func (s *FileLedgerStore) Restore(_ context.Context, ledger *domain.AnalyticsLedger) error {
	return s.mutate(func(l *domain.AnalyticsLedger) {
		*l = *ledger
		l.Normalize()
	})
}

func (s *FileLedgerStore) IsEmpty(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		return true, nil
	}
	return false, err
}

// read must be called with mu held.
func (s *FileLedgerStore) read() *domain.AnalyticsLedger {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return domain.NewLedger()
	}

	ledger := domain.NewLedger()
	if err := json.Unmarshal(raw, ledger); err != nil {
		return domain.NewLedger()
	}
	ledger.Normalize()
	return ledger
}

func (s *FileLedgerStore) mutate(fn func(*domain.AnalyticsLedger)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := s.read()
	fn(ledger)

	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create ledger dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".ledger-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace ledger: %w", err)
	}

	return nil
}
