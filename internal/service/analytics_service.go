package service

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"stock-empire/internal/domain"
	"stock-empire/internal/metrics"
	"stock-empire/internal/repository"
	apperrors "stock-empire/pkg/errors"
	"stock-empire/pkg/logger"
	"stock-empire/pkg/redis"
)

// RateLimitWindow is the visit rate limit window
const RateLimitWindow = redis.TTLVisitWindow

// AnalyticsConfig carries the tunables of the analytics service
type AnalyticsConfig struct {
	SnapshotInterval     time.Duration
	VisitRateLimit       int64
	PlaceholderUserCount int
}

// analyticsService records events into the ledger store. When PostgreSQL is
// configured it also snapshots the ledger periodically.
type analyticsService struct {
	store       repository.LedgerStore
	snapshots   repository.SnapshotRepository // nil without PostgreSQL
	redisClient *redis.Client                 // nil disables the visit rate limit
	users       UserCounter                   // nil reports the placeholder count
	cfg         AnalyticsConfig
	logger      *logger.Logger
	now         func() time.Time

	// mutations are serialized so snapshots see a consistent ledger
	writeMu sync.Mutex

	mu             sync.Mutex
	isRunning      bool
	snapshotTicker *time.Ticker
	stopSnapshot   chan struct{}
	routineDone    chan struct{}
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	store repository.LedgerStore,
	snapshots repository.SnapshotRepository,
	redisClient *redis.Client,
	users UserCounter,
	cfg AnalyticsConfig,
	logger *logger.Logger,
) AnalyticsService {
	if cfg.SnapshotInterval <= 0 {
		cfg.SnapshotInterval = 30 * time.Second
	}
	if cfg.VisitRateLimit <= 0 {
		cfg.VisitRateLimit = 60
	}

	return &analyticsService{
		store:       store,
		snapshots:   snapshots,
		redisClient: redisClient,
		users:       users,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Start initializes the service and begins periodic snapshots
func (s *analyticsService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning || s.snapshots == nil {
		return nil
	}

	s.logger.Info("Starting analytics service...")

	// Restore from last SQL snapshot if the store is empty
	if err := s.restoreFromSnapshot(ctx); err != nil {
		s.logger.WithError(err).Warn("Failed to restore from snapshot, continuing with current ledger")
	}

	s.snapshotTicker = time.NewTicker(s.cfg.SnapshotInterval)
	s.stopSnapshot = make(chan struct{})
	s.routineDone = make(chan struct{})
	go s.snapshotRoutine(ctx)

	s.isRunning = true
	s.logger.WithField("interval", s.cfg.SnapshotInterval.String()).Info("Analytics service started")
	return nil
}

// Stop ends periodic snapshots and writes a final one
func (s *analyticsService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.logger.Info("Stopping analytics service...")

	s.snapshotTicker.Stop()
	close(s.stopSnapshot)
	<-s.routineDone

	if err := s.saveSnapshot(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to save final snapshot during shutdown")
	}

	s.isRunning = false
	s.logger.Info("Analytics service stopped")
	return nil
}

// Record applies one event to the ledger
func (s *analyticsService) Record(ctx context.Context, event domain.TrackEvent, clientIP string) (*domain.AnalyticsLedger, *domain.RateLimitInfo, error) {
	if !event.Type.Valid() {
		return nil, nil, apperrors.NewValidationError("Invalid event type", map[string]interface{}{
			"type":    string(event.Type),
			"allowed": []domain.EventType{domain.EventVisit, domain.EventSignup, domain.EventPayment},
		})
	}

	var rateLimitInfo *domain.RateLimitInfo
	if event.Type == domain.EventVisit {
		info, err := s.checkRateLimit(ctx, clientIP)
		if err != nil {
			// A broken limiter must not block tracking.
			s.logger.WithError(err).Warn("Failed to check visit rate limit")
		} else if info != nil {
			rateLimitInfo = info
			if !info.IsAllowed {
				metrics.LedgerEventsTotal.WithLabelValues(string(event.Type), "rate_limited").Inc()
				s.logger.WithFields(map[string]interface{}{
					"ip_hash":       hashIP(clientIP),
					"request_count": info.RequestCount,
				}).Warn("Rate limit exceeded")
				return nil, info, apperrors.NewRateLimitError("Too many visit events, try again later")
			}
		}
	}

	if event.Type == domain.EventPayment {
		if event.Payload == nil {
			return nil, rateLimitInfo, apperrors.NewValidationError("Payment payload is required", nil)
		}
		if event.Payload.Amount.IsNegative() {
			return nil, rateLimitInfo, apperrors.NewValidationError("Payment amount must not be negative", map[string]interface{}{
				"amount": event.Payload.Amount.String(),
			})
		}
	}

	ledger, err := s.apply(ctx, event)
	if err != nil {
		metrics.LedgerEventsTotal.WithLabelValues(string(event.Type), "error").Inc()
		s.logger.WithError(err).WithField("type", string(event.Type)).Error("Failed to record event")
		return nil, rateLimitInfo, apperrors.NewInternalError("Failed to record event", err)
	}

	metrics.LedgerEventsTotal.WithLabelValues(string(event.Type), "ok").Inc()
	return ledger, rateLimitInfo, nil
}

func (s *analyticsService) apply(ctx context.Context, event domain.TrackEvent) (*domain.AnalyticsLedger, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	now := s.now().UTC()

	var err error
	switch event.Type {
	case domain.EventVisit:
		err = s.store.IncrementVisit(ctx, now)
	case domain.EventSignup:
		err = s.store.IncrementSignup(ctx)
	case domain.EventPayment:
		id, idErr := uuid.NewV7()
		if idErr != nil {
			return nil, fmt.Errorf("failed to generate payment id: %w", idErr)
		}
		err = s.store.AddPayment(ctx, domain.Payment{
			ID:        domain.PaymentID(id.String()),
			Amount:    event.Payload.Amount,
			Plan:      event.Payload.Plan,
			Timestamp: now,
		})
	}
	if err != nil {
		return nil, err
	}

	return s.store.Load(ctx)
}

// Snapshot returns the current ledger
func (s *analyticsService) Snapshot(ctx context.Context) (*domain.AnalyticsLedger, error) {
	ledger, err := s.store.Load(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to load analytics", err)
	}
	return ledger, nil
}

// Stats returns the ledger with the identity provider's user count. A
// provider failure falls back to the configured placeholder.
func (s *analyticsService) Stats(ctx context.Context) (*domain.Stats, error) {
	ledger, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.Stats{
		Ledger:          ledger,
		RegisteredUsers: s.cfg.PlaceholderUserCount,
		UsersSource:     domain.UsersSourcePlaceholder,
		Timestamp:       s.now().UTC(),
	}

	if s.users != nil {
		count, err := s.users.UserCount(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("Identity provider user count unavailable, using placeholder")
		} else {
			stats.RegisteredUsers = count
			stats.UsersSource = domain.UsersSourceIdentity
		}
	}

	return stats, nil
}

// checkRateLimit counts a visit against the client's window. Without Redis
// there is no limit and it returns nil.
func (s *analyticsService) checkRateLimit(ctx context.Context, clientIP string) (*domain.RateLimitInfo, error) {
	if s.redisClient == nil {
		return nil, nil
	}

	key := s.redisClient.KeyBuilder.KeyVisitRateLimit(hashIP(clientIP))

	count, err := s.redisClient.Incr(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	// Set expiry on first request
	if count == 1 {
		if err := s.redisClient.Expire(ctx, key, RateLimitWindow); err != nil {
			s.logger.WithError(err).Warn("Failed to set rate limit key expiry")
		}
	}

	return &domain.RateLimitInfo{
		RequestCount: count,
		Limit:        s.cfg.VisitRateLimit,
		WindowStart:  s.now().Truncate(RateLimitWindow),
		TTL:          RateLimitWindow,
		IsAllowed:    count <= s.cfg.VisitRateLimit,
	}, nil
}

// restoreFromSnapshot restores the ledger from the latest SQL snapshot if the store is empty
func (s *analyticsService) restoreFromSnapshot(ctx context.Context) error {
	empty, err := s.store.IsEmpty(ctx)
	if err != nil {
		return fmt.Errorf("failed to check ledger store: %w", err)
	}
	if !empty {
		s.logger.Info("Ledger store already holds data, skipping restore")
		return nil
	}

	snapshot, err := s.snapshots.GetLatestSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	if snapshot == nil {
		s.logger.Info("No ledger snapshot found, starting from zero")
		return nil
	}

	if err := s.store.Restore(ctx, snapshot.Ledger); err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"total_visitors": snapshot.Ledger.TotalVisitors,
		"total_users":    snapshot.Ledger.TotalUsers,
		"snapshot_date":  snapshot.SnapshotDate.Format("2006-01-02"),
	}).Info("Successfully restored ledger from snapshot")

	return nil
}

// saveSnapshot writes the current ledger to PostgreSQL
func (s *analyticsService) saveSnapshot(ctx context.Context) error {
	s.writeMu.Lock()
	ledger, err := s.store.Load(ctx)
	s.writeMu.Unlock()
	if err != nil {
		metrics.LedgerSnapshotsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to load ledger: %w", err)
	}

	now := s.now()
	snapshot := &domain.LedgerSnapshot{
		Ledger:       ledger,
		SnapshotDate: now.UTC(),
		CreatedAt:    now,
	}

	if err := s.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		metrics.LedgerSnapshotsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	metrics.LedgerSnapshotsTotal.WithLabelValues("ok").Inc()
	s.logger.WithFields(map[string]interface{}{
		"total_visitors": ledger.TotalVisitors,
		"payments":       len(ledger.Payments),
	}).Debug("Ledger snapshot saved")

	return nil
}

// snapshotRoutine runs periodic snapshots
func (s *analyticsService) snapshotRoutine(ctx context.Context) {
	defer close(s.routineDone)

	for {
		select {
		case <-s.snapshotTicker.C:
			if err := s.saveSnapshot(ctx); err != nil {
				s.logger.WithError(err).Error("Failed to save periodic snapshot")
			}
		case <-s.stopSnapshot:
			s.logger.Debug("Snapshot routine stopped")
			return
		case <-ctx.Done():
			s.logger.Debug("Snapshot routine cancelled")
			return
		}
	}
}

// hashIP shortens and anonymizes an IP address for keys and logs
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return fmt.Sprintf("%x", hash)[:16]
}
