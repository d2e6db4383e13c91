// Package viewlimit counts how many premium items a viewer revealed today.
package viewlimit

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"stock-empire/internal/domain"
)

// Limit is the number of free reveals per day.
const Limit = 3

// Store persists per-viewer limit state.
type Store interface {
	// Add resets the viewer's state when it was last reset before today, then
	// adds delta to the count and returns the new count. The whole step is
	// atomic for the viewer.
	Add(ctx context.Context, viewer, today string, delta int) (int, error)

	// Load reports found=false for a viewer that has no state yet.
	Load(ctx context.Context, viewer string) (domain.DailyLimitState, bool, error)
}

// ViewerKey identifies a viewer: signed-in users by subject, anonymous
// viewers by a hash of their IP address.
func ViewerKey(sub, ip string) string {
	if sub != "" {
		return "user:" + sub
	}
	hash := sha256.Sum256([]byte(ip))
	return fmt.Sprintf("ip:%x", hash[:8])
}

// Tracker applies the daily reset rule on top of a Store.
type Tracker struct {
	store Store
	loc   *time.Location
	now   func() time.Time
}

// NewTracker creates a tracker whose day boundary is midnight in loc.
func NewTracker(store Store, loc *time.Location) *Tracker {
	if loc == nil {
		loc = time.UTC
	}
	return &Tracker{store: store, loc: loc, now: time.Now}
}

// WithClock replaces the time source.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// CurrentCount returns today's reveal count, resetting stale state first.
func (t *Tracker) CurrentCount(ctx context.Context, viewer string) (int, error) {
	count, err := t.store.Add(ctx, viewer, t.today(), 0)
	if err != nil {
		return 0, fmt.Errorf("load view limit: %w", err)
	}
	return count, nil
}

// Increment adds one reveal and returns the new count. It never clamps;
// callers compare against Limit.
func (t *Tracker) Increment(ctx context.Context, viewer string) (int, error) {
	count, err := t.store.Add(ctx, viewer, t.today(), 1)
	if err != nil {
		return 0, fmt.Errorf("save view limit: %w", err)
	}
	return count, nil
}

// Status reports the viewer's count against Limit. Tiers with unlimited
// reveals are never limited.
func (t *Tracker) Status(count int, tier domain.Tier) domain.ViewLimitStatus {
	return domain.ViewLimitStatus{
		Count:   count,
		Limit:   Limit,
		Limited: !tier.Has(domain.CapUnlimitedReveals) && count >= Limit,
	}
}

func (t *Tracker) today() string {
	return t.now().In(t.loc).Format("2006-01-02")
}
