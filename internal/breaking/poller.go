// Package breaking surfaces at most one novel breaking news item per poll.
package breaking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"stock-empire/internal/domain"
	"stock-empire/internal/metrics"
)

// DefaultInterval is the time between polls.
const DefaultInterval = 60 * time.Second

// Handler receives novel breaking items.
type Handler func(item domain.BreakingNewsItem)

// Poller checks a feed for the newest breaking item. Only the first breaking
// item in feed order is considered; older unseen breaking items are skipped.
type Poller struct {
	fetcher  Fetcher
	seen     SeenStore
	handler  Handler
	interval time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewPoller creates a poller. handler may be nil.
func NewPoller(fetcher Fetcher, seen SeenStore, handler Handler, interval time.Duration, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	if handler == nil {
		handler = func(domain.BreakingNewsItem) {}
	}
	return &Poller{
		fetcher:  fetcher,
		seen:     seen,
		handler:  handler,
		interval: interval,
		log:      log,
	}
}

// Poll fetches one snapshot. It returns novel=true when the first breaking
// item differs from the last seen one; that id is then recorded and the
// handler notified. Nothing is recorded once the poller is stopped.
func (p *Poller) Poll(ctx context.Context) (domain.BreakingNewsItem, bool, error) {
	items, err := p.fetcher.Fetch(ctx)
	if err != nil {
		metrics.PollsTotal.WithLabelValues("error").Inc()
		return domain.BreakingNewsItem{}, false, err
	}

	var latest *domain.NewsItem
	for i := range items {
		if items[i].IsBreaking {
			latest = &items[i]
			break
		}
	}
	if latest == nil {
		metrics.PollsTotal.WithLabelValues("none").Inc()
		return domain.BreakingNewsItem{}, false, nil
	}

	lastSeen, err := p.seen.LastSeen(ctx)
	if err != nil {
		metrics.PollsTotal.WithLabelValues("error").Inc()
		return domain.BreakingNewsItem{}, false, fmt.Errorf("load last seen: %w", err)
	}

	item := latest.Breaking()
	if item.ID == lastSeen {
		metrics.PollsTotal.WithLabelValues("seen").Inc()
		return item, false, nil
	}

	// Holding mu across the write keeps Stop from returning mid-write.
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped || ctx.Err() != nil {
		metrics.PollsTotal.WithLabelValues("stopped").Inc()
		return item, false, nil
	}

	if err := p.seen.MarkSeen(ctx, item.ID); err != nil {
		metrics.PollsTotal.WithLabelValues("error").Inc()
		return item, false, fmt.Errorf("mark seen: %w", err)
	}

	metrics.PollsTotal.WithLabelValues("novel").Inc()
	p.handler(item)
	return item, true, nil
}

// Start polls immediately and then on every interval until Stop or ctx is done.
// The handler must not call Stop.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.cancel != nil || p.stopped {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.mu.Unlock()

	go p.run(ctx)
}

// Stop cancels the loop and waits for it to exit. A poll in flight when Stop
// is called records nothing.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.stopped = true
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	item, novel, err := p.Poll(ctx)
	if err != nil {
		// Retried on the next tick.
		p.log.Warn("Breaking news poll failed", zap.Error(err))
		return
	}
	if novel {
		p.log.Info("Breaking news surfaced",
			zap.String("id", item.ID),
			zap.String("sentiment", string(item.Sentiment)))
	}
}
