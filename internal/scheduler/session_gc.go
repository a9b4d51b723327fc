package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/utmgen/internal/logger"
)

// DefaultSessionIdleTTL is how long an untouched session survives
const DefaultSessionIdleTTL = 12 * time.Hour

// Sweeper evicts sessions idle for longer than ttl
type Sweeper interface {
	Sweep(now time.Time, ttl time.Duration) int
}

// SessionCollector periodically drops idle sessions from a store
// that has no expiry of its own
type SessionCollector struct {
	sweeper  Sweeper
	logger   logger.Logger
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
}

// NewSessionCollector creates a new session collector
func NewSessionCollector(
	sweeper Sweeper,
	log logger.Logger,
	interval time.Duration,
	ttl time.Duration,
) *SessionCollector {
	if ttl == 0 {
		ttl = DefaultSessionIdleTTL
	}

	return &SessionCollector{
		sweeper:  sweeper,
		logger:   log,
		interval: interval,
		ttl:      ttl,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic collection
func (sc *SessionCollector) Start(ctx context.Context) {
	ticker := time.NewTicker(sc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sc.Collect()
			case <-sc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the collector
func (sc *SessionCollector) Stop() {
	close(sc.stopCh)
}

// Collect runs one sweep and returns how many sessions were evicted
func (sc *SessionCollector) Collect() int {
	removed := sc.sweeper.Sweep(sc.now(), sc.ttl)

	if removed > 0 {
		sc.logger.Info("idle sessions collected",
			logger.Int("removed", removed),
			logger.Duration("idle_ttl", sc.ttl))
	} else {
		sc.logger.Debug("no idle sessions to collect")
	}

	return removed
}
