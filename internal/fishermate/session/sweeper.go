package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/adhocore/gronx"
)

// DefaultSchedule runs the sweep at the top of every hour.
const DefaultSchedule = "@hourly"

// Evicter drops entries idle for longer than ttl. Every Store is one; so
// is the audio file cache.
type Evicter interface {
	EvictStale(ctx context.Context, ttl time.Duration) (int, error)
}

// SweepTarget is one store swept with its TTL.
type SweepTarget struct {
	Name  string
	Store Evicter
	TTL   time.Duration
}

// Sweeper evicts stale sessions, and anything else with a TTL, on a cron
// schedule.
type Sweeper struct {
	schedule string
	targets  []SweepTarget
	logger   *slog.Logger
	now      func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewSweeper validates schedule and returns a Sweeper over targets. An
// empty schedule means DefaultSchedule.
func NewSweeper(schedule string, logger *slog.Logger, targets ...SweepTarget) (*Sweeper, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if !gronx.New().IsValid(schedule) {
		return nil, fmt.Errorf("%w: invalid sweep schedule %q", ErrInvalidConfig, schedule)
	}
	for _, t := range targets {
		if t.Store == nil || t.TTL <= 0 {
			return nil, fmt.Errorf("%w: sweep target %q needs a store and a positive TTL", ErrInvalidConfig, t.Name)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		schedule: schedule,
		targets:  targets,
		logger:   logger,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}, nil
}

// Next returns the first scheduled sweep strictly after t.
func (s *Sweeper) Next(t time.Time) (time.Time, error) {
	return gronx.NextTickAfter(s.schedule, t, false)
}

// Run sweeps on schedule until ctx is cancelled or Stop is called. Call it
// in a goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	for {
		next, err := s.Next(s.now())
		if err != nil {
			s.logger.Error("session sweeper: cannot compute next run", "schedule", s.schedule, "err", err)
			return
		}
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.stopCh:
			timer.Stop()
			return
		case <-timer.C:
			s.SweepOnce(ctx)
		}
	}
}

// Stop signals Run to return. Safe to call multiple times.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// SweepOnce evicts stale sessions from every target and returns the total
// removed. A failing store is logged and does not stop the others.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	total := 0
	for _, t := range s.targets {
		n, err := t.Store.EvictStale(ctx, t.TTL)
		total += n
		if err != nil {
			s.logger.Warn("session sweeper: eviction failed", "store", t.Name, "err", err)
			continue
		}
		if n > 0 {
			s.logger.Info("session sweeper: evicted stale entries", "store", t.Name, "count", n)
		}
	}
	return total
}
