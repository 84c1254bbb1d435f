// Package maintenance runs periodic housekeeping: expired verification and
// reset tokens are cleared from storage, and idle rate-limit counters are
// dropped from the in-memory store.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/swinggity/internal/metrics"
	"github.com/robfig/cron/v3"
)

type tokenStore interface {
	ClearExpiredTokens(ctx context.Context, now time.Time) (verification, reset int64, err error)
}

// Pruner is satisfied by *ratelimit.MemoryStore.
type Pruner interface {
	Prune(now time.Time) int
}

type Sweeper struct {
	tokens tokenStore
	pruner Pruner
	logger *slog.Logger
	now    func() time.Time
}

// NewSweeper builds a Sweeper. pruner may be nil when counters live in Redis,
// which expires them itself.
func NewSweeper(tokens tokenStore, pruner Pruner, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		tokens: tokens,
		pruner: pruner,
		logger: logger.With("component", "sweeper"),
		now:    time.Now,
	}
}

// Run sweeps on the given cron schedule until ctx is cancelled, then waits
// for an in-flight sweep to finish.
func (s *Sweeper) Run(ctx context.Context, schedule string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() { s.Sweep(ctx) }); err != nil {
		return fmt.Errorf("parse sweep schedule %q: %w", schedule, err)
	}

	s.logger.Info("sweeper started", "schedule", schedule)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("sweeper shut down")
	return nil
}

// Sweep performs one pass. Failures are logged; the next run retries.
func (s *Sweeper) Sweep(ctx context.Context) {
	start := time.Now()
	defer func() { metrics.SweepDuration.Observe(time.Since(start).Seconds()) }()

	now := s.now()

	verification, reset, err := s.tokens.ClearExpiredTokens(ctx, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "clear expired tokens", "error", err)
	} else {
		metrics.TokensSweptTotal.WithLabelValues("verification").Add(float64(verification))
		metrics.TokensSweptTotal.WithLabelValues("reset").Add(float64(reset))
		if verification > 0 || reset > 0 {
			s.logger.InfoContext(ctx, "cleared expired tokens", "verification", verification, "reset", reset)
		}
	}

	if s.pruner != nil {
		if n := s.pruner.Prune(now); n > 0 {
			s.logger.DebugContext(ctx, "pruned rate limit counters", "count", n)
		}
	}
}
