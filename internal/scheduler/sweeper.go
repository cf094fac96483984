// Package scheduler runs background maintenance on a fixed interval.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// SweepFunc removes expired data and reports how many records it removed.
type SweepFunc func(ctx context.Context) (int, error)

// Sweeper calls a SweepFunc every interval until its context is cancelled.
type Sweeper struct {
	interval time.Duration
	sweep    SweepFunc
	logger   *slog.Logger
}

func NewSweeper(interval time.Duration, sweep SweepFunc, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		interval: interval,
		sweep:    sweep,
		logger:   logger,
	}
}

// Run blocks until ctx is done. A non-positive interval disables sweeping,
// in which case Run just waits for ctx.
func (s *Sweeper) Run(ctx context.Context) error {
	const op = "scheduler.Sweeper.Run"

	if s.interval <= 0 {
		s.logger.Info("sweeper disabled", slog.String("op", op))
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	const op = "scheduler.Sweeper.runOnce"

	start := time.Now()

	n, err := s.sweep(ctx)
	if err != nil {
		s.logger.Error("sweep failed",
			slog.String("op", op),
			slog.Int("removed", n),
			slog.Any("err", err),
		)
		return
	}

	level := slog.LevelDebug
	if n > 0 {
		level = slog.LevelInfo
	}

	s.logger.Log(ctx, level, "expired urls swept",
		slog.Int("removed", n),
		slog.Duration("took", time.Since(start)),
	)
}
