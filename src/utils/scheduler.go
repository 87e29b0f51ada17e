package utils

import (
	"context"
	"sync"
	"time"

	"market-terminal/src/logger"
)

// -----------------------------------------------------------------------------
// Scheduler runs a pipeline cycle on a fixed interval until its context is
// cancelled. A failing cycle is logged and the loop keeps going; only
// cancellation stops it.
// -----------------------------------------------------------------------------

type Scheduler struct {
	Name     string
	Interval time.Duration
	Cycle    func(ctx context.Context) error
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewScheduler(name string, interval time.Duration, cycle func(ctx context.Context) error) *Scheduler {
	return &Scheduler{
		Name:     name,
		Interval: interval,
		Cycle:    cycle,
		Logger:   logger.NewLogger("Scheduler"),
	}
}

// -----------------------------------------------------------------------------

// Run executes one cycle immediately, then one per interval tick. It returns
// when ctx is cancelled and marks wg done on exit.
func (s *Scheduler) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	s.Logger.Info("%s: starting, interval %s", s.Name, s.Interval)

	s.runOnce(ctx)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("%s: stopping", s.Name)
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// -----------------------------------------------------------------------------

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.Cycle(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.Logger.Error("%s: cycle failed: %v", s.Name, err)
	}
}
