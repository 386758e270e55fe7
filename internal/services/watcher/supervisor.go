package watcher

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/testudo/seatwatch/internal/domain/target"
	"github.com/testudo/seatwatch/internal/domain/watch"
)

// Supervisor starts one Scheduler per target and coordinates shutdown. The
// shared fetch session is released exactly once, only after every loop has
// confirmed termination; closing it earlier risks a use-after-close inside
// an in-flight check.
type Supervisor struct {
	log        *zap.Logger
	schedulers map[string]*Scheduler
	session    io.Closer
	running    atomic.Bool
}

func NewSupervisor(
	log *zap.Logger,
	targets []target.Target,
	pipeline *Pipeline,
	session io.Closer,
	clock watch.Clock,
) *Supervisor {
	schedulers := make(map[string]*Scheduler, len(targets))
	for i := range targets {
		t := &targets[i]
		schedulers[t.ID] = NewScheduler(log, t, pipeline, clock)
	}
	return &Supervisor{
		log:        log.With(zap.String("component", "watcher.supervisor")),
		schedulers: schedulers,
		session:    session,
	}
}

// Run blocks until ctx is cancelled and every loop has stopped. Zero
// targets is not an error: the run ends immediately with a warning.
func (s *Supervisor) Run(ctx context.Context) error {
	if len(s.schedulers) == 0 {
		s.log.Warn("no targets configured, nothing to monitor")
		return nil
	}

	s.running.Store(true)
	defer s.running.Store(false)

	var wg sync.WaitGroup
	for id, sch := range s.schedulers {
		wg.Add(1)
		go func(id string, sch *Scheduler) {
			defer wg.Done()
			if err := sch.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.log.Error("monitoring loop exited", zap.String("target", id), zap.Error(err))
			}
		}(id, sch)
	}
	s.log.Info("supervisor started", zap.Int("targets", len(s.schedulers)))

	wg.Wait()

	if s.session != nil {
		if err := s.session.Close(); err != nil {
			s.log.Warn("closing shared fetch session", zap.Error(err))
		} else {
			s.log.Info("shared fetch session closed")
		}
	}
	return ctx.Err()
}

func (s *Supervisor) Running() bool {
	return s.running.Load()
}

// LastChecks snapshots every target's last completed check time. Targets
// that have never completed a check are omitted.
func (s *Supervisor) LastChecks() map[string]time.Time {
	out := make(map[string]time.Time, len(s.schedulers))
	for id, sch := range s.schedulers {
		if ts, ok := sch.State().LastCheck(); ok {
			out[id] = ts
		}
	}
	return out
}
