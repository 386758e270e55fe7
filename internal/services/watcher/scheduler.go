package watcher

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/testudo/seatwatch/internal/domain/target"
	"github.com/testudo/seatwatch/internal/domain/watch"
)

// errBackoff is the fixed wait after an error escapes a loop iteration.
const errBackoff = 60 * time.Second

// Scheduler owns the long-lived monitoring loop for one target. Checks for
// a target are strictly sequential; the interval runs from the end of one
// check to the next window evaluation.
type Scheduler struct {
	log      *zap.Logger
	tgt      *target.Target
	gate     Gate
	pipeline *Pipeline
	state    *ScheduleState
	clock    watch.Clock

	errBackoff time.Duration
}

func NewScheduler(log *zap.Logger, tgt *target.Target, pipeline *Pipeline, clock watch.Clock) *Scheduler {
	return &Scheduler{
		log:        log.With(zap.String("component", "watcher.scheduler"), zap.String("target", tgt.ID)),
		tgt:        tgt,
		gate:       NewGate(log),
		pipeline:   pipeline,
		state:      NewScheduleState(),
		clock:      clock,
		errBackoff: errBackoff,
	}
}

func (s *Scheduler) State() *ScheduleState {
	return s.state
}

func (s *Scheduler) Run(ctx context.Context) error {
	s.state.MarkRunning(true)
	defer s.state.MarkRunning(false)

	s.log.Info("monitoring loop started",
		zap.Duration("interval", s.tgt.Interval),
		zap.Int("window_start", s.tgt.StartHour),
		zap.Int("window_end", s.tgt.EndHour),
		zap.String("timezone", s.tgt.Timezone),
	)

	for {
		if err := ctx.Err(); err != nil {
			s.log.Info("monitoring loop cancelled")
			return err
		}

		wait := s.tgt.Interval
		if err := s.iterate(ctx); err != nil {
			// One target's persistent errors must not take down its own
			// loop: back off and keep going.
			s.log.Error("monitoring loop error", zap.Error(err))
			wait = s.errBackoff
		}

		if !s.sleep(ctx, wait) {
			s.log.Info("monitoring loop cancelled")
			return ctx.Err()
		}
	}
}

// iterate runs one window evaluation plus (when open) one check. A panic is
// converted into an error so the loop's backoff path handles it.
func (s *Scheduler) iterate(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("iteration panic: %v", r)
		}
	}()

	if s.gate.Open(s.tgt, s.clock.Now()) {
		s.pipeline.RunCheck(ctx, s.tgt, s.state)
	} else {
		s.log.Debug("outside check window")
	}
	return nil
}

// sleep waits d or until cancellation; it reports false when cancelled.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
