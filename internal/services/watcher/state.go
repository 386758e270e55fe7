package watcher

import (
	"sync/atomic"
	"time"
)

// ScheduleState tracks one target's loop. Only the owning loop writes;
// anything else (the status surface) reads snapshots and tolerates staleness.
type ScheduleState struct {
	lastCheck atomic.Int64 // unix nanos, 0 = never checked
	running   atomic.Bool
}

func NewScheduleState() *ScheduleState {
	return &ScheduleState{}
}

func (s *ScheduleState) MarkRunning(v bool) {
	s.running.Store(v)
}

func (s *ScheduleState) Running() bool {
	return s.running.Load()
}

func (s *ScheduleState) RecordCheck(t time.Time) {
	s.lastCheck.Store(t.UnixNano())
}

func (s *ScheduleState) LastCheck() (time.Time, bool) {
	n := s.lastCheck.Load()
	if n == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, n), true
}
