package watcher

import (
	"time"

	"go.uber.org/zap"

	"github.com/testudo/seatwatch/internal/domain/target"
)

// IsOpen reports whether hour falls inside the daily window. The start is
// inclusive, the end exclusive; start > end wraps across midnight. An unset
// bound disables the window entirely.
func IsOpen(hour, startHour, endHour int) bool {
	if startHour == target.HourUnset || endHour == target.HourUnset {
		return true
	}
	if startHour <= endHour {
		return startHour <= hour && hour < endHour
	}
	return hour >= startHour || hour < endHour
}

// Gate evaluates a target's window in its configured timezone. A timezone
// that fails to resolve fails open: the loop must never stall on a window
// error.
type Gate struct {
	log *zap.Logger
}

func NewGate(log *zap.Logger) Gate {
	return Gate{log: log.With(zap.String("component", "watcher.gate"))}
}

func (g Gate) Open(t *target.Target, now time.Time) bool {
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		g.log.Warn("timezone resolution failed, window fails open",
			zap.String("target", t.ID),
			zap.String("timezone", t.Timezone),
			zap.Error(err),
		)
		return true
	}
	return IsOpen(now.In(loc).Hour(), t.StartHour, t.EndHour)
}
