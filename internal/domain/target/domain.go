package target

import (
	"fmt"
	"time"
)

// HourUnset marks a window bound that was not configured. A target with an
// unset bound is checkable at any hour on that side.
const HourUnset = -1

const (
	MinInstructionsLen = 10
	MaxInstructionsLen = 1000
)

// Target is one monitored page with its schedule and delivery settings.
type Target struct {
	ID           string
	Name         string
	URL          string
	Instructions string
	Template     string
	Interval     time.Duration
	Enabled      bool
	StartHour    int
	EndHour      int
	Timezone     string
	Recipients   []string
}

func (t *Target) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("missing id")
	}
	if t.Name == "" {
		return fmt.Errorf("target %q: missing name", t.ID)
	}
	if t.URL == "" {
		return fmt.Errorf("target %q: missing url", t.ID)
	}
	if n := len(t.Instructions); n < MinInstructionsLen || n > MaxInstructionsLen {
		return fmt.Errorf("target %q: instructions must be %d-%d characters, got %d",
			t.ID, MinInstructionsLen, MaxInstructionsLen, n)
	}
	if t.Interval <= 0 {
		return fmt.Errorf("target %q: interval must be positive", t.ID)
	}
	if !validHour(t.StartHour) || !validHour(t.EndHour) {
		return fmt.Errorf("target %q: window hours must be 0-23 or unset", t.ID)
	}
	return nil
}

func validHour(h int) bool {
	return h == HourUnset || (h >= 0 && h <= 23)
}
