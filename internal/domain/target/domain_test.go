package target

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valid() Target {
	return Target{
		ID:           "cmsc216",
		Name:         "CMSC216",
		URL:          "https://example.edu/soc",
		Instructions: "tell me when any section opens",
		Interval:     5 * time.Minute,
		Enabled:      true,
		StartHour:    8,
		EndHour:      23,
		Timezone:     "America/New_York",
	}
}

func TestValidate_OK(t *testing.T) {
	tgt := valid()
	require.NoError(t, tgt.Validate())
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Target)
		want   string
	}{
		{"missing id", func(x *Target) { x.ID = "" }, "missing id"},
		{"missing name", func(x *Target) { x.Name = "" }, "missing name"},
		{"missing url", func(x *Target) { x.URL = "" }, "missing url"},
		{"instructions too short", func(x *Target) { x.Instructions = "short" }, "instructions"},
		{"instructions too long", func(x *Target) { x.Instructions = strings.Repeat("a", 1001) }, "instructions"},
		{"zero interval", func(x *Target) { x.Interval = 0 }, "interval"},
		{"hour too high", func(x *Target) { x.StartHour = 24 }, "window hours"},
		{"hour negative", func(x *Target) { x.EndHour = -2 }, "window hours"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tgt := valid()
			c.mutate(&tgt)
			err := tgt.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.want)
		})
	}
}

func TestValidate_UnsetHoursAllowed(t *testing.T) {
	tgt := valid()
	tgt.StartHour, tgt.EndHour = HourUnset, HourUnset
	require.NoError(t, tgt.Validate())
}
