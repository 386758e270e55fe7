package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/testudo/seatwatch/internal/domain/target"
)

const (
	defaultInterval  = 300
	defaultStartHour = 8
	defaultEndHour   = 23
	defaultTimezone  = "America/New_York"
)

// targetSpec mirrors one entry of the targets file. Pointer fields tell an
// absent key apart from an explicit zero so defaults apply correctly.
type targetSpec struct {
	ID           string   `mapstructure:"id"`
	Name         string   `mapstructure:"name"`
	URL          string   `mapstructure:"url"`
	Instructions string   `mapstructure:"instructions"`
	Template     string   `mapstructure:"notification_message"`
	Interval     *int     `mapstructure:"interval"`
	Enabled      *bool    `mapstructure:"enabled"`
	StartHour    *int     `mapstructure:"check_start_hour"`
	EndHour      *int     `mapstructure:"check_end_hour"`
	Timezone     string   `mapstructure:"check_timezone"`
	Recipients   []string `mapstructure:"recipients"`
}

// Issue records why one target from the file was not loaded.
type Issue struct {
	ID     string
	Reason string
}

// LoadTargets reads the targets file. A missing file or missing `targets`
// key is fatal; a target that fails validation or duplicates an id becomes
// an Issue and loading continues. Disabled targets are silently skipped.
func LoadTargets(path string) ([]target.Target, []Issue, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("read targets file %s: %w", path, err)
	}
	if !v.IsSet("targets") {
		return nil, nil, fmt.Errorf("targets file %s: missing required key `targets`", path)
	}

	var specs []targetSpec
	if err := v.UnmarshalKey("targets", &specs); err != nil {
		return nil, nil, fmt.Errorf("parse targets: %w", err)
	}

	var (
		out    []target.Target
		issues []Issue
		seen   = map[string]bool{}
	)
	for _, s := range specs {
		if s.Enabled != nil && !*s.Enabled {
			continue
		}
		t := fromSpec(s)
		if err := t.Validate(); err != nil {
			issues = append(issues, Issue{ID: s.ID, Reason: err.Error()})
			continue
		}
		if seen[t.ID] {
			issues = append(issues, Issue{ID: t.ID, Reason: fmt.Sprintf("target %s: duplicate id", t.ID)})
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out, issues, nil
}

func fromSpec(s targetSpec) target.Target {
	t := target.Target{
		ID:           s.ID,
		Name:         s.Name,
		URL:          s.URL,
		Instructions: s.Instructions,
		Template:     s.Template,
		Interval:     defaultInterval * time.Second,
		Enabled:      true,
		StartHour:    defaultStartHour,
		EndHour:      defaultEndHour,
		Timezone:     s.Timezone,
		Recipients:   s.Recipients,
	}
	if s.Interval != nil {
		t.Interval = time.Duration(*s.Interval) * time.Second
	}
	if s.StartHour != nil {
		t.StartHour = *s.StartHour
	}
	if s.EndHour != nil {
		t.EndHour = *s.EndHour
	}
	if t.Timezone == "" {
		t.Timezone = defaultTimezone
	}
	return t
}
