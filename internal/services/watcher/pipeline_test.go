package watcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/testudo/seatwatch/internal/domain/target"
	"github.com/testudo/seatwatch/internal/domain/watch"
	"github.com/testudo/seatwatch/internal/obs/retry"
	"github.com/testudo/seatwatch/internal/services/notifier"
)

type fakeFetcher struct {
	calls  atomic.Int64
	active atomic.Int64
	delay  time.Duration
	err    error
	panics bool
	text   string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*watch.Page, error) {
	f.calls.Add(1)
	f.active.Add(1)
	defer f.active.Add(-1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.panics {
		panic("fetcher exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return &watch.Page{Text: f.text, Title: "page", URL: url}, nil
}

type fakeAnalyzer struct {
	calls atomic.Int64
	res   *watch.CheckResult
	err   error
}

func (a *fakeAnalyzer) Analyze(_ context.Context, _, _, _ string) (*watch.CheckResult, error) {
	a.calls.Add(1)
	if a.err != nil {
		return nil, a.err
	}
	return a.res, nil
}

type memChannel struct {
	mu   sync.Mutex
	to   []string
	text []string
}

func (c *memChannel) Send(_ context.Context, recipient, text string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.to = append(c.to, recipient)
	c.text = append(c.text, text)
	return "m1", nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func newTestPipeline(f watch.Fetcher, a watch.Analyzer, ch watch.MessageChannel, clock watch.Clock) *Pipeline {
	d := notifier.NewDispatcher(zap.NewNop(), ch, clock).
		WithPolicy(retry.Policy{Attempts: 3, Backoff: retry.ExpoJitter{Base: time.Millisecond}})
	return NewPipeline(zap.NewNop(), f, a, d, clock, "default-rcpt")
}

func testTarget() *target.Target {
	return &target.Target{
		ID:           "cmsc216",
		Name:         "CMSC216",
		URL:          "http://x",
		Instructions: "tell me when any section opens",
		Interval:     time.Hour,
		Enabled:      true,
		StartHour:    target.HourUnset,
		EndHour:      target.HourUnset,
		Timezone:     "UTC",
	}
}

func TestRunCheck_FetchFailureAbortsCheck(t *testing.T) {
	f := &fakeFetcher{err: errors.New("page unreachable")}
	a := &fakeAnalyzer{}
	ch := &memChannel{}
	p := newTestPipeline(f, a, ch, watch.SystemClock{})
	state := NewScheduleState()

	p.RunCheck(context.Background(), testTarget(), state)

	assert.EqualValues(t, 0, a.calls.Load(), "analysis must not run after a fetch failure")
	assert.Empty(t, ch.to, "no notification after a fetch failure")
	_, ok := state.LastCheck()
	assert.True(t, ok, "completion recorded even for an aborted check")
}

func TestRunCheck_AnalyzeFailureBecomesNotMet(t *testing.T) {
	f := &fakeFetcher{text: "some page"}
	a := &fakeAnalyzer{err: errors.New("model unavailable")}
	ch := &memChannel{}
	p := newTestPipeline(f, a, ch, watch.SystemClock{})
	state := NewScheduleState()

	p.RunCheck(context.Background(), testTarget(), state)

	assert.Empty(t, ch.to)
	_, ok := state.LastCheck()
	assert.True(t, ok)
}

func TestRunCheck_ConditionMetNotifiesOpenSectionsOnly(t *testing.T) {
	f := &fakeFetcher{text: "some page"}
	a := &fakeAnalyzer{res: &watch.CheckResult{
		Available: true,
		Sections: []watch.SectionStatus{
			{SectionID: "0101", OpenSeats: 3, TotalSeats: 30},
			{SectionID: "0202", OpenSeats: 0, TotalSeats: 30},
		},
		Summary: "one open section",
	}}
	ch := &memChannel{}
	p := newTestPipeline(f, a, ch, watch.SystemClock{})

	p.RunCheck(context.Background(), testTarget(), NewScheduleState())

	require.Equal(t, []string{"default-rcpt"}, ch.to)
	assert.Contains(t, ch.text[0], "0101")
	assert.NotContains(t, ch.text[0], "0202")
}

func TestRunCheck_TargetRecipientsOverrideDefault(t *testing.T) {
	f := &fakeFetcher{text: "some page"}
	a := &fakeAnalyzer{res: &watch.CheckResult{
		Available: true,
		Sections:  []watch.SectionStatus{{SectionID: "0101", OpenSeats: 1}},
	}}
	ch := &memChannel{}
	p := newTestPipeline(f, a, ch, watch.SystemClock{})

	tgt := testTarget()
	tgt.Recipients = []string{"alice", "bob"}
	p.RunCheck(context.Background(), tgt, NewScheduleState())

	assert.ElementsMatch(t, []string{"alice", "bob"}, ch.to)
}

func TestRunCheck_NotAvailableDoesNotNotify(t *testing.T) {
	f := &fakeFetcher{text: "some page"}
	a := &fakeAnalyzer{res: &watch.CheckResult{Available: false, Summary: "all full"}}
	ch := &memChannel{}
	p := newTestPipeline(f, a, ch, watch.SystemClock{})

	p.RunCheck(context.Background(), testTarget(), NewScheduleState())
	assert.Empty(t, ch.to)
}
