package watcher

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/testudo/seatwatch/internal/domain/target"
	"github.com/testudo/seatwatch/internal/domain/watch"
	"github.com/testudo/seatwatch/internal/obs"
	"github.com/testudo/seatwatch/internal/services/notifier"
)

var (
	mChecks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "watcher_checks_total", Help: "Check pipeline runs",
	})
	mConditionMet = promauto.NewCounter(prometheus.CounterOpts{
		Name: "watcher_condition_met_total", Help: "Checks where the condition was met",
	})
	mFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "watcher_fetch_errors_total", Help: "Checks aborted by a fetch failure",
	})
	mAnalyzeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "watcher_analyze_errors_total", Help: "Analysis failures converted to not-met results",
	})
	mCheckDur = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "watcher_check_duration_seconds", Help: "One check cycle duration",
		Buckets: prometheus.DefBuckets,
	})
)

// Pipeline runs one check for one target: fetch, analyze, and notify when
// the condition is met. Every stage is fault-isolated; nothing escapes to
// the owning loop.
type Pipeline struct {
	log              *zap.Logger
	fetch            watch.Fetcher
	analyze          watch.Analyzer
	dispatch         *notifier.Dispatcher
	clock            watch.Clock
	defaultRecipient string
}

func NewPipeline(
	log *zap.Logger,
	fetch watch.Fetcher,
	analyze watch.Analyzer,
	dispatch *notifier.Dispatcher,
	clock watch.Clock,
	defaultRecipient string,
) *Pipeline {
	return &Pipeline{
		log:              log.With(zap.String("component", "watcher.pipeline")),
		fetch:            fetch,
		analyze:          analyze,
		dispatch:         dispatch,
		clock:            clock,
		defaultRecipient: defaultRecipient,
	}
}

func (p *Pipeline) RunCheck(ctx context.Context, tgt *target.Target, state *ScheduleState) {
	tr := otel.Tracer("watcher")
	ctx, span := tr.Start(ctx, "watcher.check",
		trace.WithAttributes(
			attribute.String("target.id", tgt.ID),
			attribute.String("target.name", tgt.Name),
		),
	)
	defer span.End()

	mChecks.Inc()
	start := p.clock.Now()
	log := obs.WithTrace(ctx, p.log).With(zap.String("target", tgt.ID))

	// Completion is recorded no matter which stage the run reached.
	defer func() {
		state.RecordCheck(p.clock.Now().UTC())
		dur := p.clock.Now().Sub(start)
		mCheckDur.Observe(dur.Seconds())
		log.Info("check complete", zap.Duration("duration", dur))
	}()

	page, err := p.fetch.Fetch(ctx, tgt.URL)
	if err != nil {
		mFetchErrors.Inc()
		span.RecordError(err)
		log.Warn("fetch failed, check aborted",
			zap.Duration("duration", p.clock.Now().Sub(start)),
			zap.Error(err),
		)
		return
	}

	res, err := p.analyze.Analyze(ctx, page.Text, tgt.Name, tgt.Instructions)
	if err != nil {
		// A failed analysis must never crash the loop: degrade to not-met.
		mAnalyzeErrors.Inc()
		span.RecordError(err)
		log.Warn("analysis failed, treating condition as not met", zap.Error(err))
		res = &watch.CheckResult{
			Available: false,
			Summary:   fmt.Sprintf("Analysis failed due to error: %v", err),
		}
	}

	span.SetAttributes(attribute.Bool("check.available", res.Available))

	if !res.Available {
		log.Debug("condition not met", zap.String("summary", res.Summary))
		return
	}

	sections := res.OpenSectionIDs()
	mConditionMet.Inc()
	log.Info("condition met",
		zap.Strings("sections", sections),
		zap.String("summary", res.Summary),
	)

	recipients := tgt.Recipients
	if len(recipients) == 0 {
		recipients = []string{p.defaultRecipient}
	}
	outcomes := p.dispatch.SendAlert(ctx, recipients, notifier.Alert{
		TargetName: tgt.Name,
		URL:        tgt.URL,
		Sections:   sections,
		Template:   tgt.Template,
	})

	delivered := 0
	for _, o := range outcomes {
		if o.Success {
			delivered++
		}
	}
	log.Info("notifications dispatched",
		zap.Int("delivered", delivered),
		zap.Int("failed", len(outcomes)-delivered),
	)
}
