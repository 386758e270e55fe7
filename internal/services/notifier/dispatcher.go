package notifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/testudo/seatwatch/internal/domain/watch"
	"github.com/testudo/seatwatch/internal/obs/retry"
)

var (
	mDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_delivered_total", Help: "Notifications delivered",
	})
	mFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_failed_total", Help: "Notifications that exhausted retries",
	})
	mFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_template_fallbacks_total", Help: "Custom templates that failed to render",
	})
)

// Dispatcher delivers one logical alert to every recipient concurrently,
// retrying each recipient independently. One recipient exhausting its
// retries never blocks or fails the others.
type Dispatcher struct {
	log    *zap.Logger
	ch     watch.MessageChannel
	clock  watch.Clock
	policy retry.Policy
}

func NewDispatcher(log *zap.Logger, ch watch.MessageChannel, clock watch.Clock) *Dispatcher {
	l := log.With(zap.String("component", "notifier"))
	return &Dispatcher{
		log:    l,
		ch:     ch,
		clock:  clock,
		policy: retry.DefaultSendPolicy(l),
	}
}

// WithPolicy replaces the per-recipient retry policy.
func (d *Dispatcher) WithPolicy(p retry.Policy) *Dispatcher {
	cp := *d
	cp.policy = p
	return &cp
}

// SendAlert fans the alert out to all recipients and returns one outcome per
// recipient, in input order. An outcome is produced even when the send
// machinery panics.
func (d *Dispatcher) SendAlert(ctx context.Context, recipients []string, alert Alert) []watch.NotificationOutcome {
	msg := d.render(alert)

	tr := otel.Tracer("notifier")
	ctx, span := tr.Start(ctx, "notifier.send_alert")
	span.SetAttributes(
		attribute.String("alert.target", alert.TargetName),
		attribute.Int("alert.recipients", len(recipients)),
	)
	defer span.End()

	outcomes := make([]watch.NotificationOutcome, len(recipients))
	var wg sync.WaitGroup
	for i, rcpt := range recipients {
		wg.Add(1)
		go func(i int, rcpt string) {
			defer wg.Done()
			outcomes[i] = d.sendOne(ctx, rcpt, msg)
		}(i, rcpt)
	}
	wg.Wait()

	delivered := 0
	for _, o := range outcomes {
		if o.Success {
			delivered++
		}
	}
	span.SetAttributes(attribute.Int("alert.delivered", delivered))
	d.log.Info("alert dispatched",
		zap.String("target", alert.TargetName),
		zap.Int("delivered", delivered),
		zap.Int("recipients", len(recipients)),
	)
	return outcomes
}

// Send is the single-recipient convenience path.
func (d *Dispatcher) Send(ctx context.Context, recipient string, alert Alert) watch.NotificationOutcome {
	return d.SendAlert(ctx, []string{recipient}, alert)[0]
}

func (d *Dispatcher) render(alert Alert) string {
	if alert.Template == "" {
		return defaultMessage(alert)
	}
	msg, err := renderTemplate(alert)
	if err != nil {
		mFallbacks.Inc()
		d.log.Warn("custom template failed, using default format",
			zap.String("target", alert.TargetName), zap.Error(err))
		return defaultMessage(alert)
	}
	return msg
}

func (d *Dispatcher) sendOne(ctx context.Context, recipient, msg string) (out watch.NotificationOutcome) {
	defer func() {
		if r := recover(); r != nil {
			mFailed.Inc()
			d.log.Error("send panicked", zap.String("recipient", recipient), zap.Any("panic", r))
			out = watch.NotificationOutcome{
				Recipient: recipient,
				Error:     fmt.Sprintf("send panicked: %v", r),
				SentAt:    d.clock.Now().UTC(),
			}
		}
	}()

	var msgID string
	res := retry.Execute(ctx, func() error {
		id, err := d.ch.Send(ctx, recipient, msg)
		if err != nil {
			return err
		}
		msgID = id
		return nil
	}, d.policy)

	out = watch.NotificationOutcome{
		Success:   res.Success,
		MessageID: msgID,
		Recipient: recipient,
		SentAt:    d.clock.Now().UTC(),
	}
	if res.Success {
		mDelivered.Inc()
	} else {
		mFailed.Inc()
		out.Error = res.Err.Error()
		d.log.Warn("delivery failed",
			zap.String("recipient", recipient),
			zap.Int("attempts", res.Attempts),
			zap.Error(res.Err),
		)
	}
	return out
}
