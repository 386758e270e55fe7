package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// DefaultSendPolicy is the per-recipient delivery policy: 3 attempts with
// 2s, 4s backoff between them.
func DefaultSendPolicy(log *zap.Logger) Policy {
	return Policy{
		Name:     "notify_send",
		Attempts: 3,
		Backoff:  ExpoJitter{Base: 2 * time.Second},
		Retryable: func(err error) bool {
			return err != nil
		},
		OnAttempt: func(i int, err error) {
			if log != nil {
				log.Warn("send retry", zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil && !errors.Is(err, context.Canceled) {
				log.Error("send retries exhausted", zap.Error(err))
			}
		},
	}
}

// DefaultFetchPolicy covers the fetcher's internal attempts before a fetch
// failure surfaces to the pipeline.
func DefaultFetchPolicy(log *zap.Logger) Policy {
	return Policy{
		Name:     "page_fetch",
		Attempts: 3,
		Backoff:  ExpoJitter{Base: 2 * time.Second},
		OnAttempt: func(i int, err error) {
			if log != nil {
				log.Warn("fetch retry", zap.Int("attempt", i+1), zap.Error(err))
			}
		},
	}
}
