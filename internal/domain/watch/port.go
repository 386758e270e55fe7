package watch

import (
	"context"
	"time"
)

// Fetcher retrieves a target page and reduces it to readable text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Analyzer decides whether a page satisfies the target's instructions.
type Analyzer interface {
	Analyze(ctx context.Context, text, name, instructions string) (*CheckResult, error)
}

// MessageChannel delivers one rendered message to one recipient and returns
// the provider's message id.
type MessageChannel interface {
	Send(ctx context.Context, recipient, text string) (string, error)
}

// Clock abstracts wall time so schedules and windows are testable.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
