package utils

import (
	"context"
	"time"
)

// RetryPolicy retries an operation up to MaxAttempts times with exponential
// backoff (BaseDelay, then doubled before each further attempt). One policy is
// shared by the mailer and the client submitter so the backoff behavior stays
// consistent everywhere it is needed.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Do runs op until it succeeds or attempts are exhausted, returning the last
// error. Waits respect ctx cancellation.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.BaseDelay

	var err error
	for attempt := 1; ; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt >= attempts {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
		delay *= 2
	}
}
