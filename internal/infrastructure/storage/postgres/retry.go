package postgres

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"docserial/internal/core/apperror"
	"docserial/pkg/logger"
)

// RetryPolicy bounds how often a unit of work is re-run after a transient conflict.
type RetryPolicy struct {
	// MaxAttempts counts the first run. Values below 1 mean 1.
	MaxAttempts int

	// InitialInterval and MaxInterval shape the exponential wait between attempts.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// Retryable classifies errors. Defaults to apperror.IsTransient.
	Retryable func(error) bool
}

// DefaultRetryPolicy returns 3 attempts in total with short jittered waits.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: 25 * time.Millisecond,
		MaxInterval:     250 * time.Millisecond,
		Retryable:       apperror.IsTransient,
	}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) retryable(err error) bool {
	if p.Retryable == nil {
		return apperror.IsTransient(err)
	}
	return p.Retryable(err)
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialInterval
	if p.MaxInterval > 0 {
		eb.MaxInterval = p.MaxInterval
	}
	eb.MaxElapsedTime = 0
	eb.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(p.attempts()-1)), ctx)
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// attempt budget is spent. The last error is returned unchanged.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempt := 0
	op := func() error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !p.retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.Debug(ctx, "retrying after transient storage error",
			"attempt", attempt,
			"max_attempts", p.attempts(),
			"wait", wait,
			"error", err,
		)
	}

	return backoff.RetryNotify(op, p.backOff(ctx), notify)
}
