package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxAttempts is the total number of transport invocations
	// allowed for one blocking call.
	DefaultMaxAttempts = 3
	// DefaultInitialInterval is the wait floor before the first retry.
	DefaultInitialInterval = 1 * time.Second
	// DefaultMaxInterval is the wait ceiling for any single retry.
	DefaultMaxInterval = 30 * time.Second
	// DefaultMultiplier is the exponential growth factor between waits.
	DefaultMultiplier = 2.0
	// DefaultRandomizationFactor is the jitter applied to each wait.
	DefaultRandomizationFactor = 0.2
)

// RetryPolicy governs retries of a single blocking transport call.
// Transient errors are retried with exponential backoff up to MaxAttempts
// total invocations; non-transient errors propagate immediately. Streaming
// calls never use a RetryPolicy.
type RetryPolicy struct {
	MaxAttempts         uint64
	InitialInterval     time.Duration
	MaxInterval         time.Duration
	Multiplier          float64
	RandomizationFactor float64
}

// DefaultRetryPolicy returns the standard policy: 3 attempts, waits doubling
// from 1s capped at 30s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:         DefaultMaxAttempts,
		InitialInterval:     DefaultInitialInterval,
		MaxInterval:         DefaultMaxInterval,
		Multiplier:          DefaultMultiplier,
		RandomizationFactor: DefaultRandomizationFactor,
	}
}

// newBackOff builds the context-aware backoff schedule for one call.
func (p RetryPolicy) newBackOff(ctx context.Context) backoff.BackOffContext {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialInterval
	eb.MaxInterval = p.MaxInterval
	eb.Multiplier = p.Multiplier
	eb.RandomizationFactor = p.RandomizationFactor
	// Bounded by attempt count, not wall clock.
	eb.MaxElapsedTime = 0
	eb.Reset()

	attempts := p.MaxAttempts
	if attempts == 0 {
		attempts = DefaultMaxAttempts
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, attempts-1), ctx)
}

// Run invokes op, retrying transient failures per the policy. Non-transient
// errors are returned immediately; once attempts are exhausted the last
// error is returned unmodified.
func (p RetryPolicy) Run(ctx context.Context, log zerolog.Logger, op func() error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !IsRetryableError(err) {
			return backoff.Permanent(err)
		}
		evt := log.Warn().Int("attempt", attempt).Err(err)
		if retryAfter := ExtractRetryAfter(err); retryAfter != nil {
			evt = evt.Dur("retry_after", *retryAfter)
		}
		evt.Msg("Transient provider error, will retry")
		return err
	}
	// backoff.Retry unwraps Permanent errors, so the caller always sees the
	// original error kind.
	return backoff.Retry(operation, p.newBackOff(ctx))
}
