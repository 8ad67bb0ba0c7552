package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"habitui/internal/habitica"
)

// BackoffPolicy bounds the retry behavior for remote calls. Rate limits
// get a generous budget because they resolve on their own; transient
// faults get a small one because persistent ones won't.
type BackoffPolicy struct {
	BaseDelay           time.Duration
	MaxDelay            time.Duration
	MaxRateLimitRetries int
	MaxTransientRetries int
}

// DefaultBackoffPolicy matches Habitica's 30-requests-per-minute limit:
// waits start at two seconds and double up to a minute.
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		BaseDelay:           2 * time.Second,
		MaxDelay:            60 * time.Second,
		MaxRateLimitRetries: 8,
		MaxTransientRetries: 3,
	}
}

// SleepFunc waits for d or until ctx is done. Injected so backoff tests
// run without real delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

func waitForRetry(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryState tracks one in-flight call's retry progress. Discarded on
// terminal success or failure.
type retryState struct {
	policy    BackoffPolicy
	rate      int
	transient int
}

// next classifies err after a failed attempt and returns the delay
// before the following attempt. A terminal error means no further
// attempts: the error is already mapped to the importer taxonomy.
func (s *retryState) next(err error) (time.Duration, error) {
	switch {
	case habitica.IsAuth(err):
		return 0, &AuthError{Err: err}
	case habitica.IsRateLimited(err):
		if s.rate >= s.policy.MaxRateLimitRetries {
			return 0, fmt.Errorf("%w: %v", ErrRateLimitExhausted, err)
		}
		delay := s.delay(s.rate, habitica.RetryAfter(err))
		s.rate++
		return delay, nil
	case habitica.IsTransient(err):
		if s.transient >= s.policy.MaxTransientRetries {
			return 0, err
		}
		delay := s.delay(s.transient, 0)
		s.transient++
		return delay, nil
	case errors.Is(err, context.Canceled):
		return 0, fmt.Errorf("%w: %v", ErrInterrupted, err)
	default:
		return 0, &RejectedError{Err: err}
	}
}

// delay computes base*2^attempt capped at MaxDelay. A server-provided
// Retry-After wins over the computed value but stays under the cap.
func (s *retryState) delay(attempt int, retryAfter time.Duration) time.Duration {
	d := s.policy.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= s.policy.MaxDelay {
			d = s.policy.MaxDelay
			break
		}
	}
	if retryAfter > 0 {
		d = retryAfter
	}
	if d > s.policy.MaxDelay {
		d = s.policy.MaxDelay
	}
	return d
}

// Retry issues fn until it succeeds, fails terminally, or ctx is
// cancelled mid-backoff. The interactive session routes its single-task
// calls through here so they share the submitter's backoff policy.
func Retry(ctx context.Context, policy BackoffPolicy, sleep SleepFunc, fn func() error) error {
	if sleep == nil {
		sleep = waitForRetry
	}
	state := retryState{policy: policy}
	for {
		err := fn()
		if err == nil {
			return nil
		}
		delay, terminal := state.next(err)
		if terminal != nil {
			return terminal
		}
		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			return fmt.Errorf("%w: %v", ErrInterrupted, sleepErr)
		}
	}
}
