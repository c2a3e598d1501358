// Package retry retries operations that fail with a retryable classified error.
package retry

import (
	"context"
	"time"

	"git.home.luguber.info/inful/jbuild/internal/config"
	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

// Policy is the upload retry schedule.
type Policy struct {
	Mode       config.RetryBackoffMode
	Initial    time.Duration
	Max        time.Duration
	MaxRetries int // retries after the first attempt
}

// DefaultPolicy is linear backoff from 1s, capped at 30s, with 2 retries.
func DefaultPolicy() Policy {
	return Policy{Mode: config.RetryBackoffLinear, Initial: time.Second, Max: 30 * time.Second, MaxRetries: 2}
}

// NewPolicy overlays the given values on DefaultPolicy. Non-positive
// durations, negative retries and unknown modes keep the default; an
// initial delay above the cap is clamped.
func NewPolicy(mode config.RetryBackoffMode, initial, maxDelay time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if mode != "" && config.NormalizeRetryBackoff(string(mode)) == mode {
		p.Mode = mode
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDelay > 0 {
		p.Max = maxDelay
	}
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	p.Initial = min(p.Initial, p.Max)
	return p
}

// FromConfig builds a policy from the publish retry block. Durations are
// validated when the build file loads, so parse errors mean "unset".
func FromConfig(rc config.RetryConfig) Policy {
	initial, _ := time.ParseDuration(rc.Initial)
	maxDelay, _ := time.ParseDuration(rc.Max)
	return NewPolicy(config.NormalizeRetryBackoff(string(rc.Backoff)), initial, maxDelay, rc.MaxRetries)
}

// Delay is the wait before retry n (the first retry is 1).
func (p Policy) Delay(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case config.RetryBackoffFixed:
		d = p.Initial
	case config.RetryBackoffExponential:
		d = p.Initial << min(n-1, 30)
	default:
		d = p.Initial * time.Duration(n)
	}
	return min(d, p.Max)
}

// Do calls fn until it succeeds or fails with an error that is not a
// retryable ClassifiedError, or the retry budget runs out. fn receives the
// attempt number, 0 for the first call.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error) error {
	var err error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			if werr := wait(ctx, p.Delay(attempt)); werr != nil {
				return werr
			}
		}
		if err = fn(attempt); err == nil {
			return nil
		}
		if ce, ok := errors.AsClassified(err); !ok || !ce.CanRetry() {
			return err
		}
	}
	return err
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
