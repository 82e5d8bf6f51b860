// Package retry wraps cenkalti/backoff with the bounded and unbounded
// policies the consumers use.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy describes an exponential backoff schedule. MaxAttempts counts total
// tries including the first; zero means retry forever.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      float64
}

func (p Policy) backoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.MaxInterval = p.MaxDelay
	b.RandomizationFactor = p.Jitter
	b.Multiplier = 2
	return b
}

// Do runs fn under the policy until it succeeds, the attempts run out, or ctx
// is done. The returned error is the last error fn produced.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	op := func() (struct{}, error) {
		return struct{}{}, fn(ctx)
	}
	opts := []backoff.RetryOption{
		backoff.WithBackOff(p.backoff()),
		backoff.WithMaxElapsedTime(0),
	}
	if p.MaxAttempts > 0 {
		opts = append(opts, backoff.WithMaxTries(uint(p.MaxAttempts)))
	}
	_, err := backoff.Retry(ctx, op, opts...)
	return err
}
