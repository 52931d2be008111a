package item

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds the retries of a failing directory move. The loop ends
// on whichever limit is hit first: MaxAttempts moves, or a wait that would
// push the total time past MaxElapsed.
type RetryPolicy struct {
	InitialInterval     time.Duration
	Multiplier          float64
	MaxInterval         time.Duration
	MaxElapsed          time.Duration
	MaxAttempts         int
	RandomizationFactor float64
}

// DefaultRetryPolicy waits 25ms, 50ms, 100ms, ... between attempts, for at
// most 8 attempts or 3s in total.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: 25 * time.Millisecond,
		Multiplier:      2,
		MaxInterval:     time.Second,
		MaxElapsed:      3 * time.Second,
		MaxAttempts:     8,
	}
}

// WithDefaults fills zero fields from DefaultRetryPolicy.
func (p RetryPolicy) WithDefaults() RetryPolicy {
	d := DefaultRetryPolicy()
	if p.InitialInterval <= 0 {
		p.InitialInterval = d.InitialInterval
	}
	if p.Multiplier < 1 {
		p.Multiplier = d.Multiplier
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = d.MaxInterval
	}
	if p.MaxElapsed <= 0 {
		p.MaxElapsed = d.MaxElapsed
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.RandomizationFactor < 0 || p.RandomizationFactor >= 1 {
		p.RandomizationFactor = d.RandomizationFactor
	}
	return p
}

// newBackOff returns a fresh backoff for one rename call. BackOff values are
// stateful and must not be shared between calls.
func (p RetryPolicy) newBackOff() backoff.BackOff {
	p = p.WithDefaults()
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialInterval
	eb.RandomizationFactor = p.RandomizationFactor
	eb.Multiplier = p.Multiplier
	eb.MaxInterval = p.MaxInterval
	eb.MaxElapsedTime = p.MaxElapsed
	eb.Reset()
	// WithMaxRetries counts retries, not attempts.
	return backoff.WithMaxRetries(eb, uint64(p.MaxAttempts-1))
}
