// Package retry wraps outbound calls with a bounded exponential backoff.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds how often and how soon a failed call is retried
type Policy struct {
	Retries         uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Once retries a failed call a single time after a short backoff
var Once = Policy{
	Retries:         1,
	InitialInterval: 300 * time.Millisecond,
	MaxInterval:     2 * time.Second,
}

// Do runs op until it succeeds or returns a permanent error, or the retries
// run out. It returns the last error from op, or ctx's error if ctx ends first.
func (p Policy) Do(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = 0

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, p.Retries), ctx))
}

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	return backoff.Permanent(err)
}
