package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure worth another attempt: a network error, a
// 5xx or a 429. After is the wait the server asked for, such as a rate-limit
// reset; when longer than the backoff delay it wins.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Policy controls how often and how patiently a call is retried.
type Policy struct {
	Attempts int           // total tries including the first, at least 1
	Delay    time.Duration // wait before the second try, doubled afterwards
	MaxDelay time.Duration // cap on any single wait, 0 for none

	// OnRetry, if set, is called before each wait with the number of the
	// attempt about to run (2 for the first retry).
	OnRetry func(attempt int, wait time.Duration, err error)
}

// DefaultPolicy tries three times from a one second delay. No single wait
// exceeds a minute, even when the server asks for more.
var DefaultPolicy = Policy{Attempts: 3, Delay: time.Second, MaxDelay: time.Minute}

// Do runs fn until it succeeds, returns an error that is not a
// [RetryableError], or runs out of attempts. It returns the last error,
// or ctx.Err() when ctx ends during a wait.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) || attempt == attempts {
			return err
		}

		wait := max(delay, re.After)
		if p.MaxDelay > 0 {
			wait = min(wait, p.MaxDelay)
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, wait, err)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
