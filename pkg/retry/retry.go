package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// ServiceAttempts is the attempt ceiling for control and broker service queries
	ServiceAttempts = 6

	// FileDeleteAttempts is the attempt ceiling for deleting a single file
	FileDeleteAttempts = 3
)

// Policy is a fixed-ceiling sleep-and-retry policy over a constant backoff:
// every failed attempt but the last is followed by the same holdoff.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first
	MaxAttempts int

	// Holdoff is the pause between attempts
	Holdoff time.Duration

	// Sleep replaces time.Sleep, mainly for tests
	Sleep func(time.Duration)
}

// ServicePolicy returns the policy used for service queries
func ServicePolicy(holdoff time.Duration) Policy {
	return Policy{
		MaxAttempts: ServiceAttempts,
		Holdoff:     holdoff,
	}
}

// FileDeletePolicy returns the policy used for file deletes
func FileDeletePolicy(holdoff time.Duration) Policy {
	return Policy{
		MaxAttempts: FileDeleteAttempts,
		Holdoff:     holdoff,
	}
}

// Result is the outcome of a retried operation
type Result struct {
	// Attempts is how many times the operation ran
	Attempts int

	// Err is the error of the last attempt, nil on success
	Err error

	// Duration is the wall time spent, including holdoffs
	Duration time.Duration
}

// OK reports whether the operation eventually succeeded
func (r Result) OK() bool {
	return r.Err == nil
}

// Do runs op until it succeeds or the attempt ceiling is reached. A canceled
// context stops the loop before the next attempt. onFailure, when not nil, is
// called after each failed attempt, including the last.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context, attempt int) error, onFailure func(attempt int, err error)) Result {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var policy backoff.BackOff = &backoff.StopBackOff{}
	if maxAttempts > 1 {
		policy = backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Holdoff), uint64(maxAttempts-1))
	}
	b := backoff.WithContext(policy, ctx)

	var timer backoff.Timer
	if p.Sleep != nil {
		timer = newSleepTimer(p.Sleep)
	}

	start := time.Now()
	var res Result
	var lastErr error
	err := backoff.RetryNotifyWithTimer(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		res.Attempts++
		lastErr = op(ctx, res.Attempts)
		if lastErr != nil && onFailure != nil {
			onFailure(res.Attempts, lastErr)
		}
		return lastErr
	}, b, nil, timer)

	res.Err = err
	if err != nil && lastErr != nil && ctx.Err() != nil {
		res.Err = lastErr
	}
	res.Duration = time.Since(start)
	return res
}

// sleepTimer is a backoff.Timer that waits through an injected sleep function
type sleepTimer struct {
	sleep func(time.Duration)
	c     chan time.Time
}

func newSleepTimer(sleep func(time.Duration)) *sleepTimer {
	return &sleepTimer{sleep: sleep, c: make(chan time.Time, 1)}
}

func (t *sleepTimer) Start(d time.Duration) {
	if d > 0 {
		t.sleep(d)
	}
	select {
	case t.c <- time.Now():
	default:
	}
}

func (t *sleepTimer) Stop() {}

func (t *sleepTimer) C() <-chan time.Time {
	return t.c
}
