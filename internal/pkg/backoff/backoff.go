// Package backoff provides the delay schedule used when pacing and retrying
// outbound mail sends.
package backoff

import (
	"context"
	"time"
)

const (
	// BaseDelay is the attempt-0 delay. It doubles per attempt.
	BaseDelay = 500 * time.Millisecond
	// MaxDelay caps the exponential growth.
	MaxDelay = 10 * time.Second
)

// Delay returns the backoff duration for the given attempt number.
// Attempt 0 is BaseDelay; each further attempt doubles it, capped at MaxDelay.
func Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= MaxDelay {
			return MaxDelay
		}
	}
	return d
}

// Sleeper abstracts the wait between sends so tests never sleep for real.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration)
}

// TimerSleeper waits on a real timer, returning early if ctx is done.
type TimerSleeper struct{}

func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
