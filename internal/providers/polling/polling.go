// Package polling provides the bounded fixed-delay wait used by submit/poll
// provider clients. The sleep is injectable so loops can be tested without a
// real clock.
package polling

import (
	"context"
	"errors"
	"time"
)

// ErrExhausted is returned when the attempt cap is reached before the
// condition reports done.
var ErrExhausted = errors.New("polling: attempts exhausted")

// SleepFunc pauses for d or returns early with the context's error.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc backed by a real timer.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Config parameterizes one wait: the fixed interval between attempts and the
// hard attempt cap.
type Config struct {
	Interval    time.Duration
	MaxAttempts int
	Sleep       SleepFunc
}

// Wait sleeps Interval, then invokes fn, repeating until fn reports done,
// fn returns an error, or MaxAttempts is reached. The attempt counter never
// resets, whatever status churn fn observes in between. attempt is 1-based.
func Wait(ctx context.Context, cfg Config, fn func(ctx context.Context, attempt int) (bool, error)) error {
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := sleep(ctx, cfg.Interval); err != nil {
			return err
		}
		done, err := fn(ctx, attempt)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return ErrExhausted
}
