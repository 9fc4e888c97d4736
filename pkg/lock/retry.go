package lock

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrWaitExpired is returned by a waiting locker when the key stayed held
// until the caller's deadline or the policy's MaxWait ran out.
var ErrWaitExpired = errors.New("timed out waiting for lock")

type RetryPolicy struct {
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	// MaxWait bounds the total wait. Zero waits until ctx is done.
	MaxWait time.Duration
}

func DefaultRetryPolicy(maxWait time.Duration) RetryPolicy {
	return RetryPolicy{
		InitialDelay:  5 * time.Millisecond,
		MaxDelay:      200 * time.Millisecond,
		BackoffFactor: 2,
		MaxWait:       maxWait,
	}
}

type waitingLocker struct {
	inner  Locker
	policy RetryPolicy
}

// WithRetry makes Acquire block while the key is held by someone else,
// polling with exponential backoff.
func WithRetry(inner Locker, policy RetryPolicy) Locker {
	if policy.InitialDelay <= 0 {
		policy.InitialDelay = DefaultRetryPolicy(0).InitialDelay
	}
	if policy.MaxDelay < policy.InitialDelay {
		policy.MaxDelay = policy.InitialDelay
	}
	if policy.BackoffFactor < 1 {
		policy.BackoffFactor = 1
	}
	return &waitingLocker{inner: inner, policy: policy}
}

func (l *waitingLocker) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	waitCtx := ctx
	if l.policy.MaxWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.policy.MaxWait)
		defer cancel()
	}

	delay := l.policy.InitialDelay
	for attempt := 1; ; attempt++ {
		release, err := l.inner.Acquire(waitCtx, key)
		if err == nil {
			return release, nil
		}
		if waitCtx.Err() != nil {
			return nil, fmt.Errorf("%w %s after %d attempts: %w", ErrWaitExpired, key, attempt, waitCtx.Err())
		}
		if !errors.Is(err, ErrHeld) {
			return nil, err
		}

		timer := time.NewTimer(delay)
		select {
		case <-waitCtx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w %s after %d attempts: %w", ErrWaitExpired, key, attempt, waitCtx.Err())
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * l.policy.BackoffFactor)
		if delay > l.policy.MaxDelay {
			delay = l.policy.MaxDelay
		}
	}
}
