// Package lock provides short-lived exclusive locks keyed by string. A lock
// is held by whoever inserted it until it is released or its TTL runs out.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrHeld is returned by Acquire when another owner holds the key.
var ErrHeld = errors.New("lock is held by another owner")

// ReleaseFunc gives the lock back. Releasing a lock that already expired and
// was taken by someone else is a no-op.
type ReleaseFunc func(ctx context.Context) error

type Locker interface {
	Acquire(ctx context.Context, key string) (ReleaseFunc, error)
}

// ItemKey is the key serializing booking creation for one item.
func ItemKey(itemID string) string {
	return fmt.Sprintf("booking_item_%s", itemID)
}

func newToken() string {
	return uuid.NewString()
}

func expiry(now time.Time, ttl time.Duration) time.Time {
	return now.Add(ttl).UTC().Truncate(time.Millisecond)
}
