// Package lock holds the squad lock state machine.
// This is part of the Functional Core - no I/O, state is derived from the
// stored expiry and a caller-supplied clock.
package lock

import (
	"fmt"
	"time"
)

// DefaultDuration is how long a squad lock lasts when no duration is given.
const DefaultDuration = 48 * time.Hour

// State is the derived squad lock state.
type State string

const (
	Unlocked State = "unlocked"
	Locked   State = "locked"
)

// StateAt derives the lock state from a stored expiry (unix seconds, 0 = none).
// A lock whose expiry has passed is unlocked without any write.
func StateAt(expiry int64, now time.Time) State {
	if expiry == 0 || expiry <= now.Unix() {
		return Unlocked
	}
	return Locked
}

// Remaining returns the time left on the lock, or 0 when unlocked.
func Remaining(expiry int64, now time.Time) time.Duration {
	if StateAt(expiry, now) == Unlocked {
		return 0
	}
	return time.Unix(expiry, 0).Sub(now)
}

// Acquire computes the expiry for a lock taken at now. A zero duration falls
// back to DefaultDuration.
func Acquire(now time.Time, d time.Duration) (int64, error) {
	if d < 0 {
		return 0, fmt.Errorf("lock duration must not be negative, got %s", d)
	}
	if d == 0 {
		d = DefaultDuration
	}
	expiry := now.Add(d).Unix()
	if expiry <= now.Unix() {
		// sub-second durations still lock for at least one second
		expiry = now.Unix() + 1
	}
	return expiry, nil
}

// Release returns the stored value of a cleared lock.
func Release() int64 {
	return 0
}
