package sim

import "time"

// Waiter throttles a repeating action to at most once per interval.
type Waiter struct {
	interval time.Duration
	until    time.Time
}

// NewWaiter starts the first wait at now.
func NewWaiter(interval time.Duration, now time.Time) *Waiter {
	w := &Waiter{interval: interval}
	w.Reset(now)
	return w
}

// Done reports whether the wait has passed. When it has, the next wait starts
// at now.
func (w *Waiter) Done(now time.Time) bool {
	if !now.After(w.until) {
		return false
	}
	w.Reset(now)
	return true
}

// Reset starts a fresh wait at now.
func (w *Waiter) Reset(now time.Time) {
	w.until = now.Add(w.interval)
}
