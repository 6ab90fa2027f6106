package supervisor

import "sync/atomic"

// Latch is a boolean that moves from false to true at most once.
// Any goroutine may read it; Done offers a non-blocking subscription.
type Latch struct {
	set  atomic.Bool
	done chan struct{}
}

// NewLatch returns an unset latch.
func NewLatch() *Latch {
	return &Latch{done: make(chan struct{})}
}

// Set flips the latch to true. It returns true only for the call that
// performed the transition.
func (l *Latch) Set() bool {
	if !l.set.CompareAndSwap(false, true) {
		return false
	}
	close(l.done)
	return true
}

// IsSet reports the current value.
func (l *Latch) IsSet() bool {
	return l.set.Load()
}

// Done returns a channel closed when the latch is set.
func (l *Latch) Done() <-chan struct{} {
	return l.done
}
