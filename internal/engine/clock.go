package engine

import "sync/atomic"

// Clock is the monotonic admission clock. Every species and reaction
// admitted to the network is stamped with a strictly increasing sequence
// number, making admission order explicit in the output rather than implied
// by slice position. Replaying a run against its store checks these stamps.
//
// Thread-safety: atomic, though the generator's single-writer design means
// only one goroutine calls Next during a run.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and advances the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
