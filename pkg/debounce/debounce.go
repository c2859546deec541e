// Package debounce delays propagation of a changing value until it stops
// changing for a fixed interval.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delivers the most recent value passed to Set to fn once the
// value has stopped changing for the configured delay. Each Set cancels the
// previously scheduled delivery and only the latest value fires.
//
// Delivery is always asynchronous: even with a zero delay, fn runs on a
// timer goroutine, never inline from Set.
type Debouncer[T any] struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func(T)

	timer   *time.Timer
	pending T
	queued  bool
	gen     uint64 // generation counter; a fire only applies if gen matches
	closed  bool
}

// New creates a Debouncer that delivers settled values to fn.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		delay: delay,
		fn:    fn,
	}
}

// Set records v as the latest value and schedules its delivery after the
// current delay. Any previously scheduled delivery is cancelled.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	d.pending = v
	d.queued = true
	d.rescheduleLocked()
}

// SetDelay changes the quiescence delay. A pending delivery is rescheduled
// under the new delay, measured from now.
func (d *Debouncer[T]) SetDelay(delay time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.delay = delay
	if d.closed || !d.queued {
		return
	}
	d.rescheduleLocked()
}

// Delay returns the current quiescence delay.
func (d *Debouncer[T]) Delay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delay
}

// Close cancels any pending delivery. No delivery occurs after Close, even
// if a timer already fired and is waiting on the lock.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.gen++
	d.queued = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer[T]) rescheduleLocked() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(gen)
	})
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	// A Set, SetDelay or Close that won the race bumped the generation;
	// this fire is stale and must not deliver.
	if d.closed || gen != d.gen || !d.queued {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.queued = false
	d.timer = nil
	d.mu.Unlock()

	d.fn(v)
}
