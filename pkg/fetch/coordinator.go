package fetch

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/searchd-io/searchd/pkg/common"
)

// attempt represents one fetch in flight. Currency is decided by pointer
// identity against the coordinator's current slot; the id only appears in
// debug logs.
type attempt struct {
	id     string
	cancel context.CancelFunc
}

// Coordinator owns at most one outstanding fetch attempt. Observe cancels
// the previous attempt and starts a new one; a completion mutates the
// snapshot only if its attempt is still current.
type Coordinator[K comparable, T any] struct {
	name    string
	fetcher Fetcher[K, T]
	base    context.Context

	mu      sync.Mutex
	current *attempt
	snap    Snapshot[T]
	updates chan Snapshot[T]
	closed  bool

	// counters for tests and debug logging
	staleDiscards    uint64
	cancelledCurrent uint64
}

type coordinatorOptions struct {
	name string
	base context.Context
}

type CoordinatorOption func(*coordinatorOptions)

// WithName sets the name used in debug log lines.
func WithName(name string) CoordinatorOption {
	return func(o *coordinatorOptions) {
		o.name = name
	}
}

// WithBaseContext sets the parent context for attempt contexts. Cancelling
// it aborts the in-flight attempt, but only Close freezes the snapshot.
func WithBaseContext(ctx context.Context) CoordinatorOption {
	return func(o *coordinatorOptions) {
		o.base = ctx
	}
}

// NewCoordinator creates a coordinator around fetcher. The current attempt
// slot starts populated with a no-op attempt so the first Observe has
// something valid to cancel.
func NewCoordinator[K comparable, T any](fetcher Fetcher[K, T], opts ...CoordinatorOption) *Coordinator[K, T] {
	options := &coordinatorOptions{
		name: "coordinator",
		base: context.Background(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Coordinator[K, T]{
		name:    options.name,
		fetcher: fetcher,
		base:    options.base,
		current: &attempt{id: "init", cancel: func() {}},
		updates: make(chan Snapshot[T], 1),
	}
}

// Observe reacts to a new trigger key: the prior attempt is cancelled, a
// fresh attempt becomes current, Loading is set and the fetch starts.
func (c *Coordinator[K, T]) Observe(key K) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.current.cancel()

	ctx, cancel := context.WithCancel(c.base)
	att := &attempt{id: common.GenerateAttemptID(), cancel: cancel}
	c.current = att

	c.snap.Loading = true
	c.snap.Err = nil
	c.publishLocked()
	c.mu.Unlock()

	go func() {
		data, err := c.fetcher.Fetch(ctx, key)
		c.complete(ctx, att, data, err)
	}()
}

// State returns the current snapshot.
func (c *Coordinator[K, T]) State() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Updates returns a latest-wins channel of snapshots. The channel holds at
// most one element; an unread snapshot is replaced when a newer one lands.
// It is closed by Close.
func (c *Coordinator[K, T]) Updates() <-chan Snapshot[T] {
	return c.updates
}

// Close cancels the in-flight attempt and freezes the snapshot. Late
// completions after Close mutate nothing.
func (c *Coordinator[K, T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.current.cancel()
	c.snap.Loading = false
	close(c.updates)
}

func (c *Coordinator[K, T]) complete(ctx context.Context, att *attempt, data T, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || att != c.current {
		// Superseded attempt: discard unconditionally, success or not.
		c.staleDiscards++
		log.Debug().
			Str("coordinator", c.name).
			Str("attempt", att.id).
			Msg("discarding stale fetch completion")
		return
	}

	switch classify(ctx, err) {
	case OutcomeCancelled:
		// Only the non-current attempt ever gets cancelled, so reaching
		// here means the fetcher fabricated a cancellation. Treat it as a
		// no-op completion, not an error.
		c.cancelledCurrent++
		log.Debug().
			Str("coordinator", c.name).
			Str("attempt", att.id).
			Msg("current attempt reported cancelled")
	case OutcomeSuccess:
		c.snap.Data = data
		c.snap.Loading = false
		c.snap.Err = nil
		c.publishLocked()
	case OutcomeFailure:
		// Keep prior Data visible alongside the error.
		c.snap.Err = err
		c.snap.Loading = false
		c.publishLocked()
	}
}

// publishLocked pushes the snapshot to the updates channel, displacing an
// unread older snapshot. Callers hold c.mu, so sends never race each other.
func (c *Coordinator[K, T]) publishLocked() {
	select {
	case c.updates <- c.snap:
	default:
		select {
		case <-c.updates:
		default:
		}
		select {
		case c.updates <- c.snap:
		default:
		}
	}
}
