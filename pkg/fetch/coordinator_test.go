package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchd-io/searchd/pkg/types"
)

// slowFetcher returns key-specific results after key-specific delays,
// honoring context cancellation like a real transport.
type slowFetcher struct {
	delays  map[string]time.Duration
	results map[string]string
	errs    map[string]error
}

func (f *slowFetcher) Fetch(ctx context.Context, key string) (string, error) {
	delay := f.delays[key]
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if err, ok := f.errs[key]; ok {
		return "", err
	}
	return f.results[key], nil
}

func waitSettled[K comparable, T any](t *testing.T, c *Coordinator[K, T]) Snapshot[T] {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("coordinator never settled")
		case <-time.After(5 * time.Millisecond):
		}
		if snap := c.State(); !snap.Loading {
			return snap
		}
	}
}

func TestLatestKeyWinsRegardlessOfCompletionOrder(t *testing.T) {
	fetcher := &slowFetcher{
		delays:  map[string]time.Duration{"A": 50 * time.Millisecond, "B": 20 * time.Millisecond},
		results: map[string]string{"A": "results-for-A", "B": "results-for-B"},
	}
	c := NewCoordinator[string, string](fetcher)
	defer c.Close()

	c.Observe("A")
	time.Sleep(10 * time.Millisecond)
	c.Observe("B") // B finishes first; A would land later if not cancelled

	snap := waitSettled(t, c)
	assert.Equal(t, "results-for-B", snap.Data)
	assert.NoError(t, snap.Err)

	// Give A's (cancelled) completion time to arrive and be discarded.
	time.Sleep(100 * time.Millisecond)

	snap = c.State()
	assert.Equal(t, "results-for-B", snap.Data)
	assert.False(t, snap.Loading)

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Equal(t, uint64(1), c.staleDiscards, "A's completion should have been discarded")
	assert.Equal(t, uint64(0), c.cancelledCurrent, "a current attempt must never observe cancellation")
}

func TestFailurePreservesPriorData(t *testing.T) {
	transportErr := &types.ErrSearchTransport{Endpoint: "upstream", Err: errors.New("connection refused")}
	fetcher := &slowFetcher{
		delays:  map[string]time.Duration{},
		results: map[string]string{"good": "good-data", "recovered": "fresh-data"},
		errs:    map[string]error{"bad": transportErr},
	}
	c := NewCoordinator[string, string](fetcher)
	defer c.Close()

	c.Observe("good")
	snap := waitSettled(t, c)
	require.Equal(t, "good-data", snap.Data)

	c.Observe("bad")
	snap = waitSettled(t, c)
	assert.Equal(t, "good-data", snap.Data, "failed refresh must not clear prior data")
	require.Error(t, snap.Err)
	assert.True(t, (&types.ErrSearchTransport{}).From(snap.Err))

	c.Observe("recovered")
	snap = waitSettled(t, c)
	assert.Equal(t, "fresh-data", snap.Data)
	assert.NoError(t, snap.Err, "a subsequent success clears the error")
}

func TestFirstObserveCancelsSafely(t *testing.T) {
	fetcher := &slowFetcher{
		delays:  map[string]time.Duration{},
		results: map[string]string{"only": "only-data"},
	}
	c := NewCoordinator[string, string](fetcher)
	defer c.Close()

	// The current slot starts with a no-op attempt; this must not panic.
	c.Observe("only")

	snap := waitSettled(t, c)
	assert.Equal(t, "only-data", snap.Data)
}

func TestCloseFreezesSnapshot(t *testing.T) {
	fetcher := &slowFetcher{
		delays:  map[string]time.Duration{"slow": 30 * time.Millisecond},
		results: map[string]string{"slow": "too-late"},
	}
	c := NewCoordinator[string, string](fetcher)

	c.Observe("slow")
	c.Close()

	frozen := c.State()

	// Let the (cancelled) fetch complete after disposal.
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, frozen, c.State(), "no state mutation after Close")
	assert.False(t, c.State().Loading, "loading must not stay stuck after disposal")
}

func TestBaseContextCancellationAbortsAttempt(t *testing.T) {
	base, cancelBase := context.WithCancel(context.Background())
	fetcher := &slowFetcher{
		delays:  map[string]time.Duration{"slow": time.Second},
		results: map[string]string{"slow": "never-delivered"},
	}
	c := NewCoordinator[string, string](fetcher, WithBaseContext(base))
	defer c.Close()

	c.Observe("slow")
	cancelBase()
	time.Sleep(50 * time.Millisecond)

	snap := c.State()
	assert.Empty(t, snap.Data)
	assert.NoError(t, snap.Err, "an aborted attempt is absorbed, not surfaced as an error")

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Equal(t, uint64(1), c.cancelledCurrent, "base-context abort reaches the current attempt as a cancellation")
}

func TestObserveAfterCloseIsNoop(t *testing.T) {
	fetcher := &slowFetcher{results: map[string]string{"x": "x-data"}}
	c := NewCoordinator[string, string](fetcher)
	c.Close()

	c.Observe("x")
	time.Sleep(50 * time.Millisecond)

	snap := c.State()
	assert.Empty(t, snap.Data)
	assert.False(t, snap.Loading)
}

func TestFabricatedCancellationIsAbsorbed(t *testing.T) {
	// A fetcher that reports cancellation for a live attempt. The
	// coordinator must treat it as a no-op completion, never as an error.
	fetcher := FetcherFunc[string, string](func(ctx context.Context, key string) (string, error) {
		return "", context.Canceled
	})
	c := NewCoordinator[string, string](fetcher)
	defer c.Close()

	c.Observe("anything")
	time.Sleep(50 * time.Millisecond)

	snap := c.State()
	assert.NoError(t, snap.Err, "cancellation is never user-visible")
	assert.Empty(t, snap.Data)

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Equal(t, uint64(1), c.cancelledCurrent)
}

func TestUpdatesChannelKeepsLatestSnapshot(t *testing.T) {
	fetcher := &slowFetcher{
		delays:  map[string]time.Duration{},
		results: map[string]string{"a": "a-data", "b": "b-data", "c": "c-data"},
	}
	c := NewCoordinator[string, string](fetcher)

	for _, key := range []string{"a", "b", "c"} {
		c.Observe(key)
		waitSettled(t, c)
	}

	// The channel holds one element; unread snapshots were displaced.
	var last Snapshot[string]
	for {
		select {
		case snap := <-c.Updates():
			last = snap
			continue
		default:
		}
		break
	}
	assert.Equal(t, "c-data", last.Data)

	c.Close()
	_, open := <-c.Updates()
	assert.False(t, open, "updates channel closes on Close")
}

func TestRapidObservesSettleOnLastKey(t *testing.T) {
	fetcher := &slowFetcher{
		delays: map[string]time.Duration{
			"k0": 40 * time.Millisecond,
			"k1": 30 * time.Millisecond,
			"k2": 20 * time.Millisecond,
			"k3": 5 * time.Millisecond,
		},
		results: map[string]string{
			"k0": "d0", "k1": "d1", "k2": "d2", "k3": "d3",
		},
	}
	c := NewCoordinator[string, string](fetcher)
	defer c.Close()

	for _, key := range []string{"k0", "k1", "k2", "k3"} {
		c.Observe(key)
	}

	waitSettled(t, c)
	time.Sleep(100 * time.Millisecond) // allow every stale completion to land

	snap := c.State()
	assert.Equal(t, "d3", snap.Data, "only the last trigger key's result may win")
	assert.NoError(t, snap.Err)

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Equal(t, uint64(0), c.cancelledCurrent)
}

func TestClassify(t *testing.T) {
	cancelledCtx, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want Outcome
	}{
		{"nil error", context.Background(), nil, OutcomeSuccess},
		{"context canceled", context.Background(), context.Canceled, OutcomeCancelled},
		{"wrapped canceled", context.Background(), errors.Join(errors.New("rpc"), context.Canceled), OutcomeCancelled},
		{"typed cancelled", context.Background(), &types.ErrSearchCancelled{}, OutcomeCancelled},
		{"swallowed ctx err", cancelledCtx, errors.New("transport closed"), OutcomeCancelled},
		{"deadline exceeded", context.Background(), context.DeadlineExceeded, OutcomeFailure},
		{"transport failure", context.Background(), &types.ErrSearchTransport{Endpoint: "x", Err: errors.New("refused")}, OutcomeFailure},
		{"decode failure", context.Background(), &types.ErrSearchDecode{Endpoint: "x", Err: errors.New("bad json")}, OutcomeFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.ctx, tt.err))
		})
	}
}
