// Package fetch coordinates overlapping asynchronous fetches so that only
// the attempt matching the latest trigger key is ever applied to observable
// state. Obsolete in-flight attempts are cancelled via their context;
// completions that lost the race are discarded.
package fetch

import (
	"context"
	"errors"

	"github.com/searchd-io/searchd/pkg/types"
)

// Fetcher is the abstract fetch capability. Implementations must honor ctx
// cancellation promptly, but correctness does not depend on it: a late
// completion for a superseded attempt is discarded by the coordinator.
type Fetcher[K comparable, T any] interface {
	Fetch(ctx context.Context, key K) (T, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc[K comparable, T any] func(ctx context.Context, key K) (T, error)

func (f FetcherFunc[K, T]) Fetch(ctx context.Context, key K) (T, error) {
	return f(ctx, key)
}

// Outcome is the closed set of ways a fetch attempt can settle.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeCancelled:
		return "cancelled"
	}
	return "unknown"
}

// classify maps an attempt's result to an Outcome. Cancellation is detected
// from the error chain and the attempt context, never from error strings.
func classify(ctx context.Context, err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	if errors.Is(err, context.Canceled) {
		return OutcomeCancelled
	}
	if (&types.ErrSearchCancelled{}).From(err) {
		return OutcomeCancelled
	}
	// A fetcher may swallow ctx.Err and return its own error; the context
	// state is still authoritative for cancellation.
	if ctx.Err() == context.Canceled {
		return OutcomeCancelled
	}
	return OutcomeFailure
}

// Snapshot is the observable state of a coordinator. Err never holds a
// cancellation; Data survives a failed refresh so consumers don't flicker
// to empty.
type Snapshot[T any] struct {
	Data    T
	Loading bool
	Err     error
}
