package sources

import (
	"context"
	"time"

	"github.com/searchd-io/searchd/pkg/types"
)

// MemorySource searches an in-process corpus. Used in local mode, as the
// seed corpus for the redis and postgres backends, and in tests. Latency
// can be set to simulate a slow transport.
type MemorySource struct {
	docs    []types.SearchDocument
	latency time.Duration
}

func NewMemorySource(docs []types.SearchDocument) *MemorySource {
	return &MemorySource{docs: docs}
}

// WithLatency returns the source with simulated per-request latency.
func (s *MemorySource) WithLatency(d time.Duration) *MemorySource {
	s.latency = d
	return s
}

func (s *MemorySource) Name() string {
	return "memory"
}

func (s *MemorySource) Search(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error) {
	if s.latency > 0 {
		select {
		case <-time.After(s.latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return rankAndPage(s.docs, req), nil
}

// DefaultCorpus is the demo corpus served in local mode.
func DefaultCorpus() []types.SearchDocument {
	return []types.SearchDocument{
		{Id: "doc-001", Title: "Getting started with searchd", Body: "Install the gateway, point it at a source and start typing."},
		{Id: "doc-002", Title: "Debouncing keystroke streams", Body: "Why the gateway waits for your input to settle before fetching."},
		{Id: "doc-003", Title: "Cancellation and stale results", Body: "How overlapping fetches are resolved so only the latest query wins."},
		{Id: "doc-004", Title: "Configuring the redis backend", Body: "Document hashes, the index set and connection settings."},
		{Id: "doc-005", Title: "Configuring the postgres backend", Body: "Schema, migrations and the ILIKE ranking query."},
		{Id: "doc-006", Title: "Session lifecycle", Body: "Sessions are created per client, reaped when idle and torn down on disconnect."},
		{Id: "doc-007", Title: "Server-sent events", Body: "State snapshots stream to the client as they settle."},
		{Id: "doc-008", Title: "John Backus and FORTRAN", Body: "A short history of the first widely used high-level language."},
		{Id: "doc-009", Title: "Kepler's laws of planetary motion", Body: "Three empirical laws, named for John Kepler."},
		{Id: "doc-010", Title: "Pagination", Body: "Page changes retrigger fetches without debouncing."},
		{Id: "doc-011", Title: "Caching and request coalescing", Body: "Identical concurrent queries hit the backend once."},
		{Id: "doc-012", Title: "Error taxonomy", Body: "Transport and decode failures surface to clients; cancellations never do."},
	}
}
