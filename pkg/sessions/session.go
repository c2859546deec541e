// Package sessions owns the interactive search sessions served by the
// gateway. Each session wires a debounced query stream into a fetch
// coordinator: keystrokes settle before a fetch is issued, page changes
// fetch immediately, and only the latest trigger's result reaches state.
package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/searchd-io/searchd/pkg/common"
	"github.com/searchd-io/searchd/pkg/debounce"
	"github.com/searchd-io/searchd/pkg/fetch"
	"github.com/searchd-io/searchd/pkg/sources"
	"github.com/searchd-io/searchd/pkg/types"
)

// queryKey is the trigger key for a session's coordinator. Any change to
// either field supersedes the fetch in flight.
type queryKey struct {
	Query string
	Page  int
}

// Session is one client's interactive search subscription.
type Session struct {
	Id string

	debouncer   *debounce.Debouncer[string]
	coordinator *fetch.Coordinator[queryKey, *types.SearchResponse]

	mu        sync.Mutex
	query     string // last settled query
	page      int
	perPage   int
	lastInput time.Time
	closed    bool
}

func newSession(source sources.Source, cfg types.SearchConfig) *Session {
	s := &Session{
		Id:        common.GenerateSessionID(),
		perPage:   cfg.PerPage,
		lastInput: time.Now(),
	}

	fetcher := fetch.FetcherFunc[queryKey, *types.SearchResponse](
		func(ctx context.Context, key queryKey) (*types.SearchResponse, error) {
			return source.Search(ctx, types.SearchRequest{
				Query:   key.Query,
				Page:    key.Page,
				PerPage: s.perPage,
			})
		})

	s.coordinator = fetch.NewCoordinator[queryKey, *types.SearchResponse](fetcher, fetch.WithName(s.Id))
	s.debouncer = debounce.New(cfg.DebounceDelay, s.onSettledQuery)

	return s
}

// SetQuery feeds one keystroke-level query revision into the debouncer.
// Nothing is fetched until the stream stays quiet for the debounce delay.
func (s *Session) SetQuery(q string) {
	s.touch()
	s.debouncer.Set(q)
}

// SetPage changes the page for the settled query and fetches immediately.
// Paging is discrete input; it does not go through the debouncer.
func (s *Session) SetPage(page int) {
	s.touch()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.page = page
	key := queryKey{Query: s.query, Page: page}
	s.mu.Unlock()

	s.coordinator.Observe(key)
}

// State returns the current snapshot.
func (s *Session) State() fetch.Snapshot[*types.SearchResponse] {
	return s.coordinator.State()
}

// Updates returns the coordinator's latest-wins snapshot channel. A session
// feeds a single event stream; concurrent consumers would race for
// snapshots.
func (s *Session) Updates() <-chan fetch.Snapshot[*types.SearchResponse] {
	return s.coordinator.Updates()
}

// Close tears the session down: the pending debounce timer and the in-flight
// fetch are cancelled, and no state mutation can occur afterward.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.debouncer.Close()
	s.coordinator.Close()
}

// onSettledQuery runs when the query stream has been quiet for the delay.
// A new query always starts back at page zero.
func (s *Session) onSettledQuery(q string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.query = q
	s.page = 0
	s.mu.Unlock()

	s.coordinator.Observe(queryKey{Query: q, Page: 0})
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastInput = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastInput
}
