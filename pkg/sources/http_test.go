package sources

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchd-io/searchd/pkg/types"
)

func TestHTTPSearchSuccess(t *testing.T) {
	backend := NewMemorySource(DefaultCorpus())

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/search", r.URL.Path)
		resp, err := backend.Search(r.Context(), types.SearchRequest{Query: r.URL.Query().Get("q")})
		require.NoError(t, err)
		json.NewEncoder(w).Encode(resp)
	}))
	defer ts.Close()

	src := NewHTTPSource(ts.URL, nil)

	resp, err := src.Search(context.Background(), types.SearchRequest{Query: "kepler"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "doc-009", resp.Documents[0].Id)
}

func TestHTTPSearchTransportFailure(t *testing.T) {
	src := NewHTTPSource("http://127.0.0.1:1", nil) // nothing listens here

	_, err := src.Search(context.Background(), types.SearchRequest{Query: "x"})
	require.Error(t, err)
	assert.True(t, (&types.ErrSearchTransport{}).From(err), "connection errors are transport failures, got %v", err)
}

func TestHTTPSearchBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	src := NewHTTPSource(ts.URL, nil)

	_, err := src.Search(context.Background(), types.SearchRequest{Query: "x"})
	require.Error(t, err)
	assert.True(t, (&types.ErrSearchTransport{}).From(err))
}

func TestHTTPSearchDecodeFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not json"))
	}))
	defer ts.Close()

	src := NewHTTPSource(ts.URL, nil)

	_, err := src.Search(context.Background(), types.SearchRequest{Query: "x"})
	require.Error(t, err)
	assert.True(t, (&types.ErrSearchDecode{}).From(err))
}

func TestHTTPSearchDeadlineSurfacesAsFailure(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(block)

	src := NewHTTPSource(ts.URL, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := src.Search(ctx, types.SearchRequest{Query: "x"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, context.Canceled), "a timeout must not be absorbed as a cancellation")
	assert.True(t, (&types.ErrSearchTransport{}).From(err))
}

func TestHTTPSearchCancellationPassesThrough(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(block)

	src := NewHTTPSource(ts.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := src.Search(ctx, types.SearchRequest{Query: "x"})
	assert.ErrorIs(t, err, context.Canceled, "cancellation must not be reported as a transport failure")
}
