// Package sources provides the search backends the gateway can fetch from.
package sources

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/searchd-io/searchd/pkg/types"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Source is a search backend. Implementations must honor ctx cancellation;
// the coordinator relies on it to abort superseded fetches promptly.
type Source interface {
	Name() string
	Search(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error)
}

// wrapBackendErr maps a backend error for outcome classification.
// Cancellation passes through untouched; everything else, deadline expiry
// included, is a transport failure. A caller-imposed timeout must surface
// as a failure, never be absorbed as a silent cancellation.
func wrapBackendErr(ctx context.Context, endpoint string, err error) error {
	if errors.Is(err, context.Canceled) || ctx.Err() == context.Canceled {
		return context.Canceled
	}
	return &types.ErrSearchTransport{Endpoint: endpoint, Err: err}
}

// scoreDocument ranks a document against a query. Title matches outrank
// body matches; a title prefix match ranks highest. Zero means no match.
func scoreDocument(doc types.SearchDocument, query string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	title := strings.ToLower(doc.Title)
	body := strings.ToLower(doc.Body)

	switch {
	case strings.HasPrefix(title, q):
		return 3.0
	case strings.Contains(title, q):
		return 2.0
	case strings.Contains(body, q):
		return 1.0
	}
	return 0
}

// rankAndPage scores docs against the request, sorts by score (ties broken
// by id for stable paging) and returns the requested page.
func rankAndPage(docs []types.SearchDocument, req types.SearchRequest) *types.SearchResponse {
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	page := req.Page
	if page < 0 {
		page = 0
	}

	var matched []types.SearchDocument
	for _, doc := range docs {
		if score := scoreDocument(doc, req.Query); score > 0 {
			doc.Score = score
			matched = append(matched, doc)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Score != matched[j].Score {
			return matched[i].Score > matched[j].Score
		}
		return matched[i].Id < matched[j].Id
	})

	total := len(matched)
	start := page * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	return &types.SearchResponse{
		Documents: matched[start:end],
		Total:     total,
		Page:      page,
	}
}
