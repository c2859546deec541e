package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/searchd-io/searchd/pkg/types"
)

const (
	DefaultCacheTTL  = 30 * time.Second // DefaultCacheTTL is the default TTL for cached responses
	DefaultCacheSize = 10000            // DefaultCacheSize is the maximum number of cache entries
)

// CachedSource wraps a Source with an expirable LRU and request coalescing,
// so identical queries from concurrent sessions hit the backend once.
type CachedSource struct {
	inner   Source
	entries *expirable.LRU[string, *types.SearchResponse]

	// Singleflight for request coalescing
	group singleflight.Group
}

func NewCachedSource(inner Source, ttl time.Duration, maxSize int) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}

	return &CachedSource{
		inner:   inner,
		entries: expirable.NewLRU[string, *types.SearchResponse](maxSize, nil, ttl),
	}
}

func (c *CachedSource) Name() string {
	return c.inner.Name()
}

// cacheKey identifies one logical query
func cacheKey(req types.SearchRequest) string {
	return fmt.Sprintf("%s:%d:%d", req.Query, req.Page, req.PerPage)
}

func (c *CachedSource) Search(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error) {
	key := cacheKey(req)

	if resp, ok := c.entries.Get(key); ok {
		return resp, nil
	}

	// The flight is shared between coalesced callers, so it must not run on
	// any one caller's context: the first caller cancelling would fail every
	// waiter. Cancellation only detaches the caller from the flight.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		resp, err := c.inner.Search(fetchCtx, req)
		if err != nil {
			return nil, err
		}
		c.entries.Add(key, resp)
		return resp, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*types.SearchResponse), nil
	}
}
