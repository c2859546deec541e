package sources

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchd-io/searchd/pkg/common"
	"github.com/searchd-io/searchd/pkg/types"
)

func newRedisSourceForTest(t *testing.T) *RedisSource {
	t.Helper()

	s := miniredis.RunT(t)
	rdb, err := common.NewRedisClient(types.RedisConfig{
		Addrs: []string{s.Addr()},
		Mode:  types.RedisModeSingle,
	})
	require.NoError(t, err)

	return NewRedisSource(rdb)
}

func TestRedisSeedAndSearch(t *testing.T) {
	src := newRedisSourceForTest(t)
	ctx := context.Background()

	require.NoError(t, src.Seed(ctx, DefaultCorpus()))

	resp, err := src.Search(ctx, types.SearchRequest{Query: "redis"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "doc-004", resp.Documents[0].Id)
	assert.Equal(t, "Configuring the redis backend", resp.Documents[0].Title)
}

func TestRedisSearchEmptyIndex(t *testing.T) {
	src := newRedisSourceForTest(t)

	resp, err := src.Search(context.Background(), types.SearchRequest{Query: "anything"})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Total)
	assert.Empty(t, resp.Documents)
}

func TestRedisSeedIsIdempotent(t *testing.T) {
	src := newRedisSourceForTest(t)
	ctx := context.Background()

	require.NoError(t, src.Seed(ctx, DefaultCorpus()))
	require.NoError(t, src.Seed(ctx, DefaultCorpus()))

	resp, err := src.Search(ctx, types.SearchRequest{Query: "backend"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total, "reseeding must not duplicate documents")
}
