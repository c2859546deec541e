package sources

import (
	"context"

	"github.com/searchd-io/searchd/pkg/common"
	"github.com/searchd-io/searchd/pkg/types"
)

// RedisSource searches documents stored as hashes with a set index of ids.
// Ranking happens client-side with the shared scorer; the corpus is assumed
// small enough that a full index scan per query is acceptable.
type RedisSource struct {
	rdb *common.RedisClient
}

func NewRedisSource(rdb *common.RedisClient) *RedisSource {
	return &RedisSource{rdb: rdb}
}

func (s *RedisSource) Name() string {
	return "redis"
}

// Seed stores docs, replacing any previous corpus entries with the same ids.
func (s *RedisSource) Seed(ctx context.Context, docs []types.SearchDocument) error {
	pipe := s.rdb.Pipeline()
	for _, doc := range docs {
		pipe.HSet(ctx, common.Keys.SearchDoc(doc.Id), map[string]any{
			"id":    doc.Id,
			"title": doc.Title,
			"body":  doc.Body,
		})
		pipe.SAdd(ctx, common.Keys.SearchIndex(), doc.Id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return &types.ErrSearchTransport{Endpoint: "redis", Err: err}
	}
	return nil
}

func (s *RedisSource) Search(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error) {
	ids, err := s.rdb.SMembers(ctx, common.Keys.SearchIndex()).Result()
	if err != nil {
		return nil, wrapBackendErr(ctx, "redis", err)
	}

	docs := make([]types.SearchDocument, 0, len(ids))
	for _, id := range ids {
		fields, err := s.rdb.HGetAll(ctx, common.Keys.SearchDoc(id)).Result()
		if err != nil {
			return nil, wrapBackendErr(ctx, "redis", err)
		}
		if len(fields) == 0 {
			continue // index entry without a hash, skip
		}
		docs = append(docs, types.SearchDocument{
			Id:    fields["id"],
			Title: fields["title"],
			Body:  fields["body"],
		})
	}

	return rankAndPage(docs, req), nil
}
