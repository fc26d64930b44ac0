package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareos/pkg/domain/model"
)

func runKnowledgeChunkRepositoryTest(t *testing.T, newRepo repoFactory) {
	chunk := func(id string, idx int, axis int) *model.KnowledgeChunk {
		return &model.KnowledgeChunk{
			ID:         model.KnowledgeChunkID(id),
			Source:     "billing.md",
			ChunkIndex: idx,
			Content:    "content of " + id,
			Embedding:  unitVector(axis),
		}
	}

	t.Run("Upsert replaces by ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.KnowledgeChunk().Upsert(ctx, []*model.KnowledgeChunk{
			chunk("billing-0-aaaa", 0, 0),
			chunk("billing-1-bbbb", 1, 1),
		})).Required()

		count, err := repo.KnowledgeChunk().Count(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(2)

		replaced := chunk("billing-0-aaaa", 0, 0)
		replaced.Content = "updated"
		gt.NoError(t, repo.KnowledgeChunk().Upsert(ctx, []*model.KnowledgeChunk{replaced})).Required()

		count, err = repo.KnowledgeChunk().Count(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(2)

		hits, err := repo.KnowledgeChunk().FindByEmbedding(ctx, unitVector(0), 1)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(1)
		gt.Value(t, hits[0].Chunk.Content).Equal("updated")
	})

	t.Run("FindByEmbedding returns ascending distance", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.KnowledgeChunk().Upsert(ctx, []*model.KnowledgeChunk{
			chunk("a-0-1111", 0, 3),
			chunk("a-1-2222", 1, 4),
			chunk("a-2-3333", 2, 5),
		})).Required()

		query := unitVector(4)
		query[3] = 0.2
		hits, err := repo.KnowledgeChunk().FindByEmbedding(ctx, query, 3)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(3)
		gt.Value(t, string(hits[0].Chunk.ID)).Equal("a-1-2222")
		gt.Value(t, string(hits[1].Chunk.ID)).Equal("a-0-1111")
		gt.Bool(t, hits[0].Distance <= hits[1].Distance).True()
		gt.Bool(t, hits[1].Distance <= hits[2].Distance).True()
		gt.Value(t, hits[0].Chunk.Source).Equal("billing.md")
	})

	t.Run("empty collection returns no hits", func(t *testing.T) {
		repo := newRepo(t)
		hits, err := repo.KnowledgeChunk().FindByEmbedding(context.Background(), unitVector(0), 4)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(0)
	})

	t.Run("DeleteAll clears collection", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.KnowledgeChunk().Upsert(ctx, []*model.KnowledgeChunk{chunk("x-0-9999", 0, 0)})).Required()
		gt.NoError(t, repo.KnowledgeChunk().DeleteAll(ctx)).Required()

		count, err := repo.KnowledgeChunk().Count(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(0)
	})
}

func TestKnowledgeChunkRepository(t *testing.T) {
	runAllBackends(t, runKnowledgeChunkRepositoryTest)
}
