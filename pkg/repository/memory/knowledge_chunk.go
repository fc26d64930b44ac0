package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/utils/vector"
)

type knowledgeChunkRepository struct {
	mu     sync.RWMutex
	chunks map[model.KnowledgeChunkID]*model.KnowledgeChunk
}

func newKnowledgeChunkRepository() *knowledgeChunkRepository {
	return &knowledgeChunkRepository{
		chunks: make(map[model.KnowledgeChunkID]*model.KnowledgeChunk),
	}
}

// copyKnowledgeChunk creates a deep copy of a chunk
func copyKnowledgeChunk(k *model.KnowledgeChunk) *model.KnowledgeChunk {
	copied := *k
	if k.Embedding != nil {
		copied.Embedding = make([]float32, len(k.Embedding))
		copy(copied.Embedding, k.Embedding)
	}
	return &copied
}

func (r *knowledgeChunkRepository) Upsert(ctx context.Context, chunks []*model.KnowledgeChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, c := range chunks {
		stored := copyKnowledgeChunk(c)
		stored.CreatedAt = now
		r.chunks[stored.ID] = stored
	}
	return nil
}

func (r *knowledgeChunkRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chunks), nil
}

func (r *knowledgeChunkRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = make(map[model.KnowledgeChunkID]*model.KnowledgeChunk)
	return nil
}

func (r *knowledgeChunkRepository) FindByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*model.ScoredKnowledgeChunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := make([]*model.ScoredKnowledgeChunk, 0, len(r.chunks))
	for _, c := range r.chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		candidates = append(candidates, &model.ScoredKnowledgeChunk{
			Chunk:    copyKnowledgeChunk(c),
			Distance: vector.CosineDistance(embedding, c.Embedding),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Distance == candidates[j].Distance {
			return candidates[i].Chunk.ID < candidates[j].Chunk.ID
		}
		return candidates[i].Distance < candidates[j].Distance
	})

	if limit < len(candidates) {
		candidates = candidates[:limit]
	}
	return candidates, nil
}
