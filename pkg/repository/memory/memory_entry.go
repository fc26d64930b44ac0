package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/utils/vector"
)

type memoryEntryRepository struct {
	mu      sync.RWMutex
	entries map[model.MemoryScope]map[model.MemoryEntryID]*model.MemoryEntry
}

func newMemoryEntryRepository() *memoryEntryRepository {
	return &memoryEntryRepository{
		entries: make(map[model.MemoryScope]map[model.MemoryEntryID]*model.MemoryEntry),
	}
}

func copyMemoryEntry(m *model.MemoryEntry) *model.MemoryEntry {
	copied := &model.MemoryEntry{
		ID:        m.ID,
		Scope:     m.Scope,
		Text:      m.Text,
		Metadata:  maps.Clone(m.Metadata),
		CreatedAt: m.CreatedAt,
	}
	if m.Embedding != nil {
		copied.Embedding = make([]float32, len(m.Embedding))
		copy(copied.Embedding, m.Embedding)
	}
	return copied
}

func (r *memoryEntryRepository) Create(ctx context.Context, entry *model.MemoryEntry) (*model.MemoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, exists := r.entries[entry.Scope]
	if !exists {
		bucket = make(map[model.MemoryEntryID]*model.MemoryEntry)
		r.entries[entry.Scope] = bucket
	}

	created := copyMemoryEntry(entry)
	if created.ID == "" {
		created.ID = model.NewMemoryEntryID()
	}
	created.CreatedAt = time.Now().UTC()

	bucket[created.ID] = created
	return copyMemoryEntry(created), nil
}

func (r *memoryEntryRepository) List(ctx context.Context, scope model.MemoryScope, limit int) ([]*model.MemoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.entries[scope]
	result := make([]*model.MemoryEntry, 0, len(bucket))
	for _, m := range bucket {
		result = append(result, copyMemoryEntry(m))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *memoryEntryRepository) FindByEmbedding(ctx context.Context, scope model.MemoryScope, embedding []float32, limit int) ([]*model.MemoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		entry *model.MemoryEntry
		score float64
	}

	var candidates []scored
	for _, m := range r.entries[scope] {
		if len(m.Embedding) == 0 {
			continue
		}
		candidates = append(candidates, scored{
			entry: copyMemoryEntry(m),
			score: vector.CosineSimilarity(embedding, m.Embedding),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}

	result := make([]*model.MemoryEntry, limit)
	for i := 0; i < limit; i++ {
		result[i] = candidates[i].entry
	}

	return result, nil
}
