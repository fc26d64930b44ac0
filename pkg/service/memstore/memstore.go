package memstore

import (
	"context"
	"maps"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/briareos/pkg/domain/interfaces"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/service/embedding"
	"github.com/secmon-lab/briareos/pkg/utils/logging"
)

const defaultMaxFacts = 5

// Store is the scoped semantic memory backed by the repository's memory
// entries. Interactions are condensed into facts by the LLM when one is set.
type Store struct {
	repo      interfaces.Repository
	embedder  *embedding.Embedder
	llmClient gollem.LLMClient
	maxFacts  int
}

var _ interfaces.MemoryStore = &Store{}

type Option func(*Store)

// WithFactExtractor enables LLM fact extraction on AddInteraction
func WithFactExtractor(llmClient gollem.LLMClient) Option {
	return func(s *Store) {
		s.llmClient = llmClient
	}
}

func WithMaxFacts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxFacts = n
		}
	}
}

func New(repo interfaces.Repository, embedder *embedding.Embedder, opts ...Option) *Store {
	s := &Store{
		repo:     repo,
		embedder: embedder,
		maxFacts: defaultMaxFacts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns the entries of scope closest to query, most similar first
func (s *Store) Search(ctx context.Context, query string, scope model.MemoryScope, limit int) ([]model.MemoryHit, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed memory query", goerr.V("scope", scope))
	}

	entries, err := s.repo.MemoryEntry().FindByEmbedding(ctx, scope, vec, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search memory entries", goerr.V("scope", scope))
	}

	hits := make([]model.MemoryHit, 0, len(entries))
	for _, e := range entries {
		score := similarity(vec, e.Embedding)
		hits = append(hits, toHit(e, &score))
	}
	return hits, nil
}

// ListAll returns the entries of scope newest first without ranking
func (s *Store) ListAll(ctx context.Context, scope model.MemoryScope, limit int) ([]model.MemoryHit, error) {
	entries, err := s.repo.MemoryEntry().List(ctx, scope, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list memory entries", goerr.V("scope", scope))
	}

	hits := make([]model.MemoryHit, 0, len(entries))
	for _, e := range entries {
		hits = append(hits, toHit(e, nil))
	}
	return hits, nil
}

// AddInteraction stores what is worth remembering from a conversation.
// Extracted facts become one entry each; without an extractor, or when
// extraction yields nothing, the condensed conversation is stored instead.
func (s *Store) AddInteraction(ctx context.Context, scope model.MemoryScope, messages []model.Message, metadata map[string]any) error {
	if len(messages) == 0 {
		return nil
	}

	var texts []string
	if s.llmClient != nil {
		facts, err := s.extractFacts(ctx, messages)
		if err != nil {
			logging.From(ctx).Warn("memory fact extraction failed, storing raw interaction",
				"scope", scope,
				"error", err,
			)
		}
		texts = facts
	}
	if len(texts) == 0 {
		texts = []string{condense(messages)}
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return goerr.Wrap(err, "failed to embed memory entries", goerr.V("scope", scope))
	}

	for i, text := range texts {
		entry := &model.MemoryEntry{
			Scope:     scope,
			Text:      text,
			Metadata:  maps.Clone(metadata),
			Embedding: vectors[i],
		}
		if _, err := s.repo.MemoryEntry().Create(ctx, entry); err != nil {
			return goerr.Wrap(err, "failed to store memory entry",
				goerr.V("scope", scope),
				goerr.V("index", i))
		}
	}

	logging.From(ctx).Debug("memory entries stored",
		"scope", scope,
		"count", len(texts),
	)
	return nil
}

func toHit(e *model.MemoryEntry, score *float64) model.MemoryHit {
	meta := maps.Clone(e.Metadata)
	if meta == nil {
		meta = map[string]any{}
	}
	return model.MemoryHit{
		Memory:   e.Text,
		Score:    score,
		Metadata: meta,
	}
}
