package knowledge

import (
	"context"
	"crypto/sha1" // #nosec G505 - content fingerprint for chunk IDs, not security
	"encoding/hex"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/interfaces"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/service/embedding"
	"github.com/secmon-lab/briareos/pkg/utils/logging"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 120
	DefaultTopK         = 4
)

// Service ingests knowledge-base documents and answers similarity queries
type Service struct {
	repo         interfaces.Repository
	embedder     *embedding.Embedder
	chunkSize    int
	chunkOverlap int
	topK         int
}

var _ interfaces.KnowledgeRetriever = &Service{}

// Option is a functional option for Service configuration
type Option func(*Service)

func WithChunking(size, overlap int) Option {
	return func(s *Service) {
		if size > 0 {
			s.chunkSize = size
		}
		if overlap >= 0 && overlap < s.chunkSize {
			s.chunkOverlap = overlap
		}
	}
}

// WithTopK sets the result count used when Search is called with topK < 1
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

func New(repo interfaces.Repository, embedder *embedding.Embedder, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		embedder:     embedder,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		topK:         DefaultTopK,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChunkID is <file stem>-<chunk index>-<first 10 hex chars of sha1(chunk)>
func ChunkID(stem string, index int, chunk string) model.KnowledgeChunkID {
	sum := sha1.Sum([]byte(chunk)) // #nosec G401
	return model.KnowledgeChunkID(fmt.Sprintf("%s-%d-%s", stem, index, hex.EncodeToString(sum[:])[:10]))
}

// Ingest splits every document of the source into chunks and upserts them.
// Re-ingesting unchanged files replaces the same chunk IDs.
func (s *Service) Ingest(ctx context.Context, opt IngestOption) (*model.IngestResult, error) {
	if opt.Source == nil {
		return nil, goerr.New("knowledge source is required")
	}
	logger := logging.From(ctx)

	if opt.ClearExisting {
		if err := s.repo.KnowledgeChunk().DeleteAll(ctx); err != nil {
			return nil, goerr.Wrap(err, "failed to clear knowledge base")
		}
	}

	docs, err := opt.Source.Documents(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load knowledge documents", goerr.V("source", opt.Source.String()))
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.chunkSize),
		textsplitter.WithChunkOverlap(s.chunkOverlap),
	)

	var chunks []*model.KnowledgeChunk
	for _, doc := range docs {
		segments, err := splitter.SplitText(doc.Text)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to split document", goerr.V("file", doc.Name))
		}
		for i, seg := range segments {
			chunks = append(chunks, &model.KnowledgeChunk{
				ID:         ChunkID(doc.Stem(), i, seg),
				Source:     doc.Name,
				ChunkIndex: i,
				Content:    seg,
			})
		}
		logger.Debug("document split", "file", doc.Name, "chunks", len(segments))
	}

	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}
		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to embed knowledge chunks", goerr.V("count", len(chunks)))
		}
		for i, c := range chunks {
			c.Embedding = vectors[i]
		}

		if err := s.repo.KnowledgeChunk().Upsert(ctx, chunks); err != nil {
			return nil, goerr.Wrap(err, "failed to store knowledge chunks", goerr.V("count", len(chunks)))
		}
	}

	count, err := s.repo.KnowledgeChunk().Count(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count knowledge chunks")
	}

	result := &model.IngestResult{
		FilesIndexed:    len(docs),
		ChunksIndexed:   len(chunks),
		CollectionCount: count,
	}
	logger.Info("knowledge base ingested",
		"source", opt.Source.String(),
		"files", result.FilesIndexed,
		"chunks", result.ChunksIndexed,
		"total", result.CollectionCount,
	)
	return result, nil
}

// Search returns up to topK chunks, best match (smallest distance) first.
// An empty knowledge base yields an empty result.
func (s *Service) Search(ctx context.Context, query string, topK int) ([]model.KnowledgeHit, error) {
	if topK < 1 {
		topK = s.topK
	}

	count, err := s.repo.KnowledgeChunk().Count(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count knowledge chunks")
	}
	if count == 0 {
		return []model.KnowledgeHit{}, nil
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed knowledge query")
	}

	scored, err := s.repo.KnowledgeChunk().FindByEmbedding(ctx, vec, topK)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search knowledge chunks", goerr.V("top_k", topK))
	}

	hits := make([]model.KnowledgeHit, 0, len(scored))
	for _, sc := range scored {
		distance := sc.Distance
		source := sc.Chunk.Source
		if source == "" {
			source = "unknown"
		}
		hits = append(hits, model.KnowledgeHit{
			Content:  sc.Chunk.Content,
			Source:   source,
			Distance: &distance,
		})
	}
	return hits, nil
}
