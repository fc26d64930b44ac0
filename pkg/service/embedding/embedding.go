package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"time"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/utils/logging"
	"github.com/sethvargo/go-retry"
)

const (
	defaultCacheSize   = 512
	defaultMaxRetries  = 3
	defaultBaseBackoff = 200 * time.Millisecond
)

// Embedder turns text into vectors of model.EmbeddingDimension. Without an
// LLM client it falls back to a deterministic local hashing embedder.
type Embedder struct {
	llmClient   gollem.LLMClient
	dimension   int
	maxRetries  uint64
	baseBackoff time.Duration

	cacheMu sync.Mutex
	cache   *lru.Cache[string, []float32]
}

type Option func(*Embedder)

func WithCacheSize(size int) Option {
	return func(e *Embedder) {
		if size <= 0 {
			e.cache = nil
			return
		}
		if cache, err := lru.New[string, []float32](size); err == nil {
			e.cache = cache
		}
	}
}

func WithRetry(maxRetries uint64, baseBackoff time.Duration) Option {
	return func(e *Embedder) {
		e.maxRetries = maxRetries
		e.baseBackoff = baseBackoff
	}
}

func WithDimension(dim int) Option {
	return func(e *Embedder) {
		if dim > 0 {
			e.dimension = dim
		}
	}
}

// New creates an Embedder. llmClient may be nil.
func New(llmClient gollem.LLMClient, opts ...Option) *Embedder {
	cache, _ := lru.New[string, []float32](defaultCacheSize)
	e := &Embedder{
		llmClient:   llmClient,
		dimension:   model.EmbeddingDimension,
		maxRetries:  defaultMaxRetries,
		baseBackoff: defaultBaseBackoff,
		cache:       cache,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Remote reports whether vectors come from the LLM provider
func (e *Embedder) Remote() bool {
	return e.llmClient != nil
}

func (e *Embedder) Dimension() int {
	return e.dimension
}

// Embed returns the vector for a single text, served from cache when possible
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.lookup(text); ok {
		return v, nil
	}

	vectors, err := e.generate(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	e.store(text, vectors[0])
	return cloneVector(vectors[0]), nil
}

// EmbedBatch embeds texts in one provider call, reusing cached vectors
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	var missing []string
	missingIdx := make(map[string][]int)

	for i, text := range texts {
		if v, ok := e.lookup(text); ok {
			results[i] = v
			continue
		}
		if _, seen := missingIdx[text]; !seen {
			missing = append(missing, text)
		}
		missingIdx[text] = append(missingIdx[text], i)
	}

	if len(missing) == 0 {
		return results, nil
	}

	vectors, err := e.generate(ctx, missing)
	if err != nil {
		return nil, err
	}
	for i, text := range missing {
		e.store(text, vectors[i])
		for _, idx := range missingIdx[text] {
			results[idx] = cloneVector(vectors[i])
		}
	}
	return results, nil
}

func (e *Embedder) generate(ctx context.Context, texts []string) ([][]float32, error) {
	if e.llmClient == nil {
		out := make([][]float32, len(texts))
		for i, t := range texts {
			out[i] = HashEmbedding(t, e.dimension)
		}
		return out, nil
	}

	var raw [][]float64
	backoff := retry.WithMaxRetries(e.maxRetries, retry.NewExponential(e.baseBackoff))
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		resp, err := e.llmClient.GenerateEmbedding(ctx, e.dimension, texts)
		if err != nil {
			logging.From(ctx).Warn("embedding request failed",
				"attempt", attempt,
				"error", err,
			)
			return retry.RetryableError(err)
		}
		raw = resp
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding",
			goerr.V("texts", len(texts)),
			goerr.V("attempts", attempt))
	}

	if len(raw) != len(texts) {
		return nil, goerr.New("embedding count mismatch",
			goerr.V("expected", len(texts)),
			goerr.V("actual", len(raw)))
	}

	out := make([][]float32, len(raw))
	for i, v := range raw {
		out[i] = make([]float32, len(v))
		for j, f := range v {
			out[i][j] = float32(f)
		}
	}
	return out, nil
}

func (e *Embedder) lookup(text string) ([]float32, bool) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	if e.cache == nil {
		return nil, false
	}
	v, ok := e.cache.Get(text)
	if !ok {
		return nil, false
	}
	return cloneVector(v), true
}

func (e *Embedder) store(text string, v []float32) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	if e.cache == nil {
		return
	}
	e.cache.Add(text, cloneVector(v))
}

func cloneVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}

// HashEmbedding is a bag-of-words feature-hashing embedding, L2 normalized.
// Texts sharing words land close together, which is enough for local runs
// without an embedding provider.
func HashEmbedding(text string, dim int) []float32 {
	v := make([]float32, dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, w := range words {
		h := fnv.New64a()
		_, _ = h.Write([]byte(w))
		sum := h.Sum64()
		idx := int(sum % uint64(dim))
		sign := float32(1)
		if (sum>>63)&1 == 1 {
			sign = -1
		}
		v[idx] += sign
	}

	var norm float64
	for _, f := range v {
		norm += float64(f) * float64(f)
	}
	if norm == 0 {
		return v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}
