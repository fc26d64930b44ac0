package usecase

import (
	"context"
	"maps"
	"regexp"
	"strings"

	"github.com/secmon-lab/briareos/pkg/domain/interfaces"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

var companySlugSeparator = regexp.MustCompile(`[^a-z0-9]+`)

// CompanyScopeID derives the shared memory scope of a company. The second
// return value is false when the name has no alphanumeric characters.
func CompanyScopeID(company string) (model.MemoryScope, bool) {
	lowered := strings.ToLower(strings.TrimSpace(company))
	if lowered == "" {
		return "", false
	}
	slug := strings.Trim(companySlugSeparator.ReplaceAllString(lowered, "-"), "-")
	if slug == "" {
		return "", false
	}
	return model.MemoryScope(model.CompanyScopePrefix + slug), true
}

// ResolveMemoryScopes returns the memory scopes of a customer, customer scope
// first and the company scope second when one can be derived.
func ResolveMemoryScopes(email, company string) []model.MemoryScope {
	var scopes []model.MemoryScope
	if customer := model.NormalizeEmail(email); customer != "" {
		scopes = append(scopes, model.MemoryScope(customer))
	}
	if companyScope, ok := CompanyScopeID(company); ok {
		scopes = append(scopes, companyScope)
	}
	return uniqueScopes(scopes)
}

func uniqueScopes(scopes []model.MemoryScope) []model.MemoryScope {
	seen := make(map[model.MemoryScope]struct{}, len(scopes))
	result := make([]model.MemoryScope, 0, len(scopes))
	for _, s := range scopes {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		result = append(result, s)
	}
	return result
}

// MemorySearcher queries a memory store across several scopes and merges
// the results.
type MemorySearcher struct {
	store interfaces.MemoryStore
}

func NewMemorySearcher(store interfaces.MemoryStore) *MemorySearcher {
	return &MemorySearcher{store: store}
}

// Search queries every scope with perScopeLimit and returns the annotated,
// deduplicated hits in scope order. A failing scope contributes no hits.
func (s *MemorySearcher) Search(ctx context.Context, query string, scopes []model.MemoryScope, perScopeLimit int) []model.MemoryHit {
	perScopeLimit = max(1, perScopeLimit)
	slots := s.collect(ctx, scopes, func(ctx context.Context, scope model.MemoryScope) ([]model.MemoryHit, error) {
		return s.store.Search(ctx, query, scope, perScopeLimit)
	})
	return dedupeMemoryHits(slots, perScopeLimit*len(scopes))
}

// List returns the stored memories of every scope, newest first per scope,
// deduplicated and capped at limit.
func (s *MemorySearcher) List(ctx context.Context, scopes []model.MemoryScope, limit int) []model.MemoryHit {
	limit = max(1, limit)
	slots := s.collect(ctx, scopes, func(ctx context.Context, scope model.MemoryScope) ([]model.MemoryHit, error) {
		return s.store.ListAll(ctx, scope, limit)
	})
	return dedupeMemoryHits(slots, limit)
}

func (s *MemorySearcher) collect(ctx context.Context, scopes []model.MemoryScope, fetch func(context.Context, model.MemoryScope) ([]model.MemoryHit, error)) []model.MemoryHit {
	if s == nil || s.store == nil || len(scopes) == 0 {
		return nil
	}

	// Results are slotted by scope index so that customer hits stay ahead of
	// company hits regardless of completion order.
	slots := make([][]model.MemoryHit, len(scopes))
	var eg errgroup.Group
	for i, scope := range scopes {
		eg.Go(func() error {
			hits, err := fetch(ctx, scope)
			if err != nil {
				logging.From(ctx).Warn("memory scope query failed",
					"scope", scope,
					"error", err.Error(),
				)
				return nil
			}
			slots[i] = annotateMemoryHits(hits, scope)
			return nil
		})
	}
	_ = eg.Wait()

	var merged []model.MemoryHit
	for _, hits := range slots {
		merged = append(merged, hits...)
	}
	return merged
}

// annotateMemoryHits records which scope each hit came from. Keys already
// present in the hit metadata are kept.
func annotateMemoryHits(hits []model.MemoryHit, scope model.MemoryScope) []model.MemoryHit {
	annotated := make([]model.MemoryHit, 0, len(hits))
	for _, hit := range hits {
		metadata := make(map[string]any, len(hit.Metadata)+2)
		maps.Copy(metadata, hit.Metadata)
		if _, ok := metadata[model.MemoryMetaScope]; !ok {
			metadata[model.MemoryMetaScope] = scope.Kind().String()
		}
		if _, ok := metadata[model.MemoryMetaScopeUserID]; !ok {
			metadata[model.MemoryMetaScopeUserID] = scope.String()
		}
		hit.Metadata = metadata
		annotated = append(annotated, hit)
	}
	return annotated
}

// dedupeMemoryHits keeps the first hit of every distinct memory text,
// compared case-insensitively after trimming. Empty texts are dropped.
func dedupeMemoryHits(hits []model.MemoryHit, limit int) []model.MemoryHit {
	limit = max(1, limit)
	seen := make(map[string]struct{}, len(hits))
	result := make([]model.MemoryHit, 0, min(len(hits), limit))
	for _, hit := range hits {
		text := strings.TrimSpace(hit.Memory)
		if text == "" {
			continue
		}
		key := strings.ToLower(text)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, hit)
		if len(result) >= limit {
			break
		}
	}
	return result
}
