package interfaces

import (
	"context"

	"github.com/secmon-lab/briareos/pkg/domain/model"
)

// LanguageModel performs a single plain completion without tools
type LanguageModel interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// AgentRuntime runs a tool-using conversation and returns the full transcript.
// Runs sharing a conversation ID continue the same conversation history.
type AgentRuntime interface {
	Run(ctx context.Context, systemPrompt, userPrompt, conversationID string) (model.Transcript, error)
	Name() string
}

// MemoryStore is a scoped semantic memory
type MemoryStore interface {
	Search(ctx context.Context, query string, scope model.MemoryScope, limit int) ([]model.MemoryHit, error)
	ListAll(ctx context.Context, scope model.MemoryScope, limit int) ([]model.MemoryHit, error)
	AddInteraction(ctx context.Context, scope model.MemoryScope, messages []model.Message, metadata map[string]any) error
}

// KnowledgeRetriever searches the knowledge base. An empty index yields an
// empty result, not an error.
type KnowledgeRetriever interface {
	Search(ctx context.Context, query string, topK int) ([]model.KnowledgeHit, error)
}

// DraftNotifier is told about every stored draft
type DraftNotifier interface {
	NotifyDraft(ctx context.Context, ticket *model.Ticket, customer *model.Customer, draft *model.Draft) error
}
