package interfaces

import (
	"context"

	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
)

// Repository defines the interface for data persistence
type Repository interface {
	Customer() CustomerRepository
	Ticket() TicketRepository
	Draft() DraftRepository
	MemoryEntry() MemoryEntryRepository
	KnowledgeChunk() KnowledgeChunkRepository

	Close() error
}

// CustomerRepository persists customers, unique by normalized email
type CustomerRepository interface {
	// CreateOrGet returns the existing customer with the same email, or creates one.
	// Name and company of an existing customer are not overwritten.
	CreateOrGet(ctx context.Context, customer *model.Customer) (*model.Customer, error)
	Get(ctx context.Context, id int64) (*model.Customer, error)
	GetByEmail(ctx context.Context, email string) (*model.Customer, error)
}

// TicketRepository persists support tickets
type TicketRepository interface {
	Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error)
	Get(ctx context.Context, id int64) (*model.Ticket, error)
	// List returns tickets newest first
	List(ctx context.Context) ([]*model.Ticket, error)
	UpdateStatus(ctx context.Context, id int64, status types.TicketStatus) (*model.Ticket, error)
	CountByCustomer(ctx context.Context, customerID int64, status types.TicketStatus) (int, error)
}

// DraftRepository persists drafts. ContextUsed is stored as an opaque JSON blob.
type DraftRepository interface {
	Create(ctx context.Context, draft *model.Draft) (*model.Draft, error)
	Get(ctx context.Context, id int64) (*model.Draft, error)
	// GetLatestByTicket returns the most recently created draft, or ErrNotFound
	GetLatestByTicket(ctx context.Context, ticketID int64) (*model.Draft, error)
	Update(ctx context.Context, draft *model.Draft) (*model.Draft, error)
}

// MemoryEntryRepository stores scoped memory entries with embeddings
type MemoryEntryRepository interface {
	Create(ctx context.Context, entry *model.MemoryEntry) (*model.MemoryEntry, error)
	// List returns entries of a scope newest first, at most limit (0 means all)
	List(ctx context.Context, scope model.MemoryScope, limit int) ([]*model.MemoryEntry, error)

	// FindByEmbedding performs vector similarity search using cosine distance.
	// Returns up to limit entries of the scope, most similar first.
	FindByEmbedding(ctx context.Context, scope model.MemoryScope, embedding []float32, limit int) ([]*model.MemoryEntry, error)
}

// KnowledgeChunkRepository stores knowledge-base chunks
type KnowledgeChunkRepository interface {
	// Upsert creates or replaces chunks by ID
	Upsert(ctx context.Context, chunks []*model.KnowledgeChunk) error
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error

	// FindByEmbedding returns up to limit chunks ordered by ascending cosine distance
	FindByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*model.ScoredKnowledgeChunk, error)
}
