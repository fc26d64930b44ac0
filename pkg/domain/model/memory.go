package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/briareos/pkg/domain/types"
)

// CompanyScopePrefix marks a memory scope shared by every customer of a company
const CompanyScopePrefix = "company::"

// MemoryScope is an opaque partition key in the memory store. Customer scopes
// are the normalized email; company scopes carry CompanyScopePrefix.
type MemoryScope string

// Kind returns whether the scope belongs to a customer or a company
func (s MemoryScope) Kind() types.ScopeKind {
	if strings.HasPrefix(string(s), CompanyScopePrefix) {
		return types.ScopeKindCompany
	}
	return types.ScopeKindCustomer
}

func (s MemoryScope) String() string {
	return string(s)
}

// MemoryEntryID is a UUID-based identifier for MemoryEntry
type MemoryEntryID string

// NewMemoryEntryID generates a new UUID v4 MemoryEntryID
func NewMemoryEntryID() MemoryEntryID {
	return MemoryEntryID(uuid.New().String())
}

// MemoryEntry is a single remembered fact stored under a scope.
type MemoryEntry struct {
	ID        MemoryEntryID
	Scope     MemoryScope
	Text      string
	Metadata  map[string]any
	Embedding []float32 // Vector embedding for similarity search (768 dimensions)
	CreatedAt time.Time
}

// MemoryHit is one result of a memory search. Score is nil when the store
// did not rank the result (e.g. plain listing).
type MemoryHit struct {
	Memory   string         `json:"memory"`
	Score    *float64       `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

// Metadata keys written onto annotated memory hits
const (
	MemoryMetaScope       = "scope"
	MemoryMetaScopeUserID = "scope_user_id"
	MemoryMetaType        = "type"
)
