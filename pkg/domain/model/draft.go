package model

import (
	"time"

	"github.com/secmon-lab/briareos/pkg/domain/types"
)

// Draft is a persisted reply suggestion for a ticket
type Draft struct {
	ID          int64
	TicketID    int64
	Content     string
	ContextUsed *StructuredContext
	Status      types.DraftStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DraftResult is the output of draft generation before persistence
type DraftResult struct {
	Draft   string
	Context *StructuredContext
	Tier    types.GenerationTier
}

// MemorySync reports what happened to memory enrichment on acceptance
type MemorySync struct {
	Status types.MemorySyncStatus `json:"status"`
	Reason string                 `json:"reason,omitempty"`
}

// DraftUpdateResult is returned when a draft is edited, accepted or discarded.
// MemorySync and EntityLinks are only set on acceptance.
type DraftUpdateResult struct {
	Draft       *Draft
	MemorySync  *MemorySync
	EntityLinks []EntityLink
}
