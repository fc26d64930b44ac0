package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/briareos/pkg/domain/types"
)

// GenerationTaskID is a UUID v7 identifier, so IDs sort by creation time
type GenerationTaskID string

func NewGenerationTaskID() GenerationTaskID {
	return GenerationTaskID(uuid.Must(uuid.NewV7()).String())
}

// GenerationTask tracks one draft generation attempt for a ticket
type GenerationTask struct {
	ID         GenerationTaskID     `json:"id"`
	TicketID   int64                `json:"ticket_id"`
	Mode       types.GenerationMode `json:"mode"`
	Status     types.TaskStatus     `json:"status"`
	DraftID    int64                `json:"draft_id,omitempty"`
	Error      string               `json:"error,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
	StartedAt  *time.Time           `json:"started_at,omitempty"`
	FinishedAt *time.Time           `json:"finished_at,omitempty"`
}
