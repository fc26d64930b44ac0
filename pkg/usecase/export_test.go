package usecase

import (
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/secmon-lab/briareos/pkg/domain/types"
)

// Internal helpers exported for testing
var (
	TrimText           = trimText
	DedupeMemoryHits   = dedupeMemoryHits
	DeterministicDraft = deterministicDraft
	ConversationID     = conversationID
)

const (
	EmptyDraftText  = emptyDraftText
	EmptyDraftError = emptyDraftError
	FailedDraftText = failedDraftText
)

// DraftCount returns the generation counter of a tier
func (m *Metrics) DraftCount(tier types.GenerationTier) float64 {
	return testutil.ToFloat64(m.drafts.WithLabelValues(tier.String()))
}

// EscalationCount returns the escalation counter of a target tier
func (m *Metrics) EscalationCount(tier types.GenerationTier) float64 {
	return testutil.ToFloat64(m.escalations.WithLabelValues(tier.String()))
}

// MemorySyncCount returns the acceptance counter of a memory sync status
func (m *Metrics) MemorySyncCount(status types.MemorySyncStatus) float64 {
	return testutil.ToFloat64(m.memorySync.WithLabelValues(string(status)))
}

// NewTaskTrackerWithClock returns a tracker driven by the given clock
func NewTaskTrackerWithClock(now func() time.Time, retention time.Duration) *TaskTracker {
	t := NewTaskTracker()
	t.now = now
	t.retention = retention
	return t
}
