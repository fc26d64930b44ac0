package types

import "fmt"

// ScopeKind distinguishes the two kinds of memory partitions
type ScopeKind string

const (
	ScopeKindCustomer ScopeKind = "customer"
	ScopeKindCompany  ScopeKind = "company"
)

func (k ScopeKind) String() string {
	return string(k)
}

// GenerationTier identifies which layer of the generator produced a draft
type GenerationTier string

const (
	GenerationTierAgent         GenerationTier = "agent"
	GenerationTierCompletion    GenerationTier = "completion_fallback"
	GenerationTierDeterministic GenerationTier = "deterministic_fallback"
)

func (t GenerationTier) String() string {
	return string(t)
}

// GenerationMode is how a generation task was triggered
type GenerationMode string

const (
	GenerationModeBackground GenerationMode = "background"
	GenerationModeManual     GenerationMode = "manual"
)

// TaskStatus represents the state of a tracked generation task
type TaskStatus string

const (
	TaskStatusQueued    TaskStatus = "queued"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusSucceeded TaskStatus = "succeeded"
	TaskStatusFailed    TaskStatus = "failed"
)

// IsFinished reports whether the task reached a terminal state
func (s TaskStatus) IsFinished() bool {
	return s == TaskStatusSucceeded || s == TaskStatusFailed
}

func (s TaskStatus) String() string {
	return string(s)
}

// MemorySyncStatus reports whether acceptance enriched the memory store
type MemorySyncStatus string

const (
	MemorySyncOK       MemorySyncStatus = "ok"
	MemorySyncDegraded MemorySyncStatus = "degraded"
	MemorySyncSkipped  MemorySyncStatus = "skipped"
)

// ParseGenerationMode parses a string into a GenerationMode
func ParseGenerationMode(s string) (GenerationMode, error) {
	switch GenerationMode(s) {
	case GenerationModeBackground, GenerationModeManual:
		return GenerationMode(s), nil
	default:
		return "", fmt.Errorf("invalid generation mode: %s", s)
	}
}
