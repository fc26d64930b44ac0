package types

import "fmt"

// DraftStatus represents the lifecycle state of a draft reply
type DraftStatus string

const (
	DraftStatusPending   DraftStatus = "pending"
	DraftStatusAccepted  DraftStatus = "accepted"
	DraftStatusDiscarded DraftStatus = "discarded"
	DraftStatusFailed    DraftStatus = "failed"
)

// AllDraftStatuses returns all valid draft statuses
func AllDraftStatuses() []DraftStatus {
	return []DraftStatus{
		DraftStatusPending,
		DraftStatusAccepted,
		DraftStatusDiscarded,
		DraftStatusFailed,
	}
}

// IsValid checks if the draft status is valid
func (s DraftStatus) IsValid() bool {
	switch s {
	case DraftStatusPending,
		DraftStatusAccepted,
		DraftStatusDiscarded,
		DraftStatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the draft status
func (s DraftStatus) String() string {
	return string(s)
}

// ParseDraftStatus parses a string into a DraftStatus
func ParseDraftStatus(s string) (DraftStatus, error) {
	status := DraftStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid draft status: %s", s)
	}
	return status, nil
}
