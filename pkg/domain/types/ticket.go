package types

import "fmt"

// TicketStatus represents the status of a support ticket
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusResolved TicketStatus = "resolved"
	TicketStatusClosed   TicketStatus = "closed"
)

// AllTicketStatuses returns all valid ticket statuses
func AllTicketStatuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusOpen,
		TicketStatusResolved,
		TicketStatusClosed,
	}
}

// IsValid checks if the ticket status is valid
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusOpen,
		TicketStatusResolved,
		TicketStatusClosed:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as TicketStatusOpen.
func (s TicketStatus) Normalize() TicketStatus {
	if s == "" {
		return TicketStatusOpen
	}
	return s
}

// String returns the string representation of the ticket status
func (s TicketStatus) String() string {
	return string(s)
}

// ParseTicketStatus parses a string into a TicketStatus
func ParseTicketStatus(s string) (TicketStatus, error) {
	status := TicketStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid ticket status: %s", s)
	}
	return status, nil
}

// TicketPriority represents how urgently a ticket should be handled
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// AllTicketPriorities returns all valid ticket priorities
func AllTicketPriorities() []TicketPriority {
	return []TicketPriority{
		TicketPriorityLow,
		TicketPriorityMedium,
		TicketPriorityHigh,
		TicketPriorityUrgent,
	}
}

// IsValid checks if the ticket priority is valid
func (p TicketPriority) IsValid() bool {
	switch p {
	case TicketPriorityLow,
		TicketPriorityMedium,
		TicketPriorityHigh,
		TicketPriorityUrgent:
		return true
	default:
		return false
	}
}

// Normalize returns the priority, treating empty as TicketPriorityMedium.
func (p TicketPriority) Normalize() TicketPriority {
	if p == "" {
		return TicketPriorityMedium
	}
	return p
}

// String returns the string representation of the ticket priority
func (p TicketPriority) String() string {
	return string(p)
}

// ParseTicketPriority parses a string into a TicketPriority
func ParseTicketPriority(s string) (TicketPriority, error) {
	priority := TicketPriority(s)
	if !priority.IsValid() {
		return "", fmt.Errorf("invalid ticket priority: %s", s)
	}
	return priority, nil
}
