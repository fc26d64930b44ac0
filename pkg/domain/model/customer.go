package model

import (
	"strings"
	"time"
)

// Customer is the person a support ticket was raised for
type Customer struct {
	ID        int64
	Email     string
	Name      string
	Company   string
	CreatedAt time.Time
}

// NormalizeEmail returns the canonical form used for lookups and memory scopes
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DisplayName returns the name if present, otherwise the email
func (c *Customer) DisplayName() string {
	if c == nil {
		return ""
	}
	if strings.TrimSpace(c.Name) != "" {
		return c.Name
	}
	return c.Email
}
