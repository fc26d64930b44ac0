package support

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/briareos/pkg/domain/interfaces"
)

// New builds the tool registry offered to the draft agent. Every tool is
// read-only and keyed by customer email.
func New(repo interfaces.Repository) []gollem.Tool {
	return []gollem.Tool{
		&customerPlanTool{},
		&openTicketLoadTool{repo: repo},
	}
}

func extractEmail(args map[string]any) (string, error) {
	email, _ := args["customer_email"].(string)
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("customer_email is required")
	}
	return email, nil
}

func emailParameter() *gollem.Parameter {
	return &gollem.Parameter{
		Type:        gollem.TypeString,
		Description: "Email address of the customer who raised the ticket",
		Required:    true,
	}
}
