package support

import (
	"context"
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/briareos/pkg/agent/tool"
	"github.com/secmon-lab/briareos/pkg/domain/interfaces"
	"github.com/secmon-lab/briareos/pkg/domain/types"
)

const ToolNameOpenTicketLoad = "lookup_open_ticket_load"

func loadBand(open int) string {
	switch {
	case open <= 1:
		return "light"
	case open <= 3:
		return "moderate"
	default:
		return "heavy"
	}
}

// openTicketLoadTool counts the customer's open tickets
type openTicketLoadTool struct {
	repo interfaces.Repository
}

func (t *openTicketLoadTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        ToolNameOpenTicketLoad,
		Description: "Return open ticket count and load band for a customer email.",
		Parameters: map[string]*gollem.Parameter{
			"customer_email": emailParameter(),
		},
	}
}

func (t *openTicketLoadTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	email, err := extractEmail(args)
	if err != nil {
		return nil, err
	}

	tool.Progress(ctx, fmt.Sprintf("Counting open tickets for %s", email))

	customer, err := t.repo.Customer().GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return nil, goerr.Wrap(err, "failed to look up customer", goerr.V("email", email))
	}
	if customer == nil {
		return map[string]any{
			"tool":           ToolNameOpenTicketLoad,
			"customer_email": email,
			"summary":        fmt.Sprintf("No customer record found for %s.", email),
			"details": map[string]any{
				"customer_found": false,
				"open_tickets":   nil,
				"load_band":      "unknown",
			},
			"recommended_action": "Ask agent to verify customer email before promising SLA.",
		}, nil
	}

	open, err := t.repo.Ticket().CountByCustomer(ctx, customer.ID, types.TicketStatusOpen)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count open tickets", goerr.V("customer_id", customer.ID))
	}

	recommended := "Handle as isolated incident."
	if open > 1 {
		recommended = "Acknowledge multiple ongoing issues."
	}

	return map[string]any{
		"tool":           ToolNameOpenTicketLoad,
		"customer_email": email,
		"summary":        fmt.Sprintf("Customer %s has %d open ticket(s).", email, open),
		"details": map[string]any{
			"customer_found": true,
			"open_tickets":   open,
			"load_band":      loadBand(open),
		},
		"recommended_action": recommended,
	}, nil
}
