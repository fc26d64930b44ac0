package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/secmon-lab/briareos/pkg/usecase"
)

// Handlers serves the ticket, draft and memory tools
type Handlers struct {
	uc *usecase.UseCases
}

func NewHandlers(uc *usecase.UseCases) *Handlers {
	return &Handlers{uc: uc}
}

func getTicketDefinition() mcp.Tool {
	return mcp.NewTool("get_ticket",
		mcp.WithDescription("Return a support ticket with the customer who raised it."),
		mcp.WithNumber("ticket_id",
			mcp.Required(),
			mcp.Description("Numeric ticket ID"),
		),
	)
}

func generateDraftDefinition() mcp.Tool {
	return mcp.NewTool("generate_draft",
		mcp.WithDescription("Generate and store a reply draft for a ticket. Returns the draft with the evidence used."),
		mcp.WithNumber("ticket_id",
			mcp.Required(),
			mcp.Description("Numeric ticket ID"),
		),
	)
}

func searchMemoryDefinition() mcp.Tool {
	return mcp.NewTool("search_customer_memory",
		mcp.WithDescription("Search remembered resolutions of a customer and their company."),
		mcp.WithNumber("customer_id",
			mcp.Required(),
			mcp.Description("Numeric customer ID"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("What to look for"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Max results (default: %d, max: %d)",
				usecase.DefaultMemorySearchLimit, usecase.MaxMemorySearchLimit)),
		),
	)
}

func (h *Handlers) GetTicket(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ticketID, ok := idArg(req, "ticket_id")
	if !ok {
		return mcp.NewToolResultError("'ticket_id' must be a positive number"), nil
	}

	twc, err := h.uc.Ticket.GetTicket(ctx, ticketID)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResult(map[string]any{
		"id":               twc.Ticket.ID,
		"subject":          twc.Ticket.Subject,
		"description":      twc.Ticket.Description,
		"status":           twc.Ticket.Status,
		"priority":         twc.Ticket.Priority,
		"customer_id":      twc.Customer.ID,
		"customer_email":   twc.Customer.Email,
		"customer_name":    twc.Customer.Name,
		"customer_company": twc.Customer.Company,
	})
}

func (h *Handlers) GenerateDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ticketID, ok := idArg(req, "ticket_id")
	if !ok {
		return mcp.NewToolResultError("'ticket_id' must be a positive number"), nil
	}

	draft, err := h.uc.Draft.GenerateDraft(ctx, ticketID)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResult(map[string]any{
		"id":           draft.ID,
		"ticket_id":    draft.TicketID,
		"status":       draft.Status,
		"content":      draft.Content,
		"context_used": draft.ContextUsed,
	})
}

func (h *Handlers) SearchCustomerMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	customerID, ok := idArg(req, "customer_id")
	if !ok {
		return mcp.NewToolResultError("'customer_id' must be a positive number"), nil
	}
	query := req.GetString("query", "")
	limit := intArg(req, "limit", usecase.DefaultMemorySearchLimit)

	customer, hits, err := h.uc.Memory.SearchCustomerMemories(ctx, customerID, query, limit)
	if err != nil {
		return toolError(err), nil
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No memories found for %s.", customer.Email)), nil
	}

	return jsonResult(map[string]any{
		"customer_id":    customer.ID,
		"customer_email": customer.Email,
		"query":          query,
		"results":        hits,
	})
}

// toolError turns known failures into a message for the calling agent
func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, usecase.ErrTicketNotFound):
		return mcp.NewToolResultError("ticket not found")
	case errors.Is(err, usecase.ErrCustomerNotFound):
		return mcp.NewToolResultError("customer not found")
	case errors.Is(err, usecase.ErrEmptyQuery):
		return mcp.NewToolResultError("'query' is required")
	case errors.Is(err, usecase.ErrCopilotUnavailable):
		return mcp.NewToolResultError("copilot is not configured")
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

func idArg(req mcp.CallToolRequest, key string) (int64, bool) {
	v, ok := req.GetArguments()[key].(float64)
	if !ok || v < 1 || v != float64(int64(v)) {
		return 0, false
	}
	return int64(v), true
}
