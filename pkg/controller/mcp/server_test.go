package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/secmon-lab/briareos/pkg/agent/tool/support"
	mcpctrl "github.com/secmon-lab/briareos/pkg/controller/mcp"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
	"github.com/secmon-lab/briareos/pkg/repository/memory"
	"github.com/secmon-lab/briareos/pkg/service/embedding"
	"github.com/secmon-lab/briareos/pkg/service/memstore"
	"github.com/secmon-lab/briareos/pkg/usecase"
)

type stubRuntime struct{}

func (stubRuntime) Name() string { return "stub_runtime" }

func (stubRuntime) Run(ctx context.Context, systemPrompt, userPrompt, conversationID string) (model.Transcript, error) {
	return model.Transcript{
		model.SystemMessage(systemPrompt),
		model.HumanMessage(userPrompt),
		model.AssistantMessage("Hello Bob, the export is being rebuilt."),
	}, nil
}

type stubLanguageModel struct{}

func (stubLanguageModel) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "fallback", nil
}

func makeReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(r *mcp.CallToolResult) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func setup(t *testing.T) (*memory.Memory, *usecase.UseCases, *model.Ticket) {
	t.Helper()
	ctx := context.Background()
	repo := memory.New()

	copilot, err := usecase.NewCopilot(stubRuntime{}, stubLanguageModel{},
		usecase.WithMemoryStore(memstore.New(repo, embedding.New(nil))),
	)
	gt.NoError(t, err).Required()
	uc := usecase.New(repo, usecase.WithCopilot(copilot))

	customer, err := repo.Customer().CreateOrGet(ctx, &model.Customer{Email: "bob@example.com", Name: "Bob", Company: "Globex"})
	gt.NoError(t, err).Required()
	ticket, err := repo.Ticket().Create(ctx, &model.Ticket{
		CustomerID:  customer.ID,
		Subject:     "Export stuck",
		Description: "CSV export has been pending for two hours",
		Status:      types.TicketStatusOpen,
		Priority:    types.TicketPriorityMedium,
	})
	gt.NoError(t, err).Required()

	return repo, uc, ticket
}

func TestHandlers_GetTicket(t *testing.T) {
	_, uc, ticket := setup(t)
	h := mcpctrl.NewHandlers(uc)
	ctx := context.Background()

	res, err := h.GetTicket(ctx, makeReq(map[string]any{"ticket_id": float64(ticket.ID)}))
	gt.NoError(t, err).Required()
	gt.Bool(t, res.IsError).False()

	var body map[string]any
	gt.NoError(t, json.Unmarshal([]byte(resultText(res)), &body)).Required()
	gt.Value(t, body["customer_email"]).Equal(any("bob@example.com"))
	gt.Value(t, body["subject"]).Equal(any("Export stuck"))

	t.Run("unknown ticket", func(t *testing.T) {
		res, err := h.GetTicket(ctx, makeReq(map[string]any{"ticket_id": float64(999)}))
		gt.NoError(t, err).Required()
		gt.Bool(t, res.IsError).True()
		gt.Value(t, resultText(res)).Equal("ticket not found")
	})

	t.Run("invalid id", func(t *testing.T) {
		res, err := h.GetTicket(ctx, makeReq(map[string]any{"ticket_id": "abc"}))
		gt.NoError(t, err).Required()
		gt.Bool(t, res.IsError).True()
	})
}

func TestHandlers_GenerateDraft(t *testing.T) {
	repo, uc, ticket := setup(t)
	h := mcpctrl.NewHandlers(uc)
	ctx := context.Background()

	res, err := h.GenerateDraft(ctx, makeReq(map[string]any{"ticket_id": float64(ticket.ID)}))
	gt.NoError(t, err).Required()
	gt.Bool(t, res.IsError).False()
	gt.String(t, resultText(res)).Contains("the export is being rebuilt")

	stored, err := repo.Draft().GetLatestByTicket(ctx, ticket.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.Status).Equal(types.DraftStatusPending)
}

func TestHandlers_SearchCustomerMemory(t *testing.T) {
	_, uc, ticket := setup(t)
	h := mcpctrl.NewHandlers(uc)
	ctx := context.Background()

	t.Run("no memories", func(t *testing.T) {
		res, err := h.SearchCustomerMemory(ctx, makeReq(map[string]any{
			"customer_id": float64(ticket.CustomerID),
			"query":       "export",
		}))
		gt.NoError(t, err).Required()
		gt.Bool(t, res.IsError).False()
		gt.String(t, resultText(res)).Contains("No memories found for bob@example.com")
	})

	t.Run("after acceptance", func(t *testing.T) {
		draft, err := uc.Draft.GenerateDraft(ctx, ticket.ID)
		gt.NoError(t, err).Required()
		accepted := types.DraftStatusAccepted
		_, err = uc.Draft.UpdateDraft(ctx, draft.ID, usecase.DraftUpdate{Status: &accepted})
		gt.NoError(t, err).Required()

		res, err := h.SearchCustomerMemory(ctx, makeReq(map[string]any{
			"customer_id": float64(ticket.CustomerID),
			"query":       "export",
			"limit":       float64(3),
		}))
		gt.NoError(t, err).Required()
		gt.Bool(t, res.IsError).False()
		gt.String(t, resultText(res)).Contains("Resolution accepted by support agent")
	})

	t.Run("empty query", func(t *testing.T) {
		res, err := h.SearchCustomerMemory(ctx, makeReq(map[string]any{
			"customer_id": float64(ticket.CustomerID),
		}))
		gt.NoError(t, err).Required()
		gt.Bool(t, res.IsError).True()
		gt.Value(t, resultText(res)).Equal("'query' is required")
	})
}

func TestToolBridge(t *testing.T) {
	repo, _, _ := setup(t)
	planTool := support.New(repo)[0]
	bridge := mcpctrl.NewToolBridge(planTool)

	def := bridge.Definition()
	gt.Value(t, def.Name).Equal(support.ToolNameCustomerPlan)
	_, ok := def.InputSchema.Properties["customer_email"]
	gt.Bool(t, ok).True()
	gt.Array(t, def.InputSchema.Required).Has("customer_email")

	res, err := bridge.Handle(context.Background(), makeReq(map[string]any{"customer_email": "bob@example.com"}))
	gt.NoError(t, err).Required()
	gt.Bool(t, res.IsError).False()
	gt.String(t, resultText(res)).Contains(`"plan_tier"`)

	res, err = bridge.Handle(context.Background(), makeReq(map[string]any{}))
	gt.NoError(t, err).Required()
	gt.Bool(t, res.IsError).True()
}

func TestNew(t *testing.T) {
	repo, uc, _ := setup(t)
	s := mcpctrl.New(uc, support.New(repo), "test")
	gt.Value(t, s).NotNil()
}
