package usecase_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
	"github.com/secmon-lab/briareos/pkg/usecase"
)

func strPtr(s string) *string {
	return &s
}

func sampleEvidence() ([]model.MemoryHit, []model.KnowledgeHit, []model.ToolCallTrace) {
	memoryHits := []model.MemoryHit{
		{Memory: "Uses Stripe", Score: float64Ptr(0.91), Metadata: map[string]any{"scope": "customer"}},
		{Memory: "Had a 502 last month", Score: float64Ptr(0.8), Metadata: map[string]any{}},
		{Memory: strings.Repeat("long memory ", 30), Metadata: map[string]any{}},
		{Memory: "fourth memory", Metadata: map[string]any{}},
	}
	kbHits := []model.KnowledgeHit{
		{Content: "Refunds take 5 days", Source: "billing.md", Distance: float64Ptr(0.1)},
		{Content: "Webhooks retry", Source: "webhooks.md", Distance: float64Ptr(0.2)},
		{Content: "More billing", Source: "billing.md", Distance: float64Ptr(0.3)},
		{Content: "No source"},
	}
	traces := []model.ToolCallTrace{
		{
			ToolName:   "lookup_customer_plan",
			ToolCallID: strPtr("c1"),
			Arguments:  map[string]any{"customer_email": "alice@example.com"},
			Status:     types.ToolCallStatusOK,
			Summary:    "alice is on the pro plan",
			Output:     map[string]any{"details": map[string]any{"plan_tier": "pro", "sla_hours": float64(8)}},
			OutputText: `{"details":{"plan_tier":"pro","sla_hours":8}}`,
		},
		{
			ToolName:   "lookup_open_ticket_load",
			Arguments:  map[string]any{},
			Status:     types.ToolCallStatusSkipped,
			Summary:    "no result",
			OutputText: "no output",
		},
	}
	return memoryHits, kbHits, traces
}

func TestBuildContext(t *testing.T) {
	ticket := &model.Ticket{ID: 7, Subject: "Checkout broken", Priority: types.TicketPriorityHigh, Status: types.TicketStatusOpen}
	customer := &model.Customer{ID: 3, Email: "alice@example.com", Name: "Alice", Company: "Acme"}
	memoryHits, kbHits, traces := sampleEvidence()

	sc := usecase.BuildContext(ticket, customer, memoryHits, kbHits, traces)

	t.Run("signals match list lengths", func(t *testing.T) {
		gt.Value(t, sc.Version).Equal(model.ContextVersion)
		gt.Value(t, sc.Signals.MemoryHitCount).Equal(len(sc.MemoryHits))
		gt.Value(t, sc.Signals.KnowledgeHitCount).Equal(len(sc.KnowledgeHits))
		gt.Value(t, sc.Signals.ToolCallCount).Equal(len(sc.ToolCalls))
		gt.Value(t, sc.Signals.ToolErrorCount).Equal(1)
		gt.Value(t, sc.Signals.KnowledgeSources).Equal([]string{"billing.md", "webhooks.md"})
	})

	t.Run("highlights are capped and trimmed", func(t *testing.T) {
		gt.Array(t, sc.Highlights.Memory).Length(3)
		gt.Array(t, sc.Highlights.Knowledge).Length(3)
		gt.Array(t, sc.Highlights.Tools).Length(2)

		gt.Value(t, len([]rune(sc.Highlights.Memory[2]))).Equal(180)
		gt.Bool(t, strings.HasSuffix(sc.Highlights.Memory[2], "...")).True()
		gt.Value(t, sc.Highlights.Knowledge[0]).Equal("[billing.md] Refunds take 5 days")
		gt.Value(t, sc.Highlights.Tools[0]).Equal("alice is on the pro plan")
	})

	t.Run("projections", func(t *testing.T) {
		gt.Value(t, sc.Ticket.ID).Equal(int64(7))
		gt.Value(t, sc.Ticket.Priority).Equal(types.TicketPriorityHigh)
		gt.Value(t, sc.Customer.Email).Equal("alice@example.com")
		gt.Array(t, sc.Errors).Length(0)
	})

	t.Run("round trip keeps the structure", func(t *testing.T) {
		sc.Errors = append(sc.Errors, "Memory disabled: test")
		sc.AgentRuntime = "gollem"
		sc.Tier = types.GenerationTierAgent.String()

		raw, err := model.MarshalContext(sc)
		gt.NoError(t, err).Required()
		decoded, err := model.UnmarshalContext(raw)
		gt.NoError(t, err).Required()
		gt.Value(t, decoded).Equal(sc)
	})
}

func TestBuildContext_Empty(t *testing.T) {
	sc := usecase.BuildContext(nil, nil, nil, nil, nil)

	gt.Value(t, sc.Signals.MemoryHitCount).Equal(0)
	gt.Value(t, sc.Signals.KnowledgeSources).Equal([]string{})
	gt.Value(t, sc.MemoryHits).Equal([]model.MemoryHit{})
	gt.Value(t, sc.KnowledgeHits).Equal([]model.KnowledgeHit{})
	gt.Value(t, sc.ToolCalls).Equal([]model.ToolCallTrace{})

	raw, err := model.MarshalContext(sc)
	gt.NoError(t, err).Required()
	decoded, err := model.UnmarshalContext(raw)
	gt.NoError(t, err).Required()
	gt.Value(t, decoded).Equal(sc)
}

func TestTrimText(t *testing.T) {
	testCases := []struct {
		in    string
		limit int
		want  string
	}{
		{in: "  short  ", limit: 10, want: "short"},
		{in: "exactly10!", limit: 10, want: "exactly10!"},
		{in: "this is longer than ten", limit: 10, want: "this is..."},
		{in: "日本語のテキストです", limit: 5, want: "日本..."},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%q", tc.in), func(t *testing.T) {
			gt.Value(t, usecase.TrimText(tc.in, tc.limit)).Equal(tc.want)
		})
	}
}
