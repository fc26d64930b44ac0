package model_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
)

func TestStructuredContext_StoredBlob(t *testing.T) {
	score := 0.82
	distance := 0.11
	callID := "call_1"

	ctx := &model.StructuredContext{
		Version:  model.ContextVersion,
		Ticket:   &model.TicketContext{ID: 7, Subject: "Invoice", Priority: types.TicketPriorityHigh, Status: types.TicketStatusOpen},
		Customer: &model.CustomerContext{ID: 3, Email: "jane@acme.io", Name: "Jane", Company: "Acme"},
		Signals: model.ContextSignals{
			MemoryHitCount:    1,
			KnowledgeHitCount: 1,
			ToolCallCount:     1,
			KnowledgeSources:  []string{"billing.md"},
		},
		Highlights: model.ContextHighlights{
			Memory:    []string{"Prefers email"},
			Knowledge: []string{"[billing.md] Refunds take 5 days"},
			Tools:     []string{"jane@acme.io is on the pro plan with 8h SLA."},
		},
		MemoryHits:    []model.MemoryHit{{Memory: "Prefers email", Score: &score, Metadata: map[string]any{"scope": "customer"}}},
		KnowledgeHits: []model.KnowledgeHit{{Content: "Refunds take 5 days", Source: "billing.md", Distance: &distance}},
		ToolCalls: []model.ToolCallTrace{{
			ToolName:   "lookup_customer_plan",
			ToolCallID: &callID,
			Arguments:  map[string]any{"customer_email": "jane@acme.io"},
			Status:     types.ToolCallStatusOK,
			Summary:    "jane@acme.io is on the pro plan with 8h SLA.",
			Output:     map[string]any{"summary": "jane@acme.io is on the pro plan with 8h SLA."},
			OutputText: `{"summary":"jane@acme.io is on the pro plan with 8h SLA."}`,
		}},
		Errors: []string{},
	}

	raw, err := model.MarshalContext(ctx)
	gt.NoError(t, err).Required()

	decoded, err := model.UnmarshalContext(raw)
	gt.NoError(t, err).Required()

	again, err := json.Marshal(decoded)
	gt.NoError(t, err).Required()
	gt.Value(t, string(again)).Equal(string(raw))
	gt.Value(t, decoded.Signals.KnowledgeSources).Equal([]string{"billing.md"})
	gt.Value(t, *decoded.ToolCalls[0].ToolCallID).Equal("call_1")
}

func TestUnmarshalContext_Empty(t *testing.T) {
	c, err := model.UnmarshalContext(nil)
	gt.NoError(t, err)
	gt.Value(t, c).Nil()

	raw, err := model.MarshalContext(nil)
	gt.NoError(t, err)
	gt.Array(t, raw).Length(0)
}
