package usecase_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
	"github.com/secmon-lab/briareos/pkg/usecase"
)

func TestExtractDraftAndTraces(t *testing.T) {
	t.Run("missing tool result is skipped", func(t *testing.T) {
		transcript := model.Transcript{
			model.SystemMessage("sys"),
			model.HumanMessage("user"),
			model.AssistantMessage("", model.ToolCallRequest{
				ID:        "call-1",
				Name:      "lookup_customer_plan",
				Arguments: map[string]any{"customer_email": "alice@example.com"},
			}),
		}

		draft, traces := usecase.ExtractDraftAndTraces(transcript)
		gt.Value(t, draft).Equal("")
		gt.Array(t, traces).Length(1)

		tr := traces[0]
		gt.Value(t, tr.ToolName).Equal("lookup_customer_plan")
		gt.Value(t, tr.Status).Equal(types.ToolCallStatusSkipped)
		gt.Value(t, tr.Summary).Equal("Tool 'lookup_customer_plan' was requested but no result was returned.")
		gt.Value(t, tr.OutputText).Equal("Tool 'lookup_customer_plan' produced no output.")
		gt.Bool(t, tr.Output == nil).True()
		gt.Value(t, *tr.ToolCallID).Equal("call-1")
	})

	t.Run("structured result uses its summary", func(t *testing.T) {
		transcript := model.Transcript{
			model.AssistantMessage("", model.ToolCallRequest{ID: "c1", Name: "lookup_customer_plan"}),
			model.ToolResultMessage("c1", "lookup_customer_plan",
				`{"summary":"alice is on the pro plan","details":{"plan_tier":"pro"}}`, false),
			model.AssistantMessage("Hi Alice, you are on the Pro plan."),
		}

		draft, traces := usecase.ExtractDraftAndTraces(transcript)
		gt.Value(t, draft).Equal("Hi Alice, you are on the Pro plan.")
		gt.Array(t, traces).Length(1)
		gt.Value(t, traces[0].Status).Equal(types.ToolCallStatusOK)
		gt.Value(t, traces[0].Summary).Equal("alice is on the pro plan")
		gt.Value(t, traces[0].Output["details"]).Equal(any(map[string]any{"plan_tier": "pro"}))
		gt.Value(t, traces[0].Arguments).Equal(map[string]any{})
	})

	t.Run("non object output falls back to raw text", func(t *testing.T) {
		transcript := model.Transcript{
			model.AssistantMessage("", model.ToolCallRequest{ID: "c1", Name: "a"}, model.ToolCallRequest{ID: "c2", Name: "b"}),
			model.ToolResultMessage("c1", "a", `["not", "an", "object"]`, false),
			model.ToolResultMessage("c2", "b", "plain text result", false),
		}

		_, traces := usecase.ExtractDraftAndTraces(transcript)
		gt.Array(t, traces).Length(2)
		gt.Bool(t, traces[0].Output == nil).True()
		gt.Value(t, traces[0].Summary).Equal(`["not", "an", "object"]`)
		gt.Bool(t, traces[1].Output == nil).True()
		gt.Value(t, traces[1].Summary).Equal("plain text result")
		gt.Value(t, traces[1].OutputText).Equal("plain text result")
	})

	t.Run("error results are flagged", func(t *testing.T) {
		transcript := model.Transcript{
			model.AssistantMessage("", model.ToolCallRequest{ID: "c1", Name: "lookup_open_ticket_load"}),
			model.ToolResultMessage("c1", "lookup_open_ticket_load", "database unavailable", true),
		}

		_, traces := usecase.ExtractDraftAndTraces(transcript)
		gt.Array(t, traces).Length(1)
		gt.Value(t, traces[0].Status).Equal(types.ToolCallStatusError)
		gt.Value(t, traces[0].Summary).Equal("database unavailable")
	})

	t.Run("unnamed tool gets a placeholder name", func(t *testing.T) {
		transcript := model.Transcript{
			model.AssistantMessage("", model.ToolCallRequest{}),
		}

		_, traces := usecase.ExtractDraftAndTraces(transcript)
		gt.Array(t, traces).Length(1)
		gt.Value(t, traces[0].ToolName).Equal("unknown_tool")
		gt.Bool(t, traces[0].ToolCallID == nil).True()
		gt.Value(t, traces[0].Status).Equal(types.ToolCallStatusSkipped)
	})

	t.Run("last non empty assistant message wins", func(t *testing.T) {
		transcript := model.Transcript{
			model.AssistantMessage("first answer"),
			model.HumanMessage("follow up"),
			model.AssistantMessage("  second answer  "),
			model.AssistantMessage("   "),
		}

		draft, traces := usecase.ExtractDraftAndTraces(transcript)
		gt.Value(t, draft).Equal("second answer")
		gt.Array(t, traces).Length(0)
	})

	t.Run("nil transcript", func(t *testing.T) {
		draft, traces := usecase.ExtractDraftAndTraces(nil)
		gt.Value(t, draft).Equal("")
		gt.Array(t, traces).Length(0)
	})
}
