package support_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareos/pkg/agent/tool"
	"github.com/secmon-lab/briareos/pkg/agent/tool/support"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
	"github.com/secmon-lab/briareos/pkg/repository/memory"
)

func newCtxWithProgressCapture() (context.Context, *[]string) {
	var messages []string
	ctx := tool.WithProgress(context.Background(), func(_ context.Context, msg string) {
		messages = append(messages, msg)
	})
	return ctx, &messages
}

func findTool(t *testing.T, tools []gollem.Tool, name string) gollem.Tool {
	t.Helper()
	for _, tl := range tools {
		if tl.Spec().Name == name {
			return tl
		}
	}
	t.Fatalf("tool %s not found", name)
	return nil
}

func TestNew(t *testing.T) {
	tools := support.New(memory.New())
	gt.Array(t, tools).Length(2)

	for _, tl := range tools {
		spec := tl.Spec()
		gt.Bool(t, spec.Description != "").True()
		param, ok := spec.Parameters["customer_email"]
		gt.Bool(t, ok).True()
		gt.Bool(t, param.Required).True()
	}
}

func TestCustomerPlanTool(t *testing.T) {
	planTool := findTool(t, support.New(memory.New()), support.ToolNameCustomerPlan)

	t.Run("stable plan per email", func(t *testing.T) {
		ctx, updates := newCtxWithProgressCapture()

		first, err := planTool.Run(ctx, map[string]any{"customer_email": "alice@example.com"})
		gt.NoError(t, err).Required()
		second, err := planTool.Run(ctx, map[string]any{"customer_email": "  ALICE@example.com "})
		gt.NoError(t, err).Required()

		details := first["details"].(map[string]any)
		gt.Value(t, details["plan_tier"]).Equal(second["details"].(map[string]any)["plan_tier"])
		gt.Value(t, first["tool"]).Equal(any(support.ToolNameCustomerPlan))
		gt.Array(t, *updates).Length(2)

		expected := support.PlanFor("alice@example.com")
		gt.Value(t, details["plan_tier"]).Equal(any(expected.Tier))
		gt.Value(t, first["summary"]).Equal(any(
			fmt.Sprintf("alice@example.com is on the %s plan with %dh SLA.", expected.Tier, expected.SLAHours)))
	})

	t.Run("recommended action follows priority queue", func(t *testing.T) {
		for _, email := range []string{"a@x.io", "b@x.io", "c@x.io", "d@x.io", "e@x.io", "f@x.io"} {
			out, err := planTool.Run(context.Background(), map[string]any{"customer_email": email})
			gt.NoError(t, err).Required()

			details := out["details"].(map[string]any)
			if details["priority_queue"].(bool) {
				gt.Value(t, out["recommended_action"]).Equal(any("Use priority handling."))
			} else {
				gt.Value(t, out["recommended_action"]).Equal(any("Use standard handling."))
			}
		}
	})

	t.Run("missing email is an error", func(t *testing.T) {
		_, err := planTool.Run(context.Background(), map[string]any{})
		gt.Error(t, err)
	})
}

func TestOpenTicketLoadTool(t *testing.T) {
	t.Run("unknown customer", func(t *testing.T) {
		loadTool := findTool(t, support.New(memory.New()), support.ToolNameOpenTicketLoad)

		out, err := loadTool.Run(context.Background(), map[string]any{"customer_email": "ghost@example.com"})
		gt.NoError(t, err).Required()

		gt.Value(t, out["summary"]).Equal(any("No customer record found for ghost@example.com."))
		details := out["details"].(map[string]any)
		gt.Value(t, details["customer_found"]).Equal(any(false))
		gt.Value(t, details["load_band"]).Equal(any("unknown"))
		gt.Bool(t, details["open_tickets"] == nil).True()
	})

	t.Run("counts only open tickets", func(t *testing.T) {
		repo := memory.New()
		ctx := context.Background()

		customer, err := repo.Customer().CreateOrGet(ctx, &model.Customer{Email: "busy@example.com"})
		gt.NoError(t, err).Required()
		for _, status := range []types.TicketStatus{types.TicketStatusOpen, types.TicketStatusOpen, types.TicketStatusResolved} {
			_, err := repo.Ticket().Create(ctx, &model.Ticket{
				CustomerID: customer.ID, Subject: "s", Description: "d", Status: status,
			})
			gt.NoError(t, err).Required()
		}

		loadTool := findTool(t, support.New(repo), support.ToolNameOpenTicketLoad)
		out, err := loadTool.Run(ctx, map[string]any{"customer_email": "busy@example.com"})
		gt.NoError(t, err).Required()

		gt.Value(t, out["summary"]).Equal(any("Customer busy@example.com has 2 open ticket(s)."))
		details := out["details"].(map[string]any)
		gt.Value(t, details["open_tickets"]).Equal(any(2))
		gt.Value(t, details["load_band"]).Equal(any("moderate"))
		gt.Value(t, out["recommended_action"]).Equal(any("Acknowledge multiple ongoing issues."))
	})
}

func TestLoadBand(t *testing.T) {
	testCases := []struct {
		open int
		want string
	}{
		{0, "light"},
		{1, "light"},
		{2, "moderate"},
		{3, "moderate"},
		{4, "heavy"},
		{10, "heavy"},
	}
	for _, tc := range testCases {
		gt.Value(t, support.LoadBand(tc.open)).Equal(tc.want)
	}
}
