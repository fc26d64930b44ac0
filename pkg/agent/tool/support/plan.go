package support

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/briareos/pkg/agent/tool"
	"github.com/secmon-lab/briareos/pkg/domain/model"
)

const ToolNameCustomerPlan = "lookup_customer_plan"

type planTier struct {
	Tier          string
	SLAHours      int
	PriorityQueue bool
}

var planTiers = []planTier{
	{Tier: "free", SLAHours: 48, PriorityQueue: false},
	{Tier: "starter", SLAHours: 24, PriorityQueue: false},
	{Tier: "pro", SLAHours: 8, PriorityQueue: true},
	{Tier: "enterprise", SLAHours: 1, PriorityQueue: true},
}

// planFor maps an email to a stable plan. The SHA-256 digest read as a
// big-endian integer modulo len(planTiers) only depends on the last byte
// because 256 is a multiple of the plan count.
func planFor(email string) planTier {
	digest := sha256.Sum256([]byte(model.NormalizeEmail(email)))
	return planTiers[int(digest[len(digest)-1])%len(planTiers)]
}

// customerPlanTool reports subscription tier and SLA for a customer
type customerPlanTool struct{}

func (t *customerPlanTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        ToolNameCustomerPlan,
		Description: "Return structured subscription and SLA details for a customer email.",
		Parameters: map[string]*gollem.Parameter{
			"customer_email": emailParameter(),
		},
	}
}

func (t *customerPlanTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	email, err := extractEmail(args)
	if err != nil {
		return nil, err
	}

	tool.Progress(ctx, fmt.Sprintf("Looking up plan for %s", email))

	plan := planFor(email)
	recommended := "Use standard handling."
	if plan.PriorityQueue {
		recommended = "Use priority handling."
	}

	return map[string]any{
		"tool":           ToolNameCustomerPlan,
		"customer_email": email,
		"summary":        fmt.Sprintf("%s is on the %s plan with %dh SLA.", email, plan.Tier, plan.SLAHours),
		"details": map[string]any{
			"plan_tier":      plan.Tier,
			"sla_hours":      plan.SLAHours,
			"priority_queue": plan.PriorityQueue,
		},
		"recommended_action": recommended,
	}, nil
}
