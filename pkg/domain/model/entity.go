package model

import "strings"

// Entity link kinds
const (
	EntityKindEndpoint    = "endpoint"
	EntityKindHTTPStatus  = "http_status"
	EntityKindRegion      = "region"
	EntityKindIntegration = "integration"
	EntityKindPlan        = "plan"
	EntityKindBillingRisk = "billing_risk"
)

// EntityLink is a normalized "kind:value" tag extracted from a resolved ticket
type EntityLink string

func NewEntityLink(kind, value string) EntityLink {
	return EntityLink(kind + ":" + value)
}

// Kind returns the part before the first colon
func (e EntityLink) Kind() string {
	kind, _, _ := strings.Cut(string(e), ":")
	return kind
}

// Value returns the part after the first colon
func (e EntityLink) Value() string {
	_, value, _ := strings.Cut(string(e), ":")
	return value
}

func (e EntityLink) String() string {
	return string(e)
}
