package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/secmon-lab/briareos/pkg/domain/model"
)

const (
	maxEntityLinks   = 12
	maxEndpointLinks = 3
	maxStatusLinks   = 4
)

var (
	endpointPattern   = regexp.MustCompile(`/[a-zA-Z0-9][a-zA-Z0-9/_-]{2,}`)
	httpStatusPattern = regexp.MustCompile(`\b([45]\d\d)\b`)
)

type regionMarkers struct {
	name    string
	markers []string
}

var regions = []regionMarkers{
	{name: "EU", markers: []string{" eu ", "europe", "emea"}},
	{name: "US", markers: []string{" us ", "united states", "na "}},
	{name: "APAC", markers: []string{" apac ", "asia pacific"}},
	{name: "India", markers: []string{" india ", " in "}},
}

var integrations = []string{
	"shopify",
	"stripe",
	"salesforce",
	"slack",
	"quickbooks",
	"hubspot",
	"zendesk",
}

// ExtractEntityLinks pulls kind:value tags out of a resolved ticket, its
// accepted reply and the tool outputs recorded in the draft context. The
// result is unique, ordered by kind and capped at 12 entries.
func ExtractEntityLinks(subject, description, draft string, sc *model.StructuredContext) []model.EntityLink {
	merged := fmt.Sprintf("%s\n%s\n%s", subject, description, draft)
	var links []model.EntityLink

	for _, ep := range firstUnique(endpointPattern.FindAllString(merged, -1), maxEndpointLinks) {
		links = append(links, model.NewEntityLink(model.EntityKindEndpoint, ep))
	}

	var codes []string
	for _, m := range httpStatusPattern.FindAllStringSubmatch(merged, -1) {
		codes = append(codes, m[1])
	}
	for _, code := range firstUnique(codes, maxStatusLinks) {
		links = append(links, model.NewEntityLink(model.EntityKindHTTPStatus, code))
	}

	padded := " " + normalizeForMarkers(merged) + " "
	for _, region := range regions {
		for _, marker := range region.markers {
			if strings.Contains(padded, marker) {
				links = append(links, model.NewEntityLink(model.EntityKindRegion, region.name))
				break
			}
		}
	}

	lowered := strings.ToLower(merged)
	for _, name := range integrations {
		if strings.Contains(lowered, name) {
			links = append(links, model.NewEntityLink(model.EntityKindIntegration, name))
		}
	}

	if sc != nil {
		for _, tr := range sc.ToolCalls {
			if plan := outputField(tr.Output, "plan_tier"); plan != "" {
				links = append(links, model.NewEntityLink(model.EntityKindPlan, plan))
			}
			if risk := outputField(tr.Output, "risk_level"); risk != "" {
				links = append(links, model.NewEntityLink(model.EntityKindBillingRisk, risk))
			}
		}
	}

	values := make([]string, len(links))
	for i, l := range links {
		values[i] = l.String()
	}
	unique := firstUnique(values, maxEntityLinks)
	result := make([]model.EntityLink, len(unique))
	for i, v := range unique {
		result[i] = model.EntityLink(v)
	}
	return result
}

// normalizeForMarkers lowercases text and turns punctuation and line breaks
// into spaces so that markers like " eu " match "EU," or "(EU)".
func normalizeForMarkers(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
}

// outputField looks a key up in a tool output, first under "details" and
// then at the top level.
func outputField(output map[string]any, key string) string {
	if output == nil {
		return ""
	}
	if details, ok := output["details"].(map[string]any); ok {
		if v, ok := details[key]; ok && v != nil {
			if s := fmt.Sprint(v); s != "" {
				return s
			}
		}
	}
	if v, ok := output[key]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

func firstUnique(values []string, limit int) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, min(len(values), limit))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
		if len(result) >= limit {
			break
		}
	}
	return result
}
