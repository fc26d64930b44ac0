package usecase

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
)

const (
	highlightLimit     = 3
	highlightTextLimit = 180
)

// BuildContext assembles the evidence record of a generation attempt.
// Signal counts always equal the lengths of the stored lists.
func BuildContext(ticket *model.Ticket, customer *model.Customer, memoryHits []model.MemoryHit, kbHits []model.KnowledgeHit, traces []model.ToolCallTrace) *model.StructuredContext {
	if memoryHits == nil {
		memoryHits = []model.MemoryHit{}
	}
	if kbHits == nil {
		kbHits = []model.KnowledgeHit{}
	}
	if traces == nil {
		traces = []model.ToolCallTrace{}
	}

	sources := make([]string, 0, len(kbHits))
	seen := make(map[string]struct{})
	for _, hit := range kbHits {
		if hit.Source == "" {
			continue
		}
		if _, ok := seen[hit.Source]; ok {
			continue
		}
		seen[hit.Source] = struct{}{}
		sources = append(sources, hit.Source)
	}

	var toolErrors int
	for _, tr := range traces {
		if tr.Status != types.ToolCallStatusOK {
			toolErrors++
		}
	}

	highlights := model.ContextHighlights{
		Memory:    make([]string, 0, highlightLimit),
		Knowledge: make([]string, 0, highlightLimit),
		Tools:     make([]string, 0, highlightLimit),
	}
	for _, hit := range memoryHits[:min(highlightLimit, len(memoryHits))] {
		highlights.Memory = append(highlights.Memory, trimText(hit.Memory, highlightTextLimit))
	}
	for _, hit := range kbHits[:min(highlightLimit, len(kbHits))] {
		highlights.Knowledge = append(highlights.Knowledge, trimText(knowledgeLine(hit), highlightTextLimit))
	}
	for _, tr := range traces[:min(highlightLimit, len(traces))] {
		highlights.Tools = append(highlights.Tools, trimText(tr.Summary, highlightTextLimit))
	}

	sc := &model.StructuredContext{
		Version: model.ContextVersion,
		Signals: model.ContextSignals{
			MemoryHitCount:    len(memoryHits),
			KnowledgeHitCount: len(kbHits),
			ToolCallCount:     len(traces),
			ToolErrorCount:    toolErrors,
			KnowledgeSources:  sources,
		},
		Highlights:    highlights,
		MemoryHits:    memoryHits,
		KnowledgeHits: kbHits,
		ToolCalls:     traces,
		Errors:        []string{},
	}

	if ticket != nil {
		sc.Ticket = &model.TicketContext{
			ID:       ticket.ID,
			Subject:  ticket.Subject,
			Priority: ticket.Priority,
			Status:   ticket.Status,
		}
	}
	if customer != nil {
		sc.Customer = &model.CustomerContext{
			ID:      customer.ID,
			Email:   customer.Email,
			Name:    customer.Name,
			Company: customer.Company,
		}
	}

	return sc
}

func knowledgeLine(hit model.KnowledgeHit) string {
	source := hit.Source
	if source == "" {
		source = "unknown"
	}
	return fmt.Sprintf("[%s] %s", source, strings.TrimSpace(hit.Content))
}

// trimText shortens text to at most limit runes, marking the cut with "...".
func trimText(text string, limit int) string {
	clean := strings.TrimSpace(text)
	runes := []rune(clean)
	if len(runes) <= limit {
		return clean
	}
	return string(runes[:limit-3]) + "..."
}
