package memstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/secmon-lab/briareos/pkg/domain/model"
)

// MemoryTypeResolution tags entries learned from an accepted draft
const MemoryTypeResolution = "resolution"

// ResolutionMessages renders an accepted draft as the interaction that is
// remembered for the customer
func ResolutionMessages(subject, description, acceptedDraft string, links []model.EntityLink) []model.Message {
	var entityText string
	if len(links) > 0 {
		values := make([]string, len(links))
		for i, l := range links {
			values[i] = l.String()
		}
		entityText = "\nLinked entities: " + strings.Join(values, ", ")
	}

	return []model.Message{
		model.HumanMessage(fmt.Sprintf("Ticket subject: %s\nProblem: %s", subject, description)),
		model.AssistantMessage(fmt.Sprintf("Resolution accepted by support agent:\n%s%s", acceptedDraft, entityText)),
	}
}

// AddResolution remembers how a ticket was resolved
func (s *Store) AddResolution(ctx context.Context, scope model.MemoryScope, subject, description, acceptedDraft string, links []model.EntityLink) error {
	return s.AddInteraction(ctx, scope,
		ResolutionMessages(subject, description, acceptedDraft, links),
		map[string]any{model.MemoryMetaType: MemoryTypeResolution},
	)
}
