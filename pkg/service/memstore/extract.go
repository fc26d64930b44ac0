package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
	"github.com/secmon-lab/briareos/pkg/utils/vector"
)

type factResponse struct {
	Facts []string `json:"facts"`
}

func factSchema(maxFacts int) *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "MemoryFacts",
		Description: "Durable facts about the customer worth remembering",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"facts": {
				Type:        gollem.TypeArray,
				Description: fmt.Sprintf("At most %d short, self-contained facts. Empty if nothing is worth remembering.", maxFacts),
				Items: &gollem.Parameter{
					Type: gollem.TypeString,
				},
				Required: true,
			},
		},
	}
}

func buildExtractionPrompt() string {
	var sb strings.Builder
	sb.WriteString("You maintain long-term memory for a customer-support team.\n\n")
	sb.WriteString("## Instructions:\n\n")
	sb.WriteString("1. Read the conversation and extract durable facts about the customer: account setup, plan, integrations, recurring problems, how issues were resolved, stated preferences.\n")
	sb.WriteString("2. Each fact must be one sentence that makes sense without the conversation.\n")
	sb.WriteString("3. Skip greetings, pleasantries and anything that only applies to this one message.\n")
	sb.WriteString("4. If nothing is worth remembering, return an empty list.\n")
	return sb.String()
}

func (s *Store) extractFacts(ctx context.Context, messages []model.Message) ([]string, error) {
	session, err := s.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(factSchema(s.maxFacts)),
		gollem.WithSessionSystemPrompt(buildExtractionPrompt()),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(condense(messages)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content from LLM")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("empty LLM response")
	}

	var parsed factResponse
	if err := json.Unmarshal([]byte(strings.Join(resp.Texts, "")), &parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to parse LLM response", goerr.V("response", resp.Texts))
	}

	facts := make([]string, 0, len(parsed.Facts))
	seen := make(map[string]struct{})
	for _, f := range parsed.Facts {
		f = strings.TrimSpace(f)
		key := strings.ToLower(f)
		if f == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		facts = append(facts, f)
		if len(facts) == s.maxFacts {
			break
		}
	}
	return facts, nil
}

// condense renders messages as "role: content" lines
func condense(messages []model.Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		role := "user"
		if m.Role == types.MessageRoleAssistant {
			role = "assistant"
		}
		lines = append(lines, role+": "+content)
	}
	return strings.Join(lines, "\n")
}

func similarity(a, b []float32) float64 {
	return vector.CosineSimilarity(a, b)
}
