package agent

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/briareos/pkg/domain/interfaces"
)

// Completion is a single-shot, tool-less LanguageModel
type Completion struct {
	llmClient gollem.LLMClient
}

var _ interfaces.LanguageModel = &Completion{}

func NewCompletion(llmClient gollem.LLMClient) (*Completion, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}
	return &Completion{llmClient: llmClient}, nil
}

func (c *Completion) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	session, err := c.llmClient.NewSession(ctx, gollem.WithSessionSystemPrompt(systemPrompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(userPrompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content from LLM")
	}
	if resp == nil {
		return "", nil
	}
	return strings.Join(resp.Texts, "\n"), nil
}
