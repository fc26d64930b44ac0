package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/utils/logging"
)

//go:embed prompt/agent_system.md
var agentSystemPromptTmpl string

//go:embed prompt/agent_user.md
var agentUserPromptTmpl string

//go:embed prompt/completion_system.md
var completionSystemPrompt string

//go:embed prompt/completion_user.md
var completionUserPromptTmpl string

var (
	agentSystemPrompt    = template.Must(template.New("agent_system").Parse(agentSystemPromptTmpl))
	agentUserPrompt      = template.Must(template.New("agent_user").Parse(agentUserPromptTmpl))
	completionUserPrompt = template.Must(template.New("completion_user").Parse(completionUserPromptTmpl))
)

// promptData is the evidence and ticket view shared by all prompt templates
type promptData struct {
	Name        string
	Email       string
	Company     string
	Subject     string
	Priority    string
	Description string

	Memories  []string
	Knowledge []string
	Tools     []string
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func buildAgentSystemPrompt(ctx context.Context, memoryHits []model.MemoryHit, kbHits []model.KnowledgeHit) string {
	data := promptData{}
	for _, hit := range memoryHits {
		data.Memories = append(data.Memories, strings.TrimSpace(hit.Memory))
	}
	for _, hit := range kbHits {
		data.Knowledge = append(data.Knowledge, knowledgeLine(hit))
	}
	return renderPrompt(ctx, agentSystemPrompt, data,
		"You are an AI copilot for customer support agents. Write concise, empathetic, and actionable draft replies.")
}

func buildAgentUserPrompt(ctx context.Context, ticket *model.Ticket, customer *model.Customer) string {
	data := promptData{
		Name:        orDefault(customer.Name, "Unknown"),
		Email:       customer.Email,
		Company:     orDefault(customer.Company, "Unknown"),
		Subject:     ticket.Subject,
		Priority:    orDefault(ticket.Priority.String(), "medium"),
		Description: ticket.Description,
	}
	return renderPrompt(ctx, agentUserPrompt, data,
		fmt.Sprintf("Ticket Subject: %s\nTicket Description:\n%s", ticket.Subject, ticket.Description))
}

func buildCompletionUserPrompt(ctx context.Context, ticket *model.Ticket, customer *model.Customer, memoryHits []model.MemoryHit, kbHits []model.KnowledgeHit, traces []model.ToolCallTrace) string {
	data := promptData{
		Name:        orDefault(customer.Name, "Unknown"),
		Email:       orDefault(customer.Email, "unknown"),
		Company:     orDefault(customer.Company, "Unknown"),
		Subject:     ticket.Subject,
		Description: ticket.Description,
	}
	for _, hit := range memoryHits[:min(highlightLimit, len(memoryHits))] {
		data.Memories = append(data.Memories, trimText(hit.Memory, highlightTextLimit))
	}
	for _, hit := range kbHits[:min(highlightLimit, len(kbHits))] {
		data.Knowledge = append(data.Knowledge, trimText(knowledgeLine(hit), highlightTextLimit))
	}
	for _, tr := range traces {
		finding := tr.Summary
		if finding == "" {
			finding = tr.OutputText
		}
		if finding == "" {
			continue
		}
		data.Tools = append(data.Tools, trimText(finding, highlightTextLimit))
	}
	return renderPrompt(ctx, completionUserPrompt, data,
		fmt.Sprintf("Ticket subject: %s\nTicket description: %s", ticket.Subject, ticket.Description))
}

// deterministicDraft is the last-resort reply. It never returns empty text.
func deterministicDraft(ticket *model.Ticket, customer *model.Customer, traces []model.ToolCallTrace) string {
	greeting := "there"
	if customer != nil {
		greeting = orDefault(customer.Name, orDefault(customer.Email, "there"))
	}
	subject := "your issue"
	if ticket != nil {
		subject = orDefault(ticket.Subject, subject)
	}

	action := "Our support team is reviewing your account and issue details now."
	for _, tr := range traces {
		if s := strings.TrimSpace(tr.Summary); s != "" {
			action = s
			break
		}
	}

	return fmt.Sprintf("Hi %s,\n\n"+
		"Thanks for reaching out about \"%s\". I understand how disruptive this can be.\n\n"+
		"%s\n\n"+
		"Next, we will continue investigating and share an update with concrete steps shortly.\n\n"+
		"Best,\nSupport Team", greeting, subject, action)
}

func renderPrompt(ctx context.Context, tmpl *template.Template, data promptData, fallback string) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		logging.From(ctx).Error("failed to execute prompt template",
			"template", tmpl.Name(),
			"error", err.Error(),
		)
		return fallback
	}
	return strings.TrimSpace(buf.String())
}
