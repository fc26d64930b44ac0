package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/interfaces"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
	"github.com/secmon-lab/briareos/pkg/service/memstore"
	"github.com/secmon-lab/briareos/pkg/utils/logging"
)

const (
	DefaultMemoryTopK    = 5
	DefaultKnowledgeTopK = 4

	defaultMemoryDisabledReason = "memory store is not configured"
)

// Copilot drafts replies for support tickets. It gathers customer memory
// and knowledge-base evidence, runs the tool-using agent and falls back to
// a plain completion and then to a fixed template when a tier yields no
// text. GenerateDraft always produces non-empty draft text.
type Copilot struct {
	runtime   interfaces.AgentRuntime
	llm       interfaces.LanguageModel
	store     interfaces.MemoryStore
	searcher  *MemorySearcher
	knowledge interfaces.KnowledgeRetriever
	metrics   *Metrics

	memoryDisabledReason string
	memoryTopK           int
	knowledgeTopK        int
}

type CopilotOption func(*Copilot)

func WithMemoryStore(store interfaces.MemoryStore) CopilotOption {
	return func(c *Copilot) {
		c.store = store
	}
}

// WithMemoryDisabled records why no memory store is available. The reason
// is reported in the context of every generated draft.
func WithMemoryDisabled(reason string) CopilotOption {
	return func(c *Copilot) {
		c.store = nil
		c.memoryDisabledReason = reason
	}
}

func WithKnowledgeRetriever(retriever interfaces.KnowledgeRetriever) CopilotOption {
	return func(c *Copilot) {
		c.knowledge = retriever
	}
}

// WithTopK sets how many memories per scope and knowledge chunks are
// retrieved for a draft. Values below 1 keep the defaults.
func WithTopK(memory, knowledge int) CopilotOption {
	return func(c *Copilot) {
		if memory > 0 {
			c.memoryTopK = memory
		}
		if knowledge > 0 {
			c.knowledgeTopK = knowledge
		}
	}
}

func WithCopilotMetrics(m *Metrics) CopilotOption {
	return func(c *Copilot) {
		c.metrics = m
	}
}

// NewCopilot returns ErrCopilotUnavailable when either the agent runtime or
// the language model is missing.
func NewCopilot(runtime interfaces.AgentRuntime, llm interfaces.LanguageModel, opts ...CopilotOption) (*Copilot, error) {
	if runtime == nil || llm == nil {
		return nil, goerr.Wrap(ErrCopilotUnavailable, "agent runtime and language model are required",
			goerr.V("has_runtime", runtime != nil),
			goerr.V("has_llm", llm != nil),
		)
	}

	c := &Copilot{
		runtime:       runtime,
		llm:           llm,
		memoryTopK:    DefaultMemoryTopK,
		knowledgeTopK: DefaultKnowledgeTopK,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.searcher = NewMemorySearcher(c.store)

	return c, nil
}

// MemoryEnabled reports whether a memory store is configured
func (c *Copilot) MemoryEnabled() bool {
	return c.store != nil
}

// MemoryDisabledReason explains why MemoryEnabled is false
func (c *Copilot) MemoryDisabledReason() string {
	if c.memoryDisabledReason != "" {
		return c.memoryDisabledReason
	}
	return defaultMemoryDisabledReason
}

// GenerateDraft drafts a reply for the ticket. Failures of the agent, the
// completion model or the retrievers are recorded in the returned context
// instead of being returned.
func (c *Copilot) GenerateDraft(ctx context.Context, ticket *model.Ticket, customer *model.Customer) (*model.DraftResult, error) {
	if ticket == nil || customer == nil {
		return nil, goerr.Wrap(ErrInvalidTicket, "ticket and customer are required")
	}
	logger := logging.From(ctx).With(TicketIDKey, ticket.ID)

	var diagnostics []string
	if !c.MemoryEnabled() {
		diagnostics = append(diagnostics, "Memory disabled: "+c.MemoryDisabledReason())
	}

	query := ticket.Subject + "\n" + ticket.Description
	memoryHits := c.searcher.Search(ctx, query, ResolveMemoryScopes(customer.Email, customer.Company), c.memoryTopK)

	var kbHits []model.KnowledgeHit
	if c.knowledge != nil {
		hits, err := c.knowledge.Search(ctx, query, c.knowledgeTopK)
		if err != nil {
			logger.Warn("knowledge retrieval failed", "error", err.Error())
			diagnostics = append(diagnostics, "Knowledge retrieval failed: "+err.Error())
		} else {
			kbHits = hits
		}
	}

	systemPrompt := buildAgentSystemPrompt(ctx, memoryHits, kbHits)
	userPrompt := buildAgentUserPrompt(ctx, ticket, customer)

	tier := types.GenerationTierAgent
	transcript, err := c.runtime.Run(ctx, systemPrompt, userPrompt, conversationID(ticket, customer))
	if err != nil {
		logger.Warn("agent runtime failed", "error", err.Error())
		diagnostics = append(diagnostics, "Agent runtime failed: "+err.Error())
	}
	draft, traces := ExtractDraftAndTraces(transcript)

	if draft == "" {
		tier = types.GenerationTierCompletion
		c.metrics.observeEscalation(tier)
		diagnostics = append(diagnostics, "Agent returned empty draft content; completion fallback was used.")

		text, err := c.llm.Complete(ctx,
			strings.TrimSpace(completionSystemPrompt),
			buildCompletionUserPrompt(ctx, ticket, customer, memoryHits, kbHits, traces),
		)
		if err != nil {
			logger.Warn("completion fallback failed", "error", err.Error())
			diagnostics = append(diagnostics, "Completion fallback failed: "+err.Error())
		}
		draft = strings.TrimSpace(text)
	}

	if draft == "" {
		tier = types.GenerationTierDeterministic
		c.metrics.observeEscalation(tier)
		diagnostics = append(diagnostics, "Completion fallback returned empty draft content; deterministic fallback was used.")
		draft = deterministicDraft(ticket, customer, traces)
	}

	sc := BuildContext(ticket, customer, memoryHits, kbHits, traces)
	sc.Errors = append(sc.Errors, diagnostics...)
	sc.AgentRuntime = c.runtime.Name()
	sc.Tier = tier.String()

	c.metrics.observeDraft(tier, traces)
	logger.Info("draft generated",
		"tier", tier,
		"memory_hits", len(memoryHits),
		"knowledge_hits", len(kbHits),
		"tool_calls", len(traces),
	)

	return &model.DraftResult{
		Draft:   draft,
		Context: sc,
		Tier:    tier,
	}, nil
}

// SearchMemoryScopes searches the customer and company memories of a
// customer. limit applies per scope.
func (c *Copilot) SearchMemoryScopes(ctx context.Context, query, email, company string, limit int) []model.MemoryHit {
	hits := c.searcher.Search(ctx, query, ResolveMemoryScopes(email, company), limit)
	if hits == nil {
		return []model.MemoryHit{}
	}
	return hits
}

// ListCustomerMemories lists the remembered facts of a customer and their
// company, at most limit in total.
func (c *Copilot) ListCustomerMemories(ctx context.Context, email, company string, limit int) []model.MemoryHit {
	hits := c.searcher.List(ctx, ResolveMemoryScopes(email, company), limit)
	if hits == nil {
		return []model.MemoryHit{}
	}
	return hits
}

// SaveAcceptedResolution remembers an accepted reply under every memory
// scope of the customer. Entity links are returned even when saving fails.
func (c *Copilot) SaveAcceptedResolution(ctx context.Context, ticket *model.Ticket, customer *model.Customer, draft *model.Draft) ([]model.EntityLink, error) {
	links := ExtractEntityLinks(ticket.Subject, ticket.Description, draft.Content, draft.ContextUsed)
	if !c.MemoryEnabled() {
		return links, goerr.New("memory store is not available", goerr.V("reason", c.MemoryDisabledReason()))
	}

	var errs []error
	for _, scope := range ResolveMemoryScopes(customer.Email, customer.Company) {
		if err := c.addResolution(ctx, scope, ticket, draft.Content, links); err != nil {
			errs = append(errs, goerr.Wrap(err, "failed to save resolution", goerr.V(ScopeKey, scope)))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return links, err
	}
	return links, nil
}

// resolutionRecorder is implemented by memory stores that record accepted
// resolutions natively.
type resolutionRecorder interface {
	AddResolution(ctx context.Context, scope model.MemoryScope, subject, description, acceptedDraft string, links []model.EntityLink) error
}

func (c *Copilot) addResolution(ctx context.Context, scope model.MemoryScope, ticket *model.Ticket, content string, links []model.EntityLink) error {
	if rec, ok := c.store.(resolutionRecorder); ok {
		return rec.AddResolution(ctx, scope, ticket.Subject, ticket.Description, content, links)
	}
	return c.store.AddInteraction(ctx, scope,
		memstore.ResolutionMessages(ticket.Subject, ticket.Description, content, links),
		map[string]any{model.MemoryMetaType: memstore.MemoryTypeResolution},
	)
}

func conversationID(ticket *model.Ticket, customer *model.Customer) string {
	if ticket != nil && ticket.ID != 0 {
		return fmt.Sprintf("ticket::%d", ticket.ID)
	}
	if customer != nil {
		if email := model.NormalizeEmail(customer.Email); email != "" {
			return "ticket::" + email
		}
	}
	return "ticket::unknown"
}
