package usecase

import (
	"github.com/secmon-lab/briareos/pkg/domain/interfaces"
	"github.com/secmon-lab/briareos/pkg/service/knowledge"
)

type UseCases struct {
	repo      interfaces.Repository
	copilot   *Copilot
	notifier  interfaces.DraftNotifier
	metrics   *Metrics
	knowledge *knowledge.Service
	kbPath    string

	Ticket    *TicketUseCase
	Draft     *DraftUseCase
	Memory    *MemoryUseCase
	Knowledge *KnowledgeUseCase
}

type Option func(*UseCases)

// WithCopilot enables draft generation. Without it, background generation
// stores failed drafts and synchronous generation returns
// ErrCopilotUnavailable.
func WithCopilot(copilot *Copilot) Option {
	return func(uc *UseCases) {
		uc.copilot = copilot
	}
}

func WithNotifier(notifier interfaces.DraftNotifier) Option {
	return func(uc *UseCases) {
		uc.notifier = notifier
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(uc *UseCases) {
		uc.metrics = metrics
	}
}

// WithKnowledge enables knowledge-base ingestion from path by default
func WithKnowledge(svc *knowledge.Service, path string) Option {
	return func(uc *UseCases) {
		uc.knowledge = svc
		uc.kbPath = path
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Draft = NewDraftUseCase(repo, uc.copilot, NewTaskTracker(), uc.notifier, uc.metrics)
	uc.Ticket = NewTicketUseCase(repo, uc.Draft)
	uc.Memory = NewMemoryUseCase(uc.Ticket, uc.copilot)
	if uc.knowledge != nil {
		uc.Knowledge = NewKnowledgeUseCase(uc.knowledge, uc.kbPath)
	}

	return uc
}

// CopilotAvailable reports whether draft generation is configured
func (uc *UseCases) CopilotAvailable() bool {
	return uc.copilot != nil
}
