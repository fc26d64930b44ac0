package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/interfaces"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
	"github.com/secmon-lab/briareos/pkg/utils/async"
	"github.com/secmon-lab/briareos/pkg/utils/logging"
)

const (
	emptyDraftText  = "Thanks for your message. We are reviewing your issue and will share a concrete update shortly."
	emptyDraftError = "Copilot returned empty draft content; API fallback text was used."

	failedDraftText = "Automatic draft generation failed. Configure AI keys and trigger manual draft generation."
)

// NormalizeDraftResult guarantees non-empty draft text and a non-nil context
func NormalizeDraftResult(result *model.DraftResult) (string, *model.StructuredContext) {
	var text string
	var sc *model.StructuredContext
	if result != nil {
		text = strings.TrimSpace(result.Draft)
		sc = result.Context
	}
	if sc == nil {
		sc = BuildContext(nil, nil, nil, nil, nil)
	}

	if text == "" {
		text = emptyDraftText
		sc.AddError(emptyDraftError)
	}
	return text, sc
}

// FailedContext is stored with a draft whose generation failed. All signal
// counts are zero so that they match the empty lists.
func FailedContext(message string) *model.StructuredContext {
	sc := BuildContext(nil, nil, nil, nil, nil)
	sc.Errors = []string{message}
	return sc
}

// DraftUseCase generates, stores and reviews drafts
type DraftUseCase struct {
	repo     interfaces.Repository
	copilot  *Copilot
	tasks    *TaskTracker
	notifier interfaces.DraftNotifier
	metrics  *Metrics
}

// NewDraftUseCase creates a DraftUseCase. copilot may be nil, in which case
// background generation stores failed drafts and manual generation returns
// ErrCopilotUnavailable.
func NewDraftUseCase(repo interfaces.Repository, copilot *Copilot, tasks *TaskTracker, notifier interfaces.DraftNotifier, metrics *Metrics) *DraftUseCase {
	if tasks == nil {
		tasks = NewTaskTracker()
	}
	return &DraftUseCase{
		repo:     repo,
		copilot:  copilot,
		tasks:    tasks,
		notifier: notifier,
		metrics:  metrics,
	}
}

// Tasks exposes the generation task tracker
func (uc *DraftUseCase) Tasks() *TaskTracker {
	return uc.tasks
}

// GenerateDraft synchronously generates and stores a draft for the ticket
func (uc *DraftUseCase) GenerateDraft(ctx context.Context, ticketID int64) (*model.Draft, error) {
	if uc.copilot == nil {
		return nil, goerr.Wrap(ErrCopilotUnavailable, "cannot generate draft", goerr.V(TicketIDKey, ticketID))
	}

	ticket, customer, err := uc.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	task := uc.tasks.Enqueue(ticketID, types.GenerationModeManual)
	return uc.runTask(ctx, task.ID, ticket, customer)
}

// GenerateInBackground queues draft generation for the ticket and returns
// immediately. Progress is visible through Tasks().
func (uc *DraftUseCase) GenerateInBackground(ctx context.Context, ticketID int64) model.GenerationTask {
	task := uc.tasks.Enqueue(ticketID, types.GenerationModeBackground)

	async.Dispatch(ctx, "draft_generation", func(ctx context.Context) error {
		ticket, customer, err := uc.loadTicket(ctx, ticketID)
		if err != nil {
			uc.tasks.Fail(task.ID, 0, err.Error())
			if errors.Is(err, ErrTicketNotFound) || errors.Is(err, ErrCustomerNotFound) {
				logging.From(ctx).Warn("skipping draft generation", TicketIDKey, ticketID, "error", err.Error())
				return nil
			}
			return err
		}
		_, err = uc.runTask(ctx, task.ID, ticket, customer)
		return err
	})

	return task
}

// LatestGeneration returns the most recent generation task of the ticket
func (uc *DraftUseCase) LatestGeneration(ticketID int64) (*model.GenerationTask, bool) {
	return uc.tasks.Latest(ticketID)
}

func (uc *DraftUseCase) runTask(ctx context.Context, taskID model.GenerationTaskID, ticket *model.Ticket, customer *model.Customer) (*model.Draft, error) {
	uc.tasks.Start(taskID)

	draft, err := uc.generateAndStore(ctx, ticket, customer)
	if err != nil {
		uc.tasks.Fail(taskID, 0, err.Error())
		return nil, err
	}

	if draft.Status == types.DraftStatusFailed {
		reason := failedDraftText
		if draft.ContextUsed != nil && len(draft.ContextUsed.Errors) > 0 {
			reason = draft.ContextUsed.Errors[0]
		}
		uc.tasks.Fail(taskID, draft.ID, reason)
	} else {
		uc.tasks.Succeed(taskID, draft.ID)
	}
	return draft, nil
}

// generateAndStore never fails because of generation itself: a failure is
// stored as a draft with status failed. Only persistence errors are returned.
func (uc *DraftUseCase) generateAndStore(ctx context.Context, ticket *model.Ticket, customer *model.Customer) (*model.Draft, error) {
	logger := logging.From(ctx).With(TicketIDKey, ticket.ID)

	draft := &model.Draft{
		TicketID: ticket.ID,
		Status:   types.DraftStatusPending,
	}

	result, err := uc.generate(ctx, ticket, customer)
	if err != nil {
		logger.Error("draft generation failed", "error", err.Error())
		draft.Content = failedDraftText
		draft.ContextUsed = FailedContext(err.Error())
		draft.Status = types.DraftStatusFailed
	} else {
		draft.Content, draft.ContextUsed = NormalizeDraftResult(result)
	}

	created, err := uc.repo.Draft().Create(ctx, draft)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store draft",
			goerr.V(TicketIDKey, ticket.ID),
			goerr.V("draft_status", draft.Status),
		)
	}

	if uc.notifier != nil {
		if err := uc.notifier.NotifyDraft(ctx, ticket, customer, created); err != nil {
			logger.Warn("failed to notify draft", "error", err.Error())
		}
	}

	return created, nil
}

func (uc *DraftUseCase) generate(ctx context.Context, ticket *model.Ticket, customer *model.Customer) (result *model.DraftResult, err error) {
	if uc.copilot == nil {
		return nil, ErrCopilotUnavailable
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = goerr.New("panic in draft generation", goerr.V("panic", r))
		}
	}()

	return uc.copilot.GenerateDraft(ctx, ticket, customer)
}

// GetLatestDraft returns the most recently created draft of the ticket
func (uc *DraftUseCase) GetLatestDraft(ctx context.Context, ticketID int64) (*model.Draft, error) {
	draft, err := uc.repo.Draft().GetLatestByTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrDraftNotFound, "no draft for ticket", goerr.V(TicketIDKey, ticketID))
		}
		return nil, goerr.Wrap(err, "failed to get latest draft", goerr.V(TicketIDKey, ticketID))
	}
	return draft, nil
}

// DraftUpdate holds the fields an agent may change. Nil fields are kept.
type DraftUpdate struct {
	Content *string
	Status  *types.DraftStatus
}

// UpdateDraft edits a draft. Accepting a draft resolves its ticket and
// saves the resolution to memory; the memory outcome is reported in the
// result and never fails the update.
func (uc *DraftUseCase) UpdateDraft(ctx context.Context, draftID int64, update DraftUpdate) (*model.DraftUpdateResult, error) {
	if update.Status != nil {
		switch *update.Status {
		case types.DraftStatusPending, types.DraftStatusAccepted, types.DraftStatusDiscarded:
		default:
			return nil, goerr.Wrap(ErrInvalidDraftStatus, "status cannot be set by an agent",
				goerr.V("status", *update.Status))
		}
	}

	draft, err := uc.repo.Draft().Get(ctx, draftID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrDraftNotFound, "draft does not exist", goerr.V(DraftIDKey, draftID))
		}
		return nil, goerr.Wrap(err, "failed to get draft", goerr.V(DraftIDKey, draftID))
	}

	if update.Content != nil {
		draft.Content = *update.Content
	}
	if update.Status != nil {
		draft.Status = *update.Status
	}

	updated, err := uc.repo.Draft().Update(ctx, draft)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update draft", goerr.V(DraftIDKey, draftID))
	}

	result := &model.DraftUpdateResult{Draft: updated}
	if updated.Status != types.DraftStatusAccepted || update.Status == nil {
		return result, nil
	}

	ticket, err := uc.repo.Ticket().UpdateStatus(ctx, updated.TicketID, types.TicketStatusResolved)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve ticket",
			goerr.V(DraftIDKey, draftID),
			goerr.V(TicketIDKey, updated.TicketID),
		)
	}

	result.MemorySync, result.EntityLinks = uc.syncResolution(ctx, ticket, updated)
	uc.metrics.observeMemorySync(result.MemorySync.Status)
	return result, nil
}

func (uc *DraftUseCase) syncResolution(ctx context.Context, ticket *model.Ticket, draft *model.Draft) (*model.MemorySync, []model.EntityLink) {
	logger := logging.From(ctx).With(TicketIDKey, ticket.ID, DraftIDKey, draft.ID)
	links := ExtractEntityLinks(ticket.Subject, ticket.Description, draft.Content, draft.ContextUsed)

	if uc.copilot == nil {
		return &model.MemorySync{Status: types.MemorySyncSkipped, Reason: ErrCopilotUnavailable.Error()}, links
	}
	if !uc.copilot.MemoryEnabled() {
		return &model.MemorySync{Status: types.MemorySyncSkipped, Reason: uc.copilot.MemoryDisabledReason()}, links
	}

	customer, err := uc.repo.Customer().Get(ctx, ticket.CustomerID)
	if err != nil {
		logger.Warn("cannot load customer for memory sync", "error", err.Error())
		return &model.MemorySync{Status: types.MemorySyncDegraded, Reason: "customer lookup failed: " + err.Error()}, links
	}

	links, err = uc.copilot.SaveAcceptedResolution(ctx, ticket, customer, draft)
	if err != nil {
		logger.Warn("failed to save accepted resolution", "error", err.Error())
		return &model.MemorySync{Status: types.MemorySyncDegraded, Reason: err.Error()}, links
	}

	logger.Info("accepted resolution saved to memory", "entity_links", len(links))
	return &model.MemorySync{Status: types.MemorySyncOK}, links
}

func (uc *DraftUseCase) loadTicket(ctx context.Context, ticketID int64) (*model.Ticket, *model.Customer, error) {
	ticket, err := uc.repo.Ticket().Get(ctx, ticketID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil, goerr.Wrap(ErrTicketNotFound, "ticket does not exist", goerr.V(TicketIDKey, ticketID))
		}
		return nil, nil, goerr.Wrap(err, "failed to get ticket", goerr.V(TicketIDKey, ticketID))
	}

	customer, err := uc.repo.Customer().Get(ctx, ticket.CustomerID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil, goerr.Wrap(ErrCustomerNotFound, "ticket customer does not exist",
				goerr.V(TicketIDKey, ticketID),
				goerr.V(CustomerIDKey, ticket.CustomerID),
			)
		}
		return nil, nil, goerr.Wrap(err, "failed to get customer", goerr.V(CustomerIDKey, ticket.CustomerID))
	}

	return ticket, customer, nil
}
