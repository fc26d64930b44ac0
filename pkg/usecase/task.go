package usecase

import (
	"sync"
	"time"

	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
)

const (
	defaultTaskHistory   = 20
	defaultTaskRetention = 24 * time.Hour
	taskPruneInterval    = time.Minute
)

// TaskTracker keeps the generation attempts of every ticket in memory.
// It does not serialize attempts: two tasks of the same ticket may run at
// the same time and the draft created last wins.
type TaskTracker struct {
	mu         sync.RWMutex
	tasks      map[model.GenerationTaskID]*model.GenerationTask
	byTicket   map[int64][]model.GenerationTaskID
	maxHistory int
	retention  time.Duration
	lastPrune  time.Time
	now        func() time.Time
}

func NewTaskTracker() *TaskTracker {
	return &TaskTracker{
		tasks:      make(map[model.GenerationTaskID]*model.GenerationTask),
		byTicket:   make(map[int64][]model.GenerationTaskID),
		maxHistory: defaultTaskHistory,
		retention:  defaultTaskRetention,
		now:        time.Now,
	}
}

// Enqueue registers a queued task for the ticket and returns a snapshot
func (t *TaskTracker) Enqueue(ticketID int64, mode types.GenerationMode) model.GenerationTask {
	t.mu.Lock()
	defer t.mu.Unlock()

	if now := t.now(); now.Sub(t.lastPrune) >= taskPruneInterval {
		t.prune(now)
		t.lastPrune = now
	}

	task := &model.GenerationTask{
		ID:        model.NewGenerationTaskID(),
		TicketID:  ticketID,
		Mode:      mode,
		Status:    types.TaskStatusQueued,
		CreatedAt: t.now(),
	}
	t.tasks[task.ID] = task

	ids := append(t.byTicket[ticketID], task.ID)
	if len(ids) > t.maxHistory {
		for _, old := range ids[:len(ids)-t.maxHistory] {
			delete(t.tasks, old)
		}
		ids = ids[len(ids)-t.maxHistory:]
	}
	t.byTicket[ticketID] = ids

	return *task
}

// Start marks a task as running
func (t *TaskTracker) Start(id model.GenerationTaskID) {
	t.update(id, func(task *model.GenerationTask) {
		now := t.now()
		task.Status = types.TaskStatusRunning
		task.StartedAt = &now
	})
}

// Succeed marks a task as finished with the stored draft
func (t *TaskTracker) Succeed(id model.GenerationTaskID, draftID int64) {
	t.update(id, func(task *model.GenerationTask) {
		now := t.now()
		task.Status = types.TaskStatusSucceeded
		task.DraftID = draftID
		task.FinishedAt = &now
	})
}

// Fail marks a task as failed. draftID is the failure draft, or 0 when
// nothing could be stored.
func (t *TaskTracker) Fail(id model.GenerationTaskID, draftID int64, reason string) {
	t.update(id, func(task *model.GenerationTask) {
		now := t.now()
		task.Status = types.TaskStatusFailed
		task.DraftID = draftID
		task.Error = reason
		task.FinishedAt = &now
	})
}

// Latest returns the most recently enqueued task of the ticket
func (t *TaskTracker) Latest(ticketID int64) (*model.GenerationTask, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := t.byTicket[ticketID]
	if len(ids) == 0 {
		return nil, false
	}
	task := *t.tasks[ids[len(ids)-1]]
	return &task, true
}

// History returns the tracked tasks of the ticket, newest first
func (t *TaskTracker) History(ticketID int64) []*model.GenerationTask {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := t.byTicket[ticketID]
	result := make([]*model.GenerationTask, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		task := *t.tasks[ids[i]]
		result = append(result, &task)
	}
	return result
}

// Prune forgets tickets whose newest task finished more than the retention
// period ago and returns how many tickets were dropped. Enqueue calls it
// periodically.
func (t *TaskTracker) Prune() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.prune(t.now())
}

func (t *TaskTracker) prune(now time.Time) int {
	dropped := 0
	for ticketID, ids := range t.byTicket {
		if len(ids) == 0 {
			delete(t.byTicket, ticketID)
			continue
		}
		newest := t.tasks[ids[len(ids)-1]]
		if newest == nil || newest.FinishedAt == nil || now.Sub(*newest.FinishedAt) < t.retention {
			continue
		}
		for _, id := range ids {
			delete(t.tasks, id)
		}
		delete(t.byTicket, ticketID)
		dropped++
	}
	return dropped
}

func (t *TaskTracker) update(id model.GenerationTaskID, fn func(*model.GenerationTask)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if task, ok := t.tasks[id]; ok {
		fn(task)
	}
}
