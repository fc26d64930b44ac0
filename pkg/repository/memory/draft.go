package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/model"
)

// draftRecord keeps the context as the serialized blob, the same shape the
// persistent backends store.
type draftRecord struct {
	draft   model.Draft
	context []byte
}

type draftRepository struct {
	mu     sync.RWMutex
	drafts map[int64]*draftRecord
	nextID int64
}

func newDraftRepository() *draftRepository {
	return &draftRepository{
		drafts: make(map[int64]*draftRecord),
		nextID: 1,
	}
}

func toDraftRecord(d *model.Draft) (*draftRecord, error) {
	blob, err := model.MarshalContext(d.ContextUsed)
	if err != nil {
		return nil, err
	}
	rec := &draftRecord{draft: *d, context: blob}
	rec.draft.ContextUsed = nil
	return rec, nil
}

func (rec *draftRecord) toModel() (*model.Draft, error) {
	d := rec.draft
	c, err := model.UnmarshalContext(rec.context)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode draft context", goerr.V("id", d.ID))
	}
	d.ContextUsed = c
	return &d, nil
}

func (r *draftRepository) Create(ctx context.Context, draft *model.Draft) (*model.Draft, error) {
	rec, err := toDraftRecord(draft)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	rec.draft.ID = r.nextID
	rec.draft.CreatedAt = now
	rec.draft.UpdatedAt = now
	r.drafts[rec.draft.ID] = rec
	r.nextID++

	return rec.toModel()
}

func (r *draftRepository) Get(ctx context.Context, id int64) (*model.Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.drafts[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "draft not found", goerr.V("id", id))
	}
	return rec.toModel()
}

func (r *draftRepository) GetLatestByTicket(ctx context.Context, ticketID int64) (*model.Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *draftRecord
	for _, rec := range r.drafts {
		if rec.draft.TicketID != ticketID {
			continue
		}
		if latest == nil ||
			rec.draft.CreatedAt.After(latest.draft.CreatedAt) ||
			(rec.draft.CreatedAt.Equal(latest.draft.CreatedAt) && rec.draft.ID > latest.draft.ID) {
			latest = rec
		}
	}

	if latest == nil {
		return nil, goerr.Wrap(ErrNotFound, "draft not found", goerr.V("ticket_id", ticketID))
	}
	return latest.toModel()
}

func (r *draftRepository) Update(ctx context.Context, draft *model.Draft) (*model.Draft, error) {
	rec, err := toDraftRecord(draft)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.drafts[draft.ID]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "draft not found", goerr.V("id", draft.ID))
	}

	rec.draft.TicketID = existing.draft.TicketID
	rec.draft.CreatedAt = existing.draft.CreatedAt
	rec.draft.UpdatedAt = time.Now().UTC()
	r.drafts[draft.ID] = rec

	return rec.toModel()
}
