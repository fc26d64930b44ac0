package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// draftDoc stores the structured context as an opaque JSON string
type draftDoc struct {
	ID          int64             `firestore:"ID"`
	TicketID    int64             `firestore:"TicketID"`
	Content     string            `firestore:"Content"`
	ContextJSON string            `firestore:"ContextJSON"`
	Status      types.DraftStatus `firestore:"Status"`
	CreatedAt   time.Time         `firestore:"CreatedAt"`
	UpdatedAt   time.Time         `firestore:"UpdatedAt"`
}

func toDraftDoc(d *model.Draft) (*draftDoc, error) {
	blob, err := model.MarshalContext(d.ContextUsed)
	if err != nil {
		return nil, err
	}
	return &draftDoc{
		ID:          d.ID,
		TicketID:    d.TicketID,
		Content:     d.Content,
		ContextJSON: string(blob),
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

func fromDraftDoc(doc *draftDoc) (*model.Draft, error) {
	c, err := model.UnmarshalContext([]byte(doc.ContextJSON))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode draft context", goerr.V("id", doc.ID))
	}
	return &model.Draft{
		ID:          doc.ID,
		TicketID:    doc.TicketID,
		Content:     doc.Content,
		ContextUsed: c,
		Status:      doc.Status,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

type draftRepository struct {
	client  *firestore.Client
	names   *collectionNames
	counter *counter
}

func (r *draftRepository) drafts() *firestore.CollectionRef {
	return r.client.Collection(r.names.name(CollectionDrafts))
}

func (r *draftRepository) Create(ctx context.Context, draft *model.Draft) (*model.Draft, error) {
	nextID, err := r.counter.next(ctx, "draft")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := *draft
	created.ID = nextID
	created.CreatedAt = now
	created.UpdatedAt = now

	doc, err := toDraftDoc(&created)
	if err != nil {
		return nil, err
	}
	if _, err := r.drafts().Doc(fmt.Sprintf("%d", created.ID)).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create draft", goerr.V("id", created.ID))
	}
	return &created, nil
}

func (r *draftRepository) Get(ctx context.Context, id int64) (*model.Draft, error) {
	snap, err := r.drafts().Doc(fmt.Sprintf("%d", id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "draft not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get draft", goerr.V("id", id))
	}

	var doc draftDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode draft", goerr.V("id", id))
	}
	return fromDraftDoc(&doc)
}

func (r *draftRepository) GetLatestByTicket(ctx context.Context, ticketID int64) (*model.Draft, error) {
	iter := r.drafts().
		Where("TicketID", "==", ticketID).
		OrderBy("CreatedAt", firestore.Desc).
		OrderBy("ID", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "draft not found", goerr.V("ticket_id", ticketID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query latest draft", goerr.V("ticket_id", ticketID))
	}

	var doc draftDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode draft", goerr.V("ticket_id", ticketID))
	}
	return fromDraftDoc(&doc)
}

func (r *draftRepository) Update(ctx context.Context, draft *model.Draft) (*model.Draft, error) {
	existing, err := r.Get(ctx, draft.ID)
	if err != nil {
		return nil, err
	}

	updated := *draft
	updated.TicketID = existing.TicketID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	doc, err := toDraftDoc(&updated)
	if err != nil {
		return nil, err
	}
	if _, err := r.drafts().Doc(fmt.Sprintf("%d", draft.ID)).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to update draft", goerr.V("id", draft.ID))
	}
	return &updated, nil
}
