package firestore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ticketRepository struct {
	client  *firestore.Client
	names   *collectionNames
	counter *counter
}

func (r *ticketRepository) tickets() *firestore.CollectionRef {
	return r.client.Collection(r.names.name(CollectionTickets))
}

func (r *ticketRepository) Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	nextID, err := r.counter.next(ctx, "ticket")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := &model.Ticket{
		ID:          nextID,
		CustomerID:  ticket.CustomerID,
		Subject:     ticket.Subject,
		Description: ticket.Description,
		Status:      ticket.Status.Normalize(),
		Priority:    ticket.Priority.Normalize(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := r.tickets().Doc(fmt.Sprintf("%d", created.ID)).Set(ctx, created); err != nil {
		return nil, goerr.Wrap(err, "failed to create ticket", goerr.V("id", created.ID))
	}
	return created, nil
}

func (r *ticketRepository) Get(ctx context.Context, id int64) (*model.Ticket, error) {
	snap, err := r.tickets().Doc(fmt.Sprintf("%d", id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "ticket not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get ticket", goerr.V("id", id))
	}

	var t model.Ticket
	if err := snap.DataTo(&t); err != nil {
		return nil, goerr.Wrap(err, "failed to decode ticket", goerr.V("id", id))
	}
	return &t, nil
}

func (r *ticketRepository) List(ctx context.Context) ([]*model.Ticket, error) {
	iter := r.tickets().Documents(ctx)
	defer iter.Stop()

	tickets := make([]*model.Ticket, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate tickets")
		}

		var t model.Ticket
		if err := snap.DataTo(&t); err != nil {
			return nil, goerr.Wrap(err, "failed to decode ticket", goerr.V("doc_id", snap.Ref.ID))
		}
		tickets = append(tickets, &t)
	}

	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].ID > tickets[j].ID
	})
	return tickets, nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id int64, ticketStatus types.TicketStatus) (*model.Ticket, error) {
	ref := r.tickets().Doc(fmt.Sprintf("%d", id))
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "Status", Value: ticketStatus},
		{Path: "UpdatedAt", Value: time.Now().UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "ticket not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to update ticket status", goerr.V("id", id))
	}
	return r.Get(ctx, id)
}

func (r *ticketRepository) CountByCustomer(ctx context.Context, customerID int64, ticketStatus types.TicketStatus) (int, error) {
	iter := r.tickets().
		Where("CustomerID", "==", customerID).
		Where("Status", "==", ticketStatus).
		Select().
		Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to count tickets", goerr.V("customer_id", customerID))
		}
		count++
	}
	return count, nil
}
