package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
)

type ticketRepository struct {
	mu      sync.RWMutex
	tickets map[int64]*model.Ticket
	nextID  int64
}

func newTicketRepository() *ticketRepository {
	return &ticketRepository{
		tickets: make(map[int64]*model.Ticket),
		nextID:  1,
	}
}

func copyTicket(t *model.Ticket) *model.Ticket {
	copied := *t
	return &copied
}

func (r *ticketRepository) Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyTicket(ticket)
	created.ID = r.nextID
	created.Status = created.Status.Normalize()
	created.Priority = created.Priority.Normalize()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.tickets[created.ID] = created
	r.nextID++

	return copyTicket(created), nil
}

func (r *ticketRepository) Get(ctx context.Context, id int64) (*model.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tickets[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "ticket not found", goerr.V("id", id))
	}
	return copyTicket(t), nil
}

func (r *ticketRepository) List(ctx context.Context) ([]*model.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Ticket, 0, len(r.tickets))
	for _, t := range r.tickets {
		result = append(result, copyTicket(t))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID > result[j].ID
	})

	return result, nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id int64, status types.TicketStatus) (*model.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "ticket not found", goerr.V("id", id))
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()

	return copyTicket(t), nil
}

func (r *ticketRepository) CountByCustomer(ctx context.Context, customerID int64, status types.TicketStatus) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, t := range r.tickets {
		if t.CustomerID == customerID && t.Status == status {
			count++
		}
	}
	return count, nil
}
