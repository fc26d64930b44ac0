package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/interfaces"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
	"github.com/secmon-lab/briareos/pkg/utils/logging"
)

// TicketUseCase opens and looks up tickets
type TicketUseCase struct {
	repo   interfaces.Repository
	drafts *DraftUseCase
}

func NewTicketUseCase(repo interfaces.Repository, drafts *DraftUseCase) *TicketUseCase {
	return &TicketUseCase{
		repo:   repo,
		drafts: drafts,
	}
}

// CreateTicket creates the customer if needed, opens the ticket and, when
// requested, starts draft generation in the background.
func (uc *TicketUseCase) CreateTicket(ctx context.Context, input model.NewTicket) (*model.TicketWithCustomer, error) {
	if err := input.Validate(); err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidTicket, err), "invalid ticket input")
	}

	customer, err := uc.repo.Customer().CreateOrGet(ctx, &model.Customer{
		Email:   input.CustomerEmail,
		Name:    input.CustomerName,
		Company: input.CustomerCompany,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create or get customer", goerr.V("email", input.CustomerEmail))
	}

	ticket, err := uc.repo.Ticket().Create(ctx, &model.Ticket{
		CustomerID:  customer.ID,
		Subject:     input.Subject,
		Description: input.Description,
		Status:      types.TicketStatusOpen,
		Priority:    input.Priority,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create ticket", goerr.V(CustomerIDKey, customer.ID))
	}

	logging.From(ctx).Info("ticket created",
		TicketIDKey, ticket.ID,
		CustomerIDKey, customer.ID,
		"auto_generate", input.AutoGenerate,
	)

	if input.AutoGenerate && uc.drafts != nil {
		uc.drafts.GenerateInBackground(ctx, ticket.ID)
	}

	return &model.TicketWithCustomer{Ticket: ticket, Customer: customer}, nil
}

// ListTickets returns every ticket newest first, joined with its customer
func (uc *TicketUseCase) ListTickets(ctx context.Context) ([]*model.TicketWithCustomer, error) {
	tickets, err := uc.repo.Ticket().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tickets")
	}

	customers := make(map[int64]*model.Customer)
	result := make([]*model.TicketWithCustomer, 0, len(tickets))
	for _, ticket := range tickets {
		customer, ok := customers[ticket.CustomerID]
		if !ok {
			customer, err = uc.GetCustomer(ctx, ticket.CustomerID)
			if err != nil {
				return nil, err
			}
			customers[ticket.CustomerID] = customer
		}
		result = append(result, &model.TicketWithCustomer{Ticket: ticket, Customer: customer})
	}
	return result, nil
}

// GetTicket returns the ticket joined with its customer
func (uc *TicketUseCase) GetTicket(ctx context.Context, ticketID int64) (*model.TicketWithCustomer, error) {
	ticket, err := uc.repo.Ticket().Get(ctx, ticketID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrTicketNotFound, "ticket does not exist", goerr.V(TicketIDKey, ticketID))
		}
		return nil, goerr.Wrap(err, "failed to get ticket", goerr.V(TicketIDKey, ticketID))
	}

	customer, err := uc.GetCustomer(ctx, ticket.CustomerID)
	if err != nil {
		return nil, err
	}
	return &model.TicketWithCustomer{Ticket: ticket, Customer: customer}, nil
}

func (uc *TicketUseCase) GetCustomer(ctx context.Context, customerID int64) (*model.Customer, error) {
	customer, err := uc.repo.Customer().Get(ctx, customerID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrCustomerNotFound, "customer does not exist", goerr.V(CustomerIDKey, customerID))
		}
		return nil, goerr.Wrap(err, "failed to get customer", goerr.V(CustomerIDKey, customerID))
	}
	return customer, nil
}
