package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/model"
)

const (
	DefaultMemoryListLimit   = 20
	DefaultMemorySearchLimit = 10
	MaxMemorySearchLimit     = 25
)

// MemoryUseCase exposes the remembered facts of customers
type MemoryUseCase struct {
	tickets *TicketUseCase
	copilot *Copilot
}

func NewMemoryUseCase(tickets *TicketUseCase, copilot *Copilot) *MemoryUseCase {
	return &MemoryUseCase{
		tickets: tickets,
		copilot: copilot,
	}
}

// ClampMemorySearchLimit bounds a requested search limit to 1..25
func ClampMemorySearchLimit(limit int) int {
	return max(1, min(limit, MaxMemorySearchLimit))
}

// ListCustomerMemories returns the customer and up to 20 of their memories
func (uc *MemoryUseCase) ListCustomerMemories(ctx context.Context, customerID int64) (*model.Customer, []model.MemoryHit, error) {
	if uc.copilot == nil {
		return nil, nil, goerr.Wrap(ErrCopilotUnavailable, "cannot list memories", goerr.V(CustomerIDKey, customerID))
	}

	customer, err := uc.tickets.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}

	return customer, uc.copilot.ListCustomerMemories(ctx, customer.Email, customer.Company, DefaultMemoryListLimit), nil
}

// SearchCustomerMemories searches the customer and company memories of a
// customer. limit is clamped with ClampMemorySearchLimit.
func (uc *MemoryUseCase) SearchCustomerMemories(ctx context.Context, customerID int64, query string, limit int) (*model.Customer, []model.MemoryHit, error) {
	if uc.copilot == nil {
		return nil, nil, goerr.Wrap(ErrCopilotUnavailable, "cannot search memories", goerr.V(CustomerIDKey, customerID))
	}

	customer, err := uc.tickets.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, nil, goerr.Wrap(ErrEmptyQuery, "memory search needs a query", goerr.V(CustomerIDKey, customerID))
	}

	hits := uc.copilot.SearchMemoryScopes(ctx, query, customer.Email, customer.Company, ClampMemorySearchLimit(limit))
	return customer, hits, nil
}
