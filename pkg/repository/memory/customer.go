package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/model"
)

type customerRepository struct {
	mu        sync.RWMutex
	customers map[int64]*model.Customer
	byEmail   map[string]int64
	nextID    int64
}

func newCustomerRepository() *customerRepository {
	return &customerRepository{
		customers: make(map[int64]*model.Customer),
		byEmail:   make(map[string]int64),
		nextID:    1,
	}
}

func copyCustomer(c *model.Customer) *model.Customer {
	copied := *c
	return &copied
}

func (r *customerRepository) CreateOrGet(ctx context.Context, customer *model.Customer) (*model.Customer, error) {
	email := model.NormalizeEmail(customer.Email)
	if email == "" {
		return nil, goerr.New("customer email is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byEmail[email]; ok {
		return copyCustomer(r.customers[id]), nil
	}

	created := copyCustomer(customer)
	created.ID = r.nextID
	created.Email = email
	created.CreatedAt = time.Now().UTC()

	r.customers[created.ID] = created
	r.byEmail[email] = created.ID
	r.nextID++

	return copyCustomer(created), nil
}

func (r *customerRepository) Get(ctx context.Context, id int64) (*model.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "customer not found", goerr.V("id", id))
	}
	return copyCustomer(c), nil
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[model.NormalizeEmail(email)]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "customer not found", goerr.V("email", email))
	}
	return copyCustomer(r.customers[id]), nil
}
