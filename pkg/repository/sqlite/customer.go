package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/model"
)

type customerRepository struct {
	db *sql.DB
}

const customerColumns = `id, email, name, company, created_at`

func scanCustomer(row interface{ Scan(...any) error }) (*model.Customer, error) {
	var c model.Customer
	var createdAt string
	if err := row.Scan(&c.ID, &c.Email, &c.Name, &c.Company, &createdAt); err != nil {
		return nil, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = t
	return &c, nil
}

func (r *customerRepository) CreateOrGet(ctx context.Context, customer *model.Customer) (*model.Customer, error) {
	email := model.NormalizeEmail(customer.Email)
	if email == "" {
		return nil, goerr.New("customer email is required")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (email, name, company, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(email) DO NOTHING`,
		email, customer.Name, customer.Company, formatTime(time.Now()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert customer", goerr.V("email", email))
	}

	return r.GetByEmail(ctx, email)
}

func (r *customerRepository) Get(ctx context.Context, id int64) (*model.Customer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "customer not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get customer", goerr.V("id", id))
	}
	return c, nil
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	normalized := model.NormalizeEmail(email)
	row := r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE email = ?`, normalized)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "customer not found", goerr.V("email", normalized))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get customer", goerr.V("email", normalized))
	}
	return c, nil
}
