package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
)

type ticketRepository struct {
	db *sql.DB
}

const ticketColumns = `id, customer_id, subject, description, status, priority, created_at, updated_at`

func scanTicket(row interface{ Scan(...any) error }) (*model.Ticket, error) {
	var t model.Ticket
	var status, priority, createdAt, updatedAt string
	if err := row.Scan(&t.ID, &t.CustomerID, &t.Subject, &t.Description, &status, &priority, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	t.Status = types.TicketStatus(status)
	t.Priority = types.TicketPriority(priority)

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ticketRepository) Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	now := time.Now().UTC()
	created := *ticket
	created.Status = created.Status.Normalize()
	created.Priority = created.Priority.Normalize()
	created.CreatedAt = now
	created.UpdatedAt = now

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tickets (customer_id, subject, description, status, priority, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		created.CustomerID, created.Subject, created.Description,
		string(created.Status), string(created.Priority),
		formatTime(now), formatTime(now))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert ticket", goerr.V("customer_id", created.CustomerID))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get ticket id")
	}
	created.ID = id
	return &created, nil
}

func (r *ticketRepository) Get(ctx context.Context, id int64) (*model.Ticket, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id)
	t, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "ticket not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get ticket", goerr.V("id", id))
	}
	return t, nil
}

func (r *ticketRepository) List(ctx context.Context) ([]*model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY id DESC`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tickets")
	}
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan ticket")
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate tickets")
	}
	return tickets, nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id int64, status types.TicketStatus) (*model.Ticket, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), formatTime(time.Now()), id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update ticket status", goerr.V("id", id))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, goerr.Wrap(ErrNotFound, "ticket not found", goerr.V("id", id))
	}
	return r.Get(ctx, id)
}

func (r *ticketRepository) CountByCustomer(ctx context.Context, customerID int64, status types.TicketStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE customer_id = ? AND status = ?`,
		customerID, string(status)).Scan(&count)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count tickets", goerr.V("customer_id", customerID))
	}
	return count, nil
}
