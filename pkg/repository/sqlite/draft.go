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

type draftRepository struct {
	db *sql.DB
}

const draftColumns = `id, ticket_id, content, context_json, status, created_at, updated_at`

func scanDraft(row interface{ Scan(...any) error }) (*model.Draft, error) {
	var d model.Draft
	var contextJSON sql.NullString
	var status, createdAt, updatedAt string
	if err := row.Scan(&d.ID, &d.TicketID, &d.Content, &contextJSON, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	d.Status = types.DraftStatus(status)

	c, err := model.UnmarshalContext([]byte(contextJSON.String))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode draft context", goerr.V("id", d.ID))
	}
	d.ContextUsed = c

	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if d.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func contextColumn(c *model.StructuredContext) (sql.NullString, error) {
	blob, err := model.MarshalContext(c)
	if err != nil {
		return sql.NullString{}, err
	}
	if blob == nil {
		return sql.NullString{}, nil
	}
	return sql.NullString{String: string(blob), Valid: true}, nil
}

func (r *draftRepository) Create(ctx context.Context, draft *model.Draft) (*model.Draft, error) {
	contextJSON, err := contextColumn(draft.ContextUsed)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := *draft
	created.CreatedAt = now
	created.UpdatedAt = now

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO drafts (ticket_id, content, context_json, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		created.TicketID, created.Content, contextJSON, string(created.Status),
		formatTime(now), formatTime(now))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert draft", goerr.V("ticket_id", created.TicketID))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get draft id")
	}
	created.ID = id
	return &created, nil
}

func (r *draftRepository) Get(ctx context.Context, id int64) (*model.Draft, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+draftColumns+` FROM drafts WHERE id = ?`, id)
	d, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "draft not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get draft", goerr.V("id", id))
	}
	return d, nil
}

func (r *draftRepository) GetLatestByTicket(ctx context.Context, ticketID int64) (*model.Draft, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+draftColumns+` FROM drafts WHERE ticket_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		ticketID)
	d, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "draft not found", goerr.V("ticket_id", ticketID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get latest draft", goerr.V("ticket_id", ticketID))
	}
	return d, nil
}

func (r *draftRepository) Update(ctx context.Context, draft *model.Draft) (*model.Draft, error) {
	contextJSON, err := contextColumn(draft.ContextUsed)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE drafts SET content = ?, context_json = ?, status = ?, updated_at = ? WHERE id = ?`,
		draft.Content, contextJSON, string(draft.Status), formatTime(time.Now()), draft.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update draft", goerr.V("id", draft.ID))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, goerr.Wrap(ErrNotFound, "draft not found", goerr.V("id", draft.ID))
	}
	return r.Get(ctx, draft.ID)
}
