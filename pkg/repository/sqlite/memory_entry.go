package sqlite

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/utils/vector"
)

type memoryEntryRepository struct {
	db *sql.DB
}

const memoryEntryColumns = `id, scope, text, metadata, embedding, created_at`

func scanMemoryEntry(row interface{ Scan(...any) error }) (*model.MemoryEntry, error) {
	var (
		m         model.MemoryEntry
		id, scope string
		metadata  string
		embedding []byte
		createdAt string
	)
	if err := row.Scan(&id, &scope, &m.Text, &metadata, &embedding, &createdAt); err != nil {
		return nil, err
	}
	m.ID = model.MemoryEntryID(id)
	m.Scope = model.MemoryScope(scope)

	var err error
	if m.Metadata, err = decodeMetadata(metadata); err != nil {
		return nil, err
	}
	if m.Embedding, err = decodeEmbedding(embedding); err != nil {
		return nil, err
	}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memoryEntryRepository) Create(ctx context.Context, entry *model.MemoryEntry) (*model.MemoryEntry, error) {
	created := *entry
	if created.ID == "" {
		created.ID = model.NewMemoryEntryID()
	}
	created.CreatedAt = time.Now().UTC()

	metadata, err := encodeMetadata(created.Metadata)
	if err != nil {
		return nil, err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO memory_entries (`+memoryEntryColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		string(created.ID), string(created.Scope), created.Text, metadata,
		encodeEmbedding(created.Embedding), formatTime(created.CreatedAt))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert memory entry",
			goerr.V("id", created.ID), goerr.V("scope", created.Scope))
	}
	return &created, nil
}

func (r *memoryEntryRepository) query(ctx context.Context, query string, args ...any) ([]*model.MemoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query memory entries")
	}
	defer rows.Close()

	entries := make([]*model.MemoryEntry, 0)
	for rows.Next() {
		m, err := scanMemoryEntry(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan memory entry")
		}
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate memory entries")
	}
	return entries, nil
}

func (r *memoryEntryRepository) List(ctx context.Context, scope model.MemoryScope, limit int) ([]*model.MemoryEntry, error) {
	q := `SELECT ` + memoryEntryColumns + ` FROM memory_entries WHERE scope = ? ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		return r.query(ctx, q+` LIMIT ?`, string(scope), limit)
	}
	return r.query(ctx, q, string(scope))
}

// FindByEmbedding ranks every embedded entry of the scope in process.
// Scopes hold one customer's or one company's memories, so the set stays small.
func (r *memoryEntryRepository) FindByEmbedding(ctx context.Context, scope model.MemoryScope, embedding []float32, limit int) ([]*model.MemoryEntry, error) {
	entries, err := r.query(ctx,
		`SELECT `+memoryEntryColumns+` FROM memory_entries WHERE scope = ? AND embedding IS NOT NULL`,
		string(scope))
	if err != nil {
		return nil, err
	}

	scores := make(map[model.MemoryEntryID]float64, len(entries))
	for _, m := range entries {
		scores[m.ID] = vector.CosineSimilarity(embedding, m.Embedding)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return scores[entries[i].ID] > scores[entries[j].ID]
	})

	if limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}
