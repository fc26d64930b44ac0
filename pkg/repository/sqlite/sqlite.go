package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/interfaces"
	_ "modernc.org/sqlite"
)

// SQLite is a single-file repository backend for local deployments
type SQLite struct {
	db        *sql.DB
	customer  *customerRepository
	ticket    *ticketRepository
	draft     *draftRepository
	memory    *memoryEntryRepository
	knowledge *knowledgeChunkRepository
}

var _ interfaces.Repository = &SQLite{}

const schema = `
CREATE TABLE IF NOT EXISTS customers (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	email      TEXT    NOT NULL UNIQUE,
	name       TEXT    NOT NULL DEFAULT '',
	company    TEXT    NOT NULL DEFAULT '',
	created_at TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS tickets (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	customer_id INTEGER NOT NULL REFERENCES customers(id),
	subject     TEXT    NOT NULL,
	description TEXT    NOT NULL,
	status      TEXT    NOT NULL,
	priority    TEXT    NOT NULL,
	created_at  TEXT    NOT NULL,
	updated_at  TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tickets_customer ON tickets(customer_id, status);

CREATE TABLE IF NOT EXISTS drafts (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	ticket_id    INTEGER NOT NULL REFERENCES tickets(id),
	content      TEXT    NOT NULL,
	context_json TEXT,
	status       TEXT    NOT NULL,
	created_at   TEXT    NOT NULL,
	updated_at   TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_drafts_ticket ON drafts(ticket_id, created_at);

CREATE TABLE IF NOT EXISTS memory_entries (
	id         TEXT PRIMARY KEY,
	scope      TEXT NOT NULL,
	text       TEXT NOT NULL,
	metadata   TEXT NOT NULL DEFAULT '{}',
	embedding  BLOB,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_memory_entries_scope ON memory_entries(scope, created_at);

CREATE TABLE IF NOT EXISTS knowledge_chunks (
	id          TEXT    PRIMARY KEY,
	source      TEXT    NOT NULL,
	chunk_index INTEGER NOT NULL,
	content     TEXT    NOT NULL,
	embedding   BLOB,
	created_at  TEXT    NOT NULL
);
`

// New opens (creating if needed) the database file at path
func New(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("dir", dir))
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", path))
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, goerr.Wrap(err, "failed to apply pragma", goerr.V("pragma", p))
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to migrate sqlite schema", goerr.V("path", path))
	}

	return &SQLite{
		db:        db,
		customer:  &customerRepository{db: db},
		ticket:    &ticketRepository{db: db},
		draft:     &draftRepository{db: db},
		memory:    &memoryEntryRepository{db: db},
		knowledge: &knowledgeChunkRepository{db: db},
	}, nil
}

func (s *SQLite) Customer() interfaces.CustomerRepository {
	return s.customer
}

func (s *SQLite) Ticket() interfaces.TicketRepository {
	return s.ticket
}

func (s *SQLite) Draft() interfaces.DraftRepository {
	return s.draft
}

func (s *SQLite) MemoryEntry() interfaces.MemoryEntryRepository {
	return s.memory
}

func (s *SQLite) KnowledgeChunk() interfaces.KnowledgeChunkRepository {
	return s.knowledge
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// timeLayout is fixed width so that text ordering matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "invalid timestamp", goerr.V("value", s))
	}
	return t, nil
}
