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

type knowledgeChunkRepository struct {
	db *sql.DB
}

func (r *knowledgeChunkRepository) Upsert(ctx context.Context, chunks []*model.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO knowledge_chunks (id, source, chunk_index, content, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return goerr.Wrap(err, "failed to prepare upsert")
	}
	defer stmt.Close()

	now := formatTime(time.Now())
	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx,
			string(c.ID), c.Source, c.ChunkIndex, c.Content, encodeEmbedding(c.Embedding), now); err != nil {
			return goerr.Wrap(err, "failed to upsert knowledge chunk", goerr.V("id", c.ID))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit knowledge chunks", goerr.V("count", len(chunks)))
	}
	return nil
}

func (r *knowledgeChunkRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM knowledge_chunks`).Scan(&count); err != nil {
		return 0, goerr.Wrap(err, "failed to count knowledge chunks")
	}
	return count, nil
}

func (r *knowledgeChunkRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM knowledge_chunks`); err != nil {
		return goerr.Wrap(err, "failed to delete knowledge chunks")
	}
	return nil
}

func (r *knowledgeChunkRepository) FindByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*model.ScoredKnowledgeChunk, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, source, chunk_index, content, embedding, created_at
		 FROM knowledge_chunks WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query knowledge chunks")
	}
	defer rows.Close()

	candidates := make([]*model.ScoredKnowledgeChunk, 0)
	for rows.Next() {
		var (
			c         model.KnowledgeChunk
			id        string
			blob      []byte
			createdAt string
		)
		if err := rows.Scan(&id, &c.Source, &c.ChunkIndex, &c.Content, &blob, &createdAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan knowledge chunk")
		}
		c.ID = model.KnowledgeChunkID(id)
		if c.Embedding, err = decodeEmbedding(blob); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		candidates = append(candidates, &model.ScoredKnowledgeChunk{
			Chunk:    &c,
			Distance: vector.CosineDistance(embedding, c.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate knowledge chunks")
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Distance == candidates[j].Distance {
			return candidates[i].Chunk.ID < candidates[j].Chunk.ID
		}
		return candidates[i].Distance < candidates[j].Distance
	})

	if limit < len(candidates) {
		candidates = candidates[:limit]
	}
	return candidates, nil
}
