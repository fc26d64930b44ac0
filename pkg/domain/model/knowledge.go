package model

import (
	"time"
)

// EmbeddingDimension is the dimension of the embedding vector
// Gemini text-embedding-004 uses 768 dimensions
const EmbeddingDimension = 768

// KnowledgeChunkID identifies a chunk as <file stem>-<index>-<content hash>
type KnowledgeChunkID string

// KnowledgeChunk is one indexed piece of a knowledge-base document
type KnowledgeChunk struct {
	ID         KnowledgeChunkID
	Source     string // File name the chunk came from
	ChunkIndex int
	Content    string
	Embedding  []float32
	CreatedAt  time.Time
}

// ScoredKnowledgeChunk pairs a chunk with its cosine distance to a query.
type ScoredKnowledgeChunk struct {
	Chunk    *KnowledgeChunk
	Distance float64
}

// KnowledgeHit is a retrieved knowledge-base chunk, best match first.
type KnowledgeHit struct {
	Content  string   `json:"content"`
	Source   string   `json:"source"`
	Distance *float64 `json:"distance"`
}

// IngestResult summarizes a knowledge-base ingestion run
type IngestResult struct {
	FilesIndexed    int `json:"files_indexed"`
	ChunksIndexed   int `json:"chunks_indexed"`
	CollectionCount int `json:"collection_count"`
}
