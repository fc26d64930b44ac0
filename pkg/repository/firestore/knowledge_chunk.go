package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/utils/vector"
	"google.golang.org/api/iterator"
)

const distanceResultField = "VectorDistance"

type knowledgeChunkDoc struct {
	ID         model.KnowledgeChunkID `firestore:"ID"`
	Source     string                 `firestore:"Source"`
	ChunkIndex int                    `firestore:"ChunkIndex"`
	Content    string                 `firestore:"Content"`
	Embedding  firestore.Vector32     `firestore:"Embedding,omitempty"`
	CreatedAt  time.Time              `firestore:"CreatedAt"`
}

type knowledgeChunkRepository struct {
	client *firestore.Client
	names  *collectionNames
}

func (r *knowledgeChunkRepository) chunks() *firestore.CollectionRef {
	return r.client.Collection(r.names.name(CollectionKnowledgeChunks))
}

func (r *knowledgeChunkRepository) Upsert(ctx context.Context, chunks []*model.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	now := time.Now().UTC()
	bulkWriter := r.client.BulkWriter(ctx)
	for _, c := range chunks {
		doc := &knowledgeChunkDoc{
			ID:         c.ID,
			Source:     c.Source,
			ChunkIndex: c.ChunkIndex,
			Content:    c.Content,
			CreatedAt:  now,
		}
		if len(c.Embedding) > 0 {
			doc.Embedding = firestore.Vector32(c.Embedding)
		}
		if _, err := bulkWriter.Set(r.chunks().Doc(string(c.ID)), doc); err != nil {
			bulkWriter.End()
			return goerr.Wrap(err, "failed to upsert knowledge chunk", goerr.V("id", c.ID))
		}
	}
	bulkWriter.End()

	return nil
}

func (r *knowledgeChunkRepository) Count(ctx context.Context) (int, error) {
	iter := r.chunks().Select().Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to count knowledge chunks")
		}
		count++
	}
	return count, nil
}

func (r *knowledgeChunkRepository) DeleteAll(ctx context.Context) error {
	iter := r.chunks().Select().Documents(ctx)
	defer iter.Stop()

	bulkWriter := r.client.BulkWriter(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			bulkWriter.End()
			return goerr.Wrap(err, "failed to iterate knowledge chunks for deletion")
		}
		if _, err := bulkWriter.Delete(doc.Ref); err != nil {
			bulkWriter.End()
			return goerr.Wrap(err, "failed to delete knowledge chunk", goerr.V("id", doc.Ref.ID))
		}
	}
	bulkWriter.End()

	return nil
}

func (r *knowledgeChunkRepository) FindByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*model.ScoredKnowledgeChunk, error) {
	vq := r.chunks().
		FindNearest("Embedding", firestore.Vector32(embedding), limit, firestore.DistanceMeasureCosine,
			&firestore.FindNearestOptions{DistanceResultField: distanceResultField})

	iter := vq.Documents(ctx)
	defer iter.Stop()

	results := make([]*model.ScoredKnowledgeChunk, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate vector search results")
		}

		var d knowledgeChunkDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal knowledge chunk from vector search")
		}

		chunk := &model.KnowledgeChunk{
			ID:         d.ID,
			Source:     d.Source,
			ChunkIndex: d.ChunkIndex,
			Content:    d.Content,
			Embedding:  []float32(d.Embedding),
			CreatedAt:  d.CreatedAt,
		}

		distance := vector.CosineDistance(embedding, chunk.Embedding)
		if v, err := doc.DataAt(distanceResultField); err == nil {
			if f, ok := v.(float64); ok {
				distance = f
			}
		}

		results = append(results, &model.ScoredKnowledgeChunk{Chunk: chunk, Distance: distance})
	}

	return results, nil
}
