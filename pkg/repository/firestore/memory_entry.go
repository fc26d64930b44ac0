package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"google.golang.org/api/iterator"
)

// memoryEntryDoc is the Firestore document representation of model.MemoryEntry.
// Embedding is stored as firestore.Vector32 for FindNearest vector search.
type memoryEntryDoc struct {
	ID        model.MemoryEntryID `firestore:"ID"`
	Scope     model.MemoryScope   `firestore:"Scope"`
	Text      string              `firestore:"Text"`
	Metadata  map[string]any      `firestore:"Metadata"`
	Embedding firestore.Vector32  `firestore:"Embedding,omitempty"`
	CreatedAt time.Time           `firestore:"CreatedAt"`
}

func toMemoryEntryDoc(m *model.MemoryEntry) *memoryEntryDoc {
	doc := &memoryEntryDoc{
		ID:        m.ID,
		Scope:     m.Scope,
		Text:      m.Text,
		Metadata:  m.Metadata,
		CreatedAt: m.CreatedAt,
	}
	if len(m.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(m.Embedding)
	}
	return doc
}

func fromMemoryEntryDoc(d *memoryEntryDoc) *model.MemoryEntry {
	m := &model.MemoryEntry{
		ID:        d.ID,
		Scope:     d.Scope,
		Text:      d.Text,
		Metadata:  d.Metadata,
		CreatedAt: d.CreatedAt,
	}
	if len(d.Embedding) > 0 {
		m.Embedding = []float32(d.Embedding)
	}
	return m
}

type memoryEntryRepository struct {
	client *firestore.Client
	names  *collectionNames
}

func (r *memoryEntryRepository) entries() *firestore.CollectionRef {
	return r.client.Collection(r.names.name(CollectionMemoryEntries))
}

func (r *memoryEntryRepository) Create(ctx context.Context, entry *model.MemoryEntry) (*model.MemoryEntry, error) {
	created := *entry
	if created.ID == "" {
		created.ID = model.NewMemoryEntryID()
	}
	created.CreatedAt = time.Now().UTC()

	if _, err := r.entries().Doc(string(created.ID)).Set(ctx, toMemoryEntryDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create memory entry", goerr.V("scope", created.Scope))
	}
	return &created, nil
}

func (r *memoryEntryRepository) List(ctx context.Context, scope model.MemoryScope, limit int) ([]*model.MemoryEntry, error) {
	q := r.entries().
		Where("Scope", "==", scope).
		OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	entries := make([]*model.MemoryEntry, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memory entries", goerr.V("scope", scope))
		}

		var d memoryEntryDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal memory entry")
		}
		entries = append(entries, fromMemoryEntryDoc(&d))
	}

	return entries, nil
}

func (r *memoryEntryRepository) FindByEmbedding(ctx context.Context, scope model.MemoryScope, embedding []float32, limit int) ([]*model.MemoryEntry, error) {
	vq := r.entries().
		Where("Scope", "==", scope).
		FindNearest("Embedding", firestore.Vector32(embedding), limit, firestore.DistanceMeasureCosine, nil)

	iter := vq.Documents(ctx)
	defer iter.Stop()

	entries := make([]*model.MemoryEntry, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memory vector search results", goerr.V("scope", scope))
		}

		var d memoryEntryDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal memory entry from vector search")
		}
		entries = append(entries, fromMemoryEntryDoc(&d))
	}

	return entries, nil
}
