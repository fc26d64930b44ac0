package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/interfaces"
)

// Collection names. Each is prefixed by WithCollectionPrefix when set.
const (
	collectionCounters        = "counters"
	collectionCustomers       = "customers"
	collectionCustomerEmails  = "customer_emails"
	CollectionTickets         = "tickets"
	CollectionDrafts          = "drafts"
	CollectionMemoryEntries   = "memory_entries"
	CollectionKnowledgeChunks = "knowledge_chunks"
)

type Firestore struct {
	client    *firestore.Client
	names     *collectionNames
	customer  *customerRepository
	ticket    *ticketRepository
	draft     *draftRepository
	memory    *memoryEntryRepository
	knowledge *knowledgeChunkRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.names.prefix = prefix
	}
}

// collectionNames is shared by all sub-repositories so a prefix applies everywhere
type collectionNames struct {
	prefix string
}

func (n *collectionNames) name(base string) string {
	return CollectionName(n.prefix, base)
}

// CollectionName returns the collection name of base under prefix
func CollectionName(prefix, base string) string {
	if prefix != "" {
		return prefix + "_" + base
	}
	return base
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	names := &collectionNames{}
	counter := &counter{client: client, names: names}

	f := &Firestore{
		client:    client,
		names:     names,
		customer:  &customerRepository{client: client, names: names, counter: counter},
		ticket:    &ticketRepository{client: client, names: names, counter: counter},
		draft:     &draftRepository{client: client, names: names, counter: counter},
		memory:    &memoryEntryRepository{client: client, names: names},
		knowledge: &knowledgeChunkRepository{client: client, names: names},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Customer() interfaces.CustomerRepository {
	return f.customer
}

func (f *Firestore) Ticket() interfaces.TicketRepository {
	return f.ticket
}

func (f *Firestore) Draft() interfaces.DraftRepository {
	return f.draft
}

func (f *Firestore) MemoryEntry() interfaces.MemoryEntryRepository {
	return f.memory
}

func (f *Firestore) KnowledgeChunk() interfaces.KnowledgeChunkRepository {
	return f.knowledge
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
