package memory

import (
	"github.com/secmon-lab/briareos/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	customer  *customerRepository
	ticket    *ticketRepository
	draft     *draftRepository
	memory    *memoryEntryRepository
	knowledge *knowledgeChunkRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		customer:  newCustomerRepository(),
		ticket:    newTicketRepository(),
		draft:     newDraftRepository(),
		memory:    newMemoryEntryRepository(),
		knowledge: newKnowledgeChunkRepository(),
	}
}

func (m *Memory) Customer() interfaces.CustomerRepository {
	return m.customer
}

func (m *Memory) Ticket() interfaces.TicketRepository {
	return m.ticket
}

func (m *Memory) Draft() interfaces.DraftRepository {
	return m.draft
}

func (m *Memory) MemoryEntry() interfaces.MemoryEntryRepository {
	return m.memory
}

func (m *Memory) KnowledgeChunk() interfaces.KnowledgeChunkRepository {
	return m.knowledge
}

func (m *Memory) Close() error {
	return nil
}
