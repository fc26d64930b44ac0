package usecase_test

import (
	"context"
	"sync"

	"github.com/secmon-lab/briareos/pkg/domain/model"
)

type runCall struct {
	SystemPrompt   string
	UserPrompt     string
	ConversationID string
}

type mockRuntime struct {
	mu    sync.Mutex
	calls []runCall
	run   func(ctx context.Context, systemPrompt, userPrompt, conversationID string) (model.Transcript, error)
}

func (m *mockRuntime) Name() string {
	return "mock_runtime"
}

func (m *mockRuntime) Run(ctx context.Context, systemPrompt, userPrompt, conversationID string) (model.Transcript, error) {
	m.mu.Lock()
	m.calls = append(m.calls, runCall{
		SystemPrompt:   systemPrompt,
		UserPrompt:     userPrompt,
		ConversationID: conversationID,
	})
	m.mu.Unlock()
	return m.run(ctx, systemPrompt, userPrompt, conversationID)
}

func (m *mockRuntime) Calls() []runCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]runCall(nil), m.calls...)
}

// replyRuntime answers every run with a single assistant message
func replyRuntime(text string) *mockRuntime {
	return &mockRuntime{
		run: func(ctx context.Context, systemPrompt, userPrompt, conversationID string) (model.Transcript, error) {
			return model.Transcript{
				model.SystemMessage(systemPrompt),
				model.HumanMessage(userPrompt),
				model.AssistantMessage(text),
			}, nil
		},
	}
}

type completeCall struct {
	SystemPrompt string
	UserPrompt   string
}

type mockLanguageModel struct {
	mu       sync.Mutex
	calls    []completeCall
	complete func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

func (m *mockLanguageModel) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, completeCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt})
	m.mu.Unlock()
	if m.complete == nil {
		return "", nil
	}
	return m.complete(ctx, systemPrompt, userPrompt)
}

func (m *mockLanguageModel) Calls() []completeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]completeCall(nil), m.calls...)
}

type mockMemoryStore struct {
	mu        sync.Mutex
	search    map[model.MemoryScope][]model.MemoryHit
	list      map[model.MemoryScope][]model.MemoryHit
	failScope map[model.MemoryScope]error
	addErr    error
	added     map[model.MemoryScope][][]model.Message
	limits    map[model.MemoryScope]int
}

func newMockMemoryStore() *mockMemoryStore {
	return &mockMemoryStore{
		search:    map[model.MemoryScope][]model.MemoryHit{},
		list:      map[model.MemoryScope][]model.MemoryHit{},
		failScope: map[model.MemoryScope]error{},
		added:     map[model.MemoryScope][][]model.Message{},
		limits:    map[model.MemoryScope]int{},
	}
}

func (m *mockMemoryStore) Search(ctx context.Context, query string, scope model.MemoryScope, limit int) ([]model.MemoryHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limits[scope] = limit
	if err := m.failScope[scope]; err != nil {
		return nil, err
	}
	return m.search[scope], nil
}

func (m *mockMemoryStore) ListAll(ctx context.Context, scope model.MemoryScope, limit int) ([]model.MemoryHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limits[scope] = limit
	if err := m.failScope[scope]; err != nil {
		return nil, err
	}
	return m.list[scope], nil
}

func (m *mockMemoryStore) AddInteraction(ctx context.Context, scope model.MemoryScope, messages []model.Message, metadata map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.added[scope] = append(m.added[scope], messages)
	return nil
}

type mockKnowledge struct {
	hits []model.KnowledgeHit
	err  error
}

func (m *mockKnowledge) Search(ctx context.Context, query string, topK int) ([]model.KnowledgeHit, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hits[:min(topK, len(m.hits))], nil
}

type mockNotifier struct {
	mu     sync.Mutex
	drafts []*model.Draft
}

func (m *mockNotifier) NotifyDraft(ctx context.Context, ticket *model.Ticket, customer *model.Customer, draft *model.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts = append(m.drafts, draft)
	return nil
}

func (m *mockNotifier) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.drafts)
}

func float64Ptr(v float64) *float64 {
	return &v
}
