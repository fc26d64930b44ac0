package agent

import "sync"

type turn struct {
	prompt string
	answer string
}

// historyStore keeps the latest turns of each conversation, keyed by
// conversation ID
type historyStore struct {
	mu       sync.Mutex
	maxTurns int
	byID     map[string][]turn
}

func newHistoryStore(maxTurns int) *historyStore {
	return &historyStore{
		maxTurns: maxTurns,
		byID:     make(map[string][]turn),
	}
}

func (h *historyStore) turns(conversationID string) []turn {
	if conversationID == "" || h.maxTurns <= 0 {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]turn, len(h.byID[conversationID]))
	copy(out, h.byID[conversationID])
	return out
}

func (h *historyStore) append(conversationID, prompt, answer string) {
	if conversationID == "" || h.maxTurns <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	turns := append(h.byID[conversationID], turn{prompt: prompt, answer: answer})
	if len(turns) > h.maxTurns {
		turns = turns[len(turns)-h.maxTurns:]
	}
	h.byID[conversationID] = turns
}
