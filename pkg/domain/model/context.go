package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/types"
)

// ContextVersion is the schema version of StructuredContext
const ContextVersion = 2

// ToolCallTrace is the normalized record of one tool invocation
type ToolCallTrace struct {
	ToolName   string               `json:"tool_name"`
	ToolCallID *string              `json:"tool_call_id"`
	Arguments  map[string]any       `json:"arguments"`
	Status     types.ToolCallStatus `json:"status"`
	Summary    string               `json:"summary"`
	Output     map[string]any       `json:"output"`
	OutputText string               `json:"output_text"`
}

type TicketContext struct {
	ID       int64                `json:"id"`
	Subject  string               `json:"subject"`
	Priority types.TicketPriority `json:"priority"`
	Status   types.TicketStatus   `json:"status"`
}

type CustomerContext struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Company string `json:"company"`
}

// ContextSignals holds counts that always equal the lengths of the
// corresponding lists in StructuredContext.
type ContextSignals struct {
	MemoryHitCount    int      `json:"memory_hit_count"`
	KnowledgeHitCount int      `json:"knowledge_hit_count"`
	ToolCallCount     int      `json:"tool_call_count"`
	ToolErrorCount    int      `json:"tool_error_count"`
	KnowledgeSources  []string `json:"knowledge_sources"`
}

type ContextHighlights struct {
	Memory    []string `json:"memory"`
	Knowledge []string `json:"knowledge"`
	Tools     []string `json:"tools"`
}

// StructuredContext is the evidence record attached to every draft.
type StructuredContext struct {
	Version       int               `json:"version"`
	Ticket        *TicketContext    `json:"ticket,omitempty"`
	Customer      *CustomerContext  `json:"customer,omitempty"`
	Signals       ContextSignals    `json:"signals"`
	Highlights    ContextHighlights `json:"highlights"`
	MemoryHits    []MemoryHit       `json:"memory_hits"`
	KnowledgeHits []KnowledgeHit    `json:"knowledge_hits"`
	ToolCalls     []ToolCallTrace   `json:"tool_calls"`
	Errors        []string          `json:"errors"`
	AgentRuntime  string            `json:"agent_runtime,omitempty"`
	Tier          string            `json:"tier,omitempty"`
}

// AddError appends a diagnostic entry
func (c *StructuredContext) AddError(msg string) {
	c.Errors = append(c.Errors, msg)
}

// MarshalContext encodes a context into the opaque blob stored with a draft.
// A nil context encodes to nil.
func MarshalContext(c *StructuredContext) ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal structured context")
	}
	return raw, nil
}

// UnmarshalContext decodes a stored context blob. Empty input yields nil.
func UnmarshalContext(raw []byte) (*StructuredContext, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var c StructuredContext
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal structured context")
	}
	return &c, nil
}
