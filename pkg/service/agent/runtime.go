package agent

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/briareos/pkg/agent/tool"
	"github.com/secmon-lab/briareos/pkg/domain/interfaces"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/utils/logging"
)

const (
	RuntimeName         = "gollem"
	DefaultLoopLimit    = 20
	DefaultHistoryTurns = 4
)

// Runtime runs the tool-using draft agent on gollem
type Runtime struct {
	llmClient gollem.LLMClient
	tools     []gollem.Tool
	loopLimit int
	history   *historyStore
}

var _ interfaces.AgentRuntime = &Runtime{}

type Option func(*Runtime)

func WithTools(tools ...gollem.Tool) Option {
	return func(r *Runtime) {
		r.tools = append(r.tools, tools...)
	}
}

func WithLoopLimit(n int) Option {
	return func(r *Runtime) {
		if n > 0 {
			r.loopLimit = n
		}
	}
}

// WithHistoryTurns sets how many earlier turns of a conversation are replayed
func WithHistoryTurns(n int) Option {
	return func(r *Runtime) {
		r.history = newHistoryStore(n)
	}
}

func New(llmClient gollem.LLMClient, opts ...Option) (*Runtime, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}
	r := &Runtime{
		llmClient: llmClient,
		loopLimit: DefaultLoopLimit,
		history:   newHistoryStore(DefaultHistoryTurns),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Runtime) Name() string {
	return RuntimeName
}

// Run executes one agent turn. The returned transcript holds every tool
// exchange observed so far even when err is non-nil.
func (r *Runtime) Run(ctx context.Context, systemPrompt, userPrompt, conversationID string) (model.Transcript, error) {
	logger := logging.From(ctx)
	rec := &recorder{}
	rec.add(model.SystemMessage(systemPrompt))

	inputs := []gollem.Input{}
	for _, turn := range r.history.turns(conversationID) {
		inputs = append(inputs, gollem.Text("Earlier in this conversation you were asked:\n"+turn.prompt+
			"\n\nand you answered:\n"+turn.answer))
	}
	inputs = append(inputs, gollem.Text(userPrompt))
	rec.add(model.HumanMessage(userPrompt))

	agent := gollem.New(r.llmClient,
		gollem.WithSystemPrompt(systemPrompt),
		gollem.WithTools(r.tools...),
		gollem.WithLoopLimit(r.loopLimit),
		gollem.WithToolMiddleware(
			func(next gollem.ToolHandler) gollem.ToolHandler {
				return func(ctx context.Context, req *gollem.ToolExecRequest) (*gollem.ToolExecResponse, error) {
					call := toCallRequest(req.Tool)
					rec.add(model.AssistantMessage("", call))

					ctx = tool.WithProgress(ctx, func(ctx context.Context, msg string) {
						logging.From(ctx).Debug("tool progress", "tool", call.Name, "message", msg)
					})
					resp, err := next(ctx, req)

					rec.add(toResultMessage(call, resp, err))
					return resp, err
				}
			},
		),
	)

	resp, err := agent.Execute(ctx, inputs...)
	if err != nil {
		logger.Warn("agent execution failed",
			"conversation_id", conversationID,
			"error", err,
		)
		return rec.transcript(), goerr.Wrap(err, "failed to execute agent",
			goerr.V("conversation_id", conversationID))
	}

	var answer string
	if resp != nil {
		answer = strings.Join(resp.Texts, "\n")
	}
	rec.add(model.AssistantMessage(answer))

	if strings.TrimSpace(answer) != "" {
		r.history.append(conversationID, userPrompt, answer)
	}
	return rec.transcript(), nil
}

func toCallRequest(fc *gollem.FunctionCall) model.ToolCallRequest {
	if fc == nil {
		return model.ToolCallRequest{ID: uuid.NewString()}
	}
	id := fc.ID
	if id == "" {
		id = uuid.NewString()
	}
	return model.ToolCallRequest{
		ID:        id,
		Name:      fc.Name,
		Arguments: fc.Arguments,
	}
}

func toResultMessage(call model.ToolCallRequest, resp *gollem.ToolExecResponse, err error) model.Message {
	if err == nil && resp != nil && resp.Error != nil {
		err = resp.Error
	}
	if err != nil {
		return model.ToolResultMessage(call.ID, call.Name, err.Error(), true)
	}

	var result map[string]any
	if resp != nil {
		result = resp.Result
	}
	raw, mErr := json.Marshal(result)
	if mErr != nil {
		return model.ToolResultMessage(call.ID, call.Name, mErr.Error(), true)
	}
	return model.ToolResultMessage(call.ID, call.Name, string(raw), false)
}

// recorder collects transcript messages; tools may run concurrently
type recorder struct {
	mu       sync.Mutex
	messages model.Transcript
}

func (r *recorder) add(m model.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, m)
}

func (r *recorder) transcript() model.Transcript {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(model.Transcript, len(r.messages))
	copy(out, r.messages)
	return out
}
