package agent_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
	"github.com/secmon-lab/briareos/pkg/service/agent"
)

type mockSession struct {
	mu                sync.Mutex
	calls             int
	inputs            [][]gollem.Input
	generateContentFn func(call int, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.inputs = append(s.inputs, input)
	s.mu.Unlock()
	return s.generateContentFn(call, input...)
}

func (s *mockSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

var _ gollem.Session = &mockSession{}

type mockLLMClient struct {
	session *mockSession
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return c.session, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

type echoTool struct{}

func (t *echoTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "echo",
		Description: "Echo the message",
		Parameters: map[string]*gollem.Parameter{
			"message": {Type: gollem.TypeString, Description: "message", Required: true},
		},
	}
}

func (t *echoTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	return map[string]any{"summary": "echo: " + args["message"].(string)}, nil
}

func TestNew_RequiresClient(t *testing.T) {
	_, err := agent.New(nil)
	gt.Error(t, err)

	_, err = agent.NewCompletion(nil)
	gt.Error(t, err)
}

func TestRuntime_TextOnly(t *testing.T) {
	session := &mockSession{
		generateContentFn: func(call int, input ...gollem.Input) (*gollem.Response, error) {
			return &gollem.Response{Texts: []string{"Hi Alice, we are on it."}}, nil
		},
	}
	rt, err := agent.New(&mockLLMClient{session: session})
	gt.NoError(t, err).Required()
	gt.Value(t, rt.Name()).Equal(agent.RuntimeName)

	transcript, err := rt.Run(context.Background(), "system", "user prompt", "ticket::1")
	gt.NoError(t, err).Required()

	gt.Array(t, transcript).Length(3)
	gt.Value(t, transcript[0].Role).Equal(types.MessageRoleSystem)
	gt.Value(t, transcript[1].Role).Equal(types.MessageRoleHuman)
	gt.Value(t, transcript[1].Content).Equal("user prompt")
	gt.Value(t, transcript[2].Role).Equal(types.MessageRoleAssistant)
	gt.Value(t, transcript[2].Content).Equal("Hi Alice, we are on it.")
}

func TestRuntime_ToolCall(t *testing.T) {
	session := &mockSession{
		generateContentFn: func(call int, input ...gollem.Input) (*gollem.Response, error) {
			if call == 1 {
				return &gollem.Response{
					FunctionCalls: []*gollem.FunctionCall{
						{ID: "call-1", Name: "echo", Arguments: map[string]any{"message": "ping"}},
					},
				}, nil
			}
			return &gollem.Response{Texts: []string{"final draft"}}, nil
		},
	}
	rt, err := agent.New(&mockLLMClient{session: session}, agent.WithTools(&echoTool{}))
	gt.NoError(t, err).Required()

	transcript, err := rt.Run(context.Background(), "system", "user", "ticket::2")
	gt.NoError(t, err).Required()

	gt.Array(t, transcript).Length(5)
	gt.Value(t, transcript[2].Role).Equal(types.MessageRoleAssistant)
	gt.Array(t, transcript[2].ToolCalls).Length(1)
	gt.Value(t, transcript[2].ToolCalls[0].ID).Equal("call-1")
	gt.Value(t, transcript[2].ToolCalls[0].Name).Equal("echo")

	gt.Value(t, transcript[3].Role).Equal(types.MessageRoleToolResult)
	gt.Value(t, transcript[3].ToolCallID).Equal("call-1")
	gt.Bool(t, transcript[3].IsError).False()
	gt.String(t, transcript[3].Content).Contains("echo: ping")

	gt.Value(t, transcript[4].Content).Equal("final draft")
}

func TestRuntime_ExecuteError(t *testing.T) {
	session := &mockSession{
		generateContentFn: func(call int, input ...gollem.Input) (*gollem.Response, error) {
			return nil, errors.New("upstream unavailable")
		},
	}
	rt, err := agent.New(&mockLLMClient{session: session})
	gt.NoError(t, err).Required()

	transcript, err := rt.Run(context.Background(), "system", "user", "ticket::3")
	gt.Error(t, err)
	gt.Array(t, transcript).Length(2)
}

func TestRuntime_ConversationHistory(t *testing.T) {
	session := &mockSession{
		generateContentFn: func(call int, input ...gollem.Input) (*gollem.Response, error) {
			return &gollem.Response{Texts: []string{"answer"}}, nil
		},
	}
	rt, err := agent.New(&mockLLMClient{session: session})
	gt.NoError(t, err).Required()
	ctx := context.Background()

	_, err = rt.Run(ctx, "system", "first", "ticket::9")
	gt.NoError(t, err).Required()
	_, err = rt.Run(ctx, "system", "second", "ticket::9")
	gt.NoError(t, err).Required()
	_, err = rt.Run(ctx, "system", "other", "ticket::10")
	gt.NoError(t, err).Required()

	gt.Array(t, session.inputs).Length(3)
	gt.Array(t, session.inputs[0]).Length(1)
	gt.Array(t, session.inputs[1]).Length(2)
	gt.Array(t, session.inputs[2]).Length(1)
}

func TestToResultMessage(t *testing.T) {
	call := model.ToolCallRequest{ID: "c1", Name: "lookup"}

	t.Run("result is JSON encoded", func(t *testing.T) {
		msg := agent.ToResultMessage(call, &gollem.ToolExecResponse{Result: map[string]any{"summary": "ok"}}, nil)
		gt.Value(t, msg.Content).Equal(`{"summary":"ok"}`)
		gt.Bool(t, msg.IsError).False()
		gt.Value(t, msg.ToolName).Equal("lookup")
	})

	t.Run("tool error marks result", func(t *testing.T) {
		msg := agent.ToResultMessage(call, &gollem.ToolExecResponse{Error: errors.New("boom")}, nil)
		gt.Value(t, msg.Content).Equal("boom")
		gt.Bool(t, msg.IsError).True()
	})

	t.Run("handler error marks result", func(t *testing.T) {
		msg := agent.ToResultMessage(call, nil, errors.New("broken"))
		gt.Bool(t, msg.IsError).True()
	})
}

func TestCompletion(t *testing.T) {
	session := &mockSession{
		generateContentFn: func(call int, input ...gollem.Input) (*gollem.Response, error) {
			return &gollem.Response{Texts: []string{"line one", "line two"}}, nil
		},
	}
	c, err := agent.NewCompletion(&mockLLMClient{session: session})
	gt.NoError(t, err).Required()

	out, err := c.Complete(context.Background(), "sys", "user")
	gt.NoError(t, err).Required()
	gt.Value(t, out).Equal("line one\nline two")
}
