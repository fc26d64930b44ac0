package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
)

const unknownToolName = "unknown_tool"

// ExtractDraftAndTraces returns the final draft text of a transcript and a
// trace for every tool call the assistant requested, in request order.
func ExtractDraftAndTraces(transcript model.Transcript) (string, []model.ToolCallTrace) {
	var draft string
	for i := len(transcript) - 1; i >= 0; i-- {
		msg := transcript[i]
		if msg.Role != types.MessageRoleAssistant {
			continue
		}
		if text := strings.TrimSpace(msg.Content); text != "" {
			draft = text
			break
		}
	}

	results := make(map[string]model.Message)
	for _, msg := range transcript {
		if msg.Role == types.MessageRoleToolResult && msg.ToolCallID != "" {
			results[msg.ToolCallID] = msg
		}
	}

	traces := []model.ToolCallTrace{}
	for _, msg := range transcript {
		switch msg.Role {
		case types.MessageRoleAssistant:
			for _, call := range msg.ToolCalls {
				traces = append(traces, buildTrace(call, results))
			}
		case types.MessageRoleSystem, types.MessageRoleHuman, types.MessageRoleToolResult:
			continue
		}
	}

	return draft, traces
}

func buildTrace(call model.ToolCallRequest, results map[string]model.Message) model.ToolCallTrace {
	name := call.Name
	if name == "" {
		name = unknownToolName
	}

	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}

	trace := model.ToolCallTrace{
		ToolName:  name,
		Arguments: args,
	}
	if call.ID != "" {
		id := call.ID
		trace.ToolCallID = &id
	}

	result, ok := results[call.ID]
	if call.ID == "" || !ok {
		trace.Status = types.ToolCallStatusSkipped
		trace.Summary = fmt.Sprintf("Tool '%s' was requested but no result was returned.", name)
		trace.OutputText = fmt.Sprintf("Tool '%s' produced no output.", name)
		return trace
	}

	trace.Output, trace.OutputText = parseToolOutput(result.Content)
	trace.Summary = toolSummary(trace.Output, trace.OutputText)
	trace.Status = types.ToolCallStatusOK
	if result.IsError {
		trace.Status = types.ToolCallStatusError
	}
	return trace
}

// parseToolOutput decodes a JSON object result. Anything else, including
// valid JSON that is not an object, is kept as raw text only.
func parseToolOutput(raw string) (map[string]any, string) {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || parsed == nil {
		return nil, raw
	}
	return parsed, raw
}

func toolSummary(output map[string]any, outputText string) string {
	if output != nil {
		if summary, ok := output["summary"]; ok && summary != nil {
			if s := fmt.Sprint(summary); s != "" {
				return s
			}
		}
	}
	return outputText
}
