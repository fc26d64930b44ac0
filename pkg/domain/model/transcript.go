package model

import "github.com/secmon-lab/briareos/pkg/domain/types"

// ToolCallRequest is a tool invocation requested by the assistant
type ToolCallRequest struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Message is one entry of an agent transcript. Which fields are meaningful
// depends on Role: assistant messages may carry ToolCalls, tool-result
// messages carry ToolCallID, ToolName and IsError.
type Message struct {
	Role       types.MessageRole
	Content    string
	ToolCalls  []ToolCallRequest
	ToolCallID string
	ToolName   string
	IsError    bool
}

// Transcript is the ordered message sequence of one agent run
type Transcript []Message

func SystemMessage(content string) Message {
	return Message{Role: types.MessageRoleSystem, Content: content}
}

func HumanMessage(content string) Message {
	return Message{Role: types.MessageRoleHuman, Content: content}
}

func AssistantMessage(content string, calls ...ToolCallRequest) Message {
	return Message{Role: types.MessageRoleAssistant, Content: content, ToolCalls: calls}
}

func ToolResultMessage(callID, toolName, content string, isError bool) Message {
	return Message{
		Role:       types.MessageRoleToolResult,
		Content:    content,
		ToolCallID: callID,
		ToolName:   toolName,
		IsError:    isError,
	}
}
