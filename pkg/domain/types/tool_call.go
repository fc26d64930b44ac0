package types

// ToolCallStatus is the outcome of a single tool invocation
type ToolCallStatus string

const (
	ToolCallStatusOK      ToolCallStatus = "ok"
	ToolCallStatusError   ToolCallStatus = "error"
	ToolCallStatusSkipped ToolCallStatus = "skipped"
)

func (s ToolCallStatus) String() string {
	return string(s)
}

// MessageRole tags a message in an agent transcript
type MessageRole string

const (
	MessageRoleSystem     MessageRole = "system"
	MessageRoleHuman      MessageRole = "human"
	MessageRoleAssistant  MessageRole = "assistant"
	MessageRoleToolResult MessageRole = "tool_result"
)

func (r MessageRole) String() string {
	return string(r)
}
