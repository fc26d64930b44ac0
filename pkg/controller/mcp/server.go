// Package mcp exposes the support tools and the draft workflow over the
// Model Context Protocol so that external agents can use them.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/m-mizutani/gollem"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/secmon-lab/briareos/pkg/usecase"
	"github.com/secmon-lab/briareos/pkg/utils/logging"
)

const serverName = "briareos"

const instructions = `Support copilot tools. Look up a ticket with get_ticket, inspect the customer
with lookup_customer_plan and lookup_open_ticket_load, recall previous resolutions with
search_customer_memory, then call generate_draft to store a reply suggestion.`

// New builds an MCP server exposing the agent tools plus the ticket, draft
// and memory operations of uc.
func New(uc *usecase.UseCases, tools []gollem.Tool, version string) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	for _, t := range tools {
		bridge := newToolBridge(t)
		s.AddTool(bridge.Definition(), bridge.Handle)
	}

	h := NewHandlers(uc)
	s.AddTool(getTicketDefinition(), h.GetTicket)
	s.AddTool(generateDraftDefinition(), h.GenerateDraft)
	s.AddTool(searchMemoryDefinition(), h.SearchCustomerMemory)

	return s
}

// toolBridge adapts a gollem tool to an MCP tool
type toolBridge struct {
	tool gollem.Tool
}

func newToolBridge(t gollem.Tool) *toolBridge {
	return &toolBridge{tool: t}
}

func (b *toolBridge) Definition() mcp.Tool {
	spec := b.tool.Spec()
	opts := []mcp.ToolOption{mcp.WithDescription(spec.Description)}

	names := make([]string, 0, len(spec.Parameters))
	for name := range spec.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		param := spec.Parameters[name]
		propOpts := []mcp.PropertyOption{mcp.Description(param.Description)}
		if param.Required {
			propOpts = append(propOpts, mcp.Required())
		}

		switch param.Type {
		case gollem.TypeNumber, gollem.TypeInteger:
			opts = append(opts, mcp.WithNumber(name, propOpts...))
		case gollem.TypeBoolean:
			opts = append(opts, mcp.WithBoolean(name, propOpts...))
		default:
			opts = append(opts, mcp.WithString(name, propOpts...))
		}
	}

	return mcp.NewTool(spec.Name, opts...)
}

func (b *toolBridge) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := b.tool.Spec().Name
	result, err := b.tool.Run(ctx, req.GetArguments())
	if err != nil {
		logging.From(ctx).Warn("mcp tool failed", "tool", name, "error", err.Error())
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", name, err)), nil
	}
	return jsonResult(result)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}
