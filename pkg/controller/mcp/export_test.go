package mcp

var NewToolBridge = newToolBridge
