// Package mcp defines the wire types of the line-delimited JSON-RPC protocol
// spoken by the mock server and its harness client.
package mcp

import "encoding/json"

const (
	JSONRPC_VERSION = "2.0"

	// LATEST_PROTOCOL_VERSION is the only protocol version the mock server
	// reports. It is never negotiated.
	LATEST_PROTOCOL_VERSION = "2024-11-05"
)

// Server identity reported in the initialize result.
const (
	ServerName    = "mock-server"
	ServerVersion = "0.1.0"
)

// Method is the closed set of method tags the server recognizes. Any other
// value is ignored by the dispatcher.
type Method string

const (
	MethodInitialize              Method = "initialize"
	MethodNotificationInitialized Method = "notifications/initialized"
	MethodToolsList               Method = "tools/list"
	MethodToolsCall               Method = "tools/call"
)

/* JSON-RPC envelope */

// JSONRPCMessage is any message written to the wire: a response, a request
// or a notification.
type JSONRPCMessage interface{}

// JSONRPCRequest is an outgoing request. A nil ID is omitted, which turns the
// request into a notification on the wire.
type JSONRPCRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Method  Method      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// JSONRPCNotification is a request without an id. No response is expected.
type JSONRPCNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  Method      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// JSONRPCResponse is a successful reply. ID holds the request id exactly as it
// was received; a nil ID is written as null.
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result"`
}

/* Common types */

type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerCapabilities is always advertised empty.
type ServerCapabilities struct{}

type ClientCapabilities map[string]interface{}

/* Initialize */

type InitializeParams struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ClientCapabilities `json:"capabilities"`
	ClientInfo      Implementation     `json:"clientInfo"`
}

type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
}

/* Tools */

type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema ToolInputSchema `json:"input_schema"`
}

type ToolInputSchema struct {
	Type       string                 `json:"type"` // Always "object"
	Properties map[string]interface{} `json:"properties,omitempty"`
	Required   []string               `json:"required,omitempty"`
}

type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

type CallToolParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError"`
}

type Content interface{} // Only TextContent is produced

type TextContent struct {
	Type string `json:"type"` // Always "text"
	Text string `json:"text"`
}
