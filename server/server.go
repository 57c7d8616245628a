// Package server implements the mock MCP server: a dispatcher over a closed
// set of methods and a line-delimited stdio loop around it.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/zillow/mcp-mockserver/mcp"
)

// MockServer answers the MCP handshake and exposes the echo tool. It keeps no
// state between messages.
type MockServer struct {
	name         string
	version      string
	instanceID   string
	logger       *log.Logger
	handlers     map[mcp.Method]methodHandler
	tools        []mcp.Tool
	toolHandlers map[string]ToolHandlerFunc
}

type ServerOption func(*MockServer)

// ToolHandlerFunc handles a tools/call for one tool. arguments is the
// params.arguments object, or an empty result when the client sent none.
type ToolHandlerFunc func(ctx context.Context, arguments gjson.Result) (*mcp.CallToolResult, error)

// methodHandler returns a nil message when nothing should be written back.
type methodHandler func(ctx context.Context, id json.RawMessage, request gjson.Result) (mcp.JSONRPCMessage, error)

// WithLogger sets the operational logger. Diagnostics for bad lines do not go
// through it; see StdioServer.SetErrorLogger.
func WithLogger(logger *log.Logger) ServerOption {
	return func(s *MockServer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithInstanceID overrides the random id tagged on every log line.
func WithInstanceID(id string) ServerOption {
	return func(s *MockServer) {
		s.instanceID = id
	}
}

func NewMockServer(
	name, version string,
	opts ...ServerOption,
) *MockServer {
	s := &MockServer{
		name:         name,
		version:      version,
		instanceID:   uuid.NewString(),
		logger:       log.New(io.Discard),
		toolHandlers: make(map[string]ToolHandlerFunc),
	}

	s.handlers = map[mcp.Method]methodHandler{
		mcp.MethodInitialize:              s.handleInitialize,
		mcp.MethodNotificationInitialized: s.handleInitialized,
		mcp.MethodToolsList:               s.handleListTools,
		mcp.MethodToolsCall:               s.handleToolCall,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With("instance", s.instanceID)
	s.addTool(newEchoTool(), handleEcho)

	return s
}

// InstanceID returns the id this server tags its log lines with.
func (s *MockServer) InstanceID() string {
	return s.instanceID
}

func (s *MockServer) addTool(tool mcp.Tool, handler ToolHandlerFunc) {
	s.tools = append(s.tools, tool)
	s.toolHandlers[tool.Name] = handler
}

// HandleMessage handles one raw JSON-RPC message.
//
// It returns the response to write, or nil when the message calls for no
// response: notifications, unknown methods, unknown tools and messages with
// no string method. A non-nil error means the message itself was faulty; the
// caller reports it and carries on.
func (s *MockServer) HandleMessage(
	ctx context.Context,
	message []byte,
) (mcp.JSONRPCMessage, error) {
	if !gjson.ValidBytes(message) {
		return nil, parseError(message)
	}

	request := gjson.ParseBytes(message)
	if !request.IsObject() {
		return nil, fmt.Errorf("%w: got %s", ErrNotObject, kindOf(request))
	}

	var id json.RawMessage
	if raw := request.Get("id"); raw.Exists() {
		id = json.RawMessage(raw.Raw)
	}

	method := request.Get("method")
	if method.Type != gjson.String {
		s.logger.Debug("ignoring message without method", "id", string(id))
		return nil, nil
	}

	handler, ok := s.handlers[mcp.Method(method.Str)]
	if !ok {
		s.logger.Debug("ignoring unknown method", "method", method.Str, "id", string(id))
		return nil, nil
	}

	s.logger.Debug("dispatch", "method", method.Str, "id", string(id))
	return handler(ctx, id, request)
}

func (s *MockServer) handleInitialize(
	_ context.Context,
	id json.RawMessage,
	_ gjson.Result,
) (mcp.JSONRPCMessage, error) {
	result := mcp.InitializeResult{
		ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
		Capabilities:    mcp.ServerCapabilities{},
		ServerInfo: mcp.Implementation{
			Name:    s.name,
			Version: s.version,
		},
	}

	return createResponse(id, result), nil
}

func (s *MockServer) handleInitialized(
	_ context.Context,
	_ json.RawMessage,
	_ gjson.Result,
) (mcp.JSONRPCMessage, error) {
	s.logger.Debug("client initialized")
	return nil, nil
}

func (s *MockServer) handleListTools(
	_ context.Context,
	id json.RawMessage,
	_ gjson.Result,
) (mcp.JSONRPCMessage, error) {
	tools := make([]mcp.Tool, len(s.tools))
	copy(tools, s.tools)

	return createResponse(id, mcp.ListToolsResult{Tools: tools}), nil
}

func (s *MockServer) handleToolCall(
	ctx context.Context,
	id json.RawMessage,
	request gjson.Result,
) (mcp.JSONRPCMessage, error) {
	params := request.Get("params")
	if params.Exists() && !params.IsObject() {
		return nil, fmt.Errorf("%w: params must be an object, got %s", ErrInvalidParams, kindOf(params))
	}

	name := params.Get("name")
	if name.Type != gjson.String {
		return nil, nil
	}

	handler, ok := s.toolHandlers[name.Str]
	if !ok {
		s.logger.Debug("dropping call", "tool", name.Str, "err", ErrToolNotFound)
		return nil, nil
	}

	arguments := params.Get("arguments")
	if arguments.Exists() && !arguments.IsObject() {
		return nil, fmt.Errorf("%w: arguments must be an object, got %s", ErrInvalidParams, kindOf(arguments))
	}

	result, err := handler(ctx, arguments)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", name.Str, err)
	}

	return createResponse(id, result), nil
}

func createResponse(id json.RawMessage, result interface{}) mcp.JSONRPCMessage {
	return mcp.NewJSONRPCResponse(id, result)
}

// parseError describes why message is not valid JSON.
func parseError(message []byte) error {
	var v interface{}
	err := json.Unmarshal(message, &v)
	if err == nil {
		err = errors.New("invalid JSON")
	}
	return fmt.Errorf("%w: %v", ErrParse, err)
}

func kindOf(value gjson.Result) string {
	switch value.Type {
	case gjson.Null:
		return "null"
	case gjson.False, gjson.True:
		return "boolean"
	case gjson.Number:
		return "number"
	case gjson.String:
		return "string"
	}
	if value.IsArray() {
		return "array"
	}
	return "object"
}
