// Package client is a line-delimited JSON-RPC client for MCP servers, used by
// test harnesses to drive the mock server.
package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zillow/mcp-mockserver/mcp"
)

// Client sends requests on w and matches responses read from r by id.
// Responses with ids it did not issue, and anything that fails to parse, are
// dropped.
type Client struct {
	reader *bufio.Reader
	writer io.WriteCloser

	clientInfo mcp.Implementation

	nextID    atomic.Int64
	writeMu   sync.Mutex
	mu        sync.Mutex
	responses map[int64]chan *response

	done    chan struct{}
	readErr error
	started atomic.Bool
}

type ClientOption func(*Client)

// WithClientInfo sets the clientInfo sent with initialize.
func WithClientInfo(name, version string) ClientOption {
	return func(c *Client) {
		c.clientInfo = mcp.Implementation{Name: name, Version: version}
	}
}

// NewClient creates a client over a pair of streams. Call Start before
// sending requests.
func NewClient(r io.Reader, w io.WriteCloser, opts ...ClientOption) *Client {
	c := &Client{
		reader:     bufio.NewReader(r),
		writer:     w,
		clientInfo: mcp.Implementation{Name: "mcp-mockserver-client", Version: mcp.ServerVersion},
		responses:  make(map[int64]chan *response),
		done:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start launches the goroutine that reads responses. It returns once the
// reader is running.
func (c *Client) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("client already started")
	}

	ready := make(chan struct{})
	go func() {
		close(ready)
		c.readResponses()
	}()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the request stream, which tells the server input is exhausted.
func (c *Client) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.writer.Close()
}

// Done is closed once the server's output has ended.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) readResponses() {
	defer close(c.done)

	for {
		line, err := c.reader.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			c.dispatch([]byte(line))
		}
		if err != nil {
			if err != io.EOF {
				c.readErr = err
			}
			return
		}
	}
}

func (c *Client) dispatch(line []byte) {
	var resp response
	if err := json.Unmarshal(line, &resp); err != nil {
		return
	}

	// Notifications and server requests carry no id we issued.
	id, err := strconv.ParseInt(string(resp.ID), 10, 64)
	if err != nil {
		return
	}

	c.mu.Lock()
	ch, ok := c.responses[id]
	delete(c.responses, id)
	c.mu.Unlock()

	if ok {
		ch <- &resp
	}
}

// WriteLine writes one raw line to the server. A trailing newline is added
// when missing.
func (c *Client) WriteLine(line []byte) error {
	if len(line) == 0 || line[len(line)-1] != '\n' {
		line = append(line[:len(line):len(line)], '\n')
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if _, err := c.writer.Write(line); err != nil {
		return fmt.Errorf("failed to write: %w", err)
	}
	return nil
}

func (c *Client) writeMessage(message mcp.JSONRPCMessage) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return c.WriteLine(data)
}

// sendRequest sends a request and waits for its response, decoding the
// result into result when it is non-nil.
func (c *Client) sendRequest(
	ctx context.Context,
	method mcp.Method,
	params interface{},
	result interface{},
) error {
	if !c.started.Load() {
		return fmt.Errorf("client not started")
	}

	id := c.nextID.Add(1)
	responseChan := make(chan *response, 1)

	c.mu.Lock()
	c.responses[id] = responseChan
	c.mu.Unlock()

	forget := func() {
		c.mu.Lock()
		delete(c.responses, id)
		c.mu.Unlock()
	}

	request := mcp.JSONRPCRequest{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      id,
		Method:  method,
		Params:  params,
	}
	if err := c.writeMessage(request); err != nil {
		forget()
		return fmt.Errorf("%s: %w", method, err)
	}

	var resp *response
	select {
	case <-ctx.Done():
		forget()
		return fmt.Errorf("%s: %w", method, ctx.Err())
	case resp = <-responseChan:
	case <-c.done:
		// The last line may have been routed just before output ended.
		select {
		case resp = <-responseChan:
		default:
			forget()
			if c.readErr != nil {
				return fmt.Errorf("%s: %w: %v", method, ErrClosed, c.readErr)
			}
			return fmt.Errorf("%s: %w", method, ErrClosed)
		}
	}

	if resp.Error != nil {
		return fmt.Errorf("%s: %w", method, resp.Error)
	}

	if result != nil {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("%s: failed to decode result: %w", method, err)
		}
	}

	return nil
}

// SendNotification sends a notification. No response is awaited.
func (c *Client) SendNotification(method mcp.Method, params interface{}) error {
	return c.writeMessage(mcp.NewJSONRPCNotification(method, params))
}

// Initialize performs the handshake: an initialize request followed by the
// notifications/initialized notification.
func (c *Client) Initialize(ctx context.Context) (*mcp.InitializeResult, error) {
	params := mcp.InitializeParams{
		ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
		Capabilities:    mcp.ClientCapabilities{},
		ClientInfo:      c.clientInfo,
	}

	var result mcp.InitializeResult
	if err := c.sendRequest(ctx, mcp.MethodInitialize, params, &result); err != nil {
		return nil, err
	}

	if err := c.SendNotification(mcp.MethodNotificationInitialized, map[string]interface{}{}); err != nil {
		return nil, fmt.Errorf("failed to send initialized notification: %w", err)
	}

	return &result, nil
}

// ListTools returns the tools the server advertises.
func (c *Client) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	var result mcp.ListToolsResult
	if err := c.sendRequest(ctx, mcp.MethodToolsList, map[string]interface{}{}, &result); err != nil {
		return nil, err
	}
	return result.Tools, nil
}

// CallTool invokes a tool. Text blocks come back as mcp.TextContent; blocks
// of any other type are skipped.
func (c *Client) CallTool(
	ctx context.Context,
	name string,
	arguments map[string]interface{},
) (*mcp.CallToolResult, error) {
	if arguments == nil {
		arguments = map[string]interface{}{}
	}

	var raw struct {
		Content []mcp.TextContent `json:"content"`
		IsError bool              `json:"isError"`
	}
	params := mcp.CallToolParams{Name: name, Arguments: arguments}
	if err := c.sendRequest(ctx, mcp.MethodToolsCall, params, &raw); err != nil {
		return nil, err
	}

	result := &mcp.CallToolResult{
		Content: make([]mcp.Content, 0, len(raw.Content)),
		IsError: raw.IsError,
	}
	for _, block := range raw.Content {
		if block.Type == "text" {
			result.Content = append(result.Content, block)
		}
	}
	return result, nil
}

// CallToolText invokes a tool and joins its text blocks, one per line, with
// surrounding whitespace trimmed. A result flagged isError becomes an error
// wrapping ErrToolError.
func (c *Client) CallToolText(
	ctx context.Context,
	name string,
	arguments map[string]interface{},
) (string, error) {
	result, err := c.CallTool(ctx, name, arguments)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, content := range result.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			b.WriteString(text.Text)
			b.WriteByte('\n')
		}
	}
	output := strings.TrimSpace(b.String())

	if result.IsError {
		return "", fmt.Errorf("%w: %s", ErrToolError, output)
	}
	return output, nil
}
