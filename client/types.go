package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned for requests that were pending when the server's
	// output ended.
	ErrClosed = errors.New("connection closed")

	// ErrToolError is returned by CallToolText when the tool reported isError.
	ErrToolError = errors.New("tool reported an error")
)

// response is a JSON-RPC response as read from the server.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object. The mock server never sends one, but
// a client pointed at another server may receive it.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}
