package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTool_RequiredStringProperty(t *testing.T) {
	tool := NewTool("echo",
		WithDescription("Echoes back the input"),
		WithString("message", Required()),
	)

	assert.Equal(t, "echo", tool.Name)
	assert.Equal(t, "Echoes back the input", tool.Description)
	assert.Equal(t, "object", tool.InputSchema.Type)
	assert.Equal(t, []string{"message"}, tool.InputSchema.Required)

	// The required marker must not leak into the property schema.
	prop, ok := tool.InputSchema.Properties["message"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"type": "string"}, prop)
}

func TestNewTool_OmitsEmptyRequired(t *testing.T) {
	tool := NewTool("plain", WithString("note"))

	data, err := json.Marshal(tool)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"name":"plain","input_schema":{"type":"object","properties":{"note":{"type":"string"}}}}`,
		string(data),
	)
}

func TestTool_MarshalUsesSnakeCaseSchemaKey(t *testing.T) {
	tool := NewTool("echo",
		WithDescription("Echoes back the input"),
		WithString("message", Required()),
	)

	data, err := json.Marshal(tool)
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Contains(t, result, "input_schema")
	assert.NotContains(t, result, "inputSchema")
	assert.Equal(t, []interface{}{"message"},
		result["input_schema"].(map[string]interface{})["required"])
}

func TestNewToolResultText(t *testing.T) {
	result := NewToolResultText("Echo: hi")

	require.Len(t, result.Content, 1)
	text, ok := AsTextContent(result.Content[0])
	require.True(t, ok)
	assert.Equal(t, "text", text.Type)
	assert.Equal(t, "Echo: hi", text.Text)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[{"type":"text","text":"Echo: hi"}],"isError":false}`, string(data))
}

func TestJSONRPCResponse_NilIDIsNull(t *testing.T) {
	data, err := json.Marshal(NewJSONRPCResponse(nil, map[string]interface{}{}))
	require.NoError(t, err)
	assert.Equal(t, `{"jsonrpc":"2.0","id":null,"result":{}}`, string(data))
}

func TestJSONRPCRequest_NilIDOmitted(t *testing.T) {
	data, err := json.Marshal(JSONRPCRequest{
		JSONRPC: JSONRPC_VERSION,
		Method:  MethodNotificationInitialized,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"jsonrpc":"2.0","method":"notifications/initialized"}`, string(data))
}
