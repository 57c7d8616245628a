package mcptest_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zillow/mcp-mockserver/client"
	"github.com/zillow/mcp-mockserver/mcptest"
)

func TestServer(t *testing.T) {
	ctx := context.Background()

	srv, err := mcptest.NewServer(t)
	require.NoError(t, err)
	defer srv.Close()

	c := srv.Client()

	tools, err := c.ListTools(ctx)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "echo", tools[0].Name)
	assert.Equal(t, "Echoes back the input", tools[0].Description)

	got, err := c.CallToolText(ctx, "echo", map[string]interface{}{"message": "Hello MCP"})
	require.NoError(t, err)
	assert.Equal(t, "Echo: Hello MCP", got)

	assert.Empty(t, srv.Stderr())
}

func TestServer_UnknownToolNeverAnswers(t *testing.T) {
	srv, err := mcptest.NewServer(t)
	require.NoError(t, err)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err = srv.Client().CallTool(ctx, "reverse", map[string]interface{}{"message": "hi"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, srv.Stderr())

	// The connection is still usable afterwards.
	got, err := srv.Client().CallToolText(context.Background(), "echo", nil)
	require.NoError(t, err)
	assert.Equal(t, "Echo:", got)
}

func TestServer_BadLineThenInitialize(t *testing.T) {
	srv := mcptest.NewUnstartedServer(t)
	require.NoError(t, srv.StartUninitialized())
	defer srv.Close()

	c := srv.Client()
	require.NoError(t, c.WriteLine([]byte("{this is not json")))

	result, err := c.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-11-05", result.ProtocolVersion)
	assert.Equal(t, "mock-server", result.ServerInfo.Name)
	assert.Equal(t, "0.1.0", result.ServerInfo.Version)

	lines := strings.Split(strings.TrimSpace(srv.Stderr()), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "Error: line 1: parse error"), lines[0])
}

func TestServer_WaitAfterInput(t *testing.T) {
	srv, err := mcptest.NewServer(t)
	require.NoError(t, err)
	defer srv.Close()

	assert.NoError(t, srv.Wait())

	// Output has ended, so pending and new requests fail fast.
	select {
	case <-srv.Client().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client did not observe end of output")
	}
	_, err = srv.Client().ListTools(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrClosed) || strings.Contains(err.Error(), "closed pipe"), err.Error())
}
