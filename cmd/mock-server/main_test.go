package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCmd_Session(t *testing.T) {
	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`garbage`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"echo","arguments":{"message":"hi"}}}`,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"nope"}}`,
		`{"jsonrpc":"2.0","id":5,"method":"shutdown"}`,
	}, "\n") + "\n"

	stdout, stderr, err := run(t, input)
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"result":{"protocolVersion":"2024-11-05","capabilities":{},"serverInfo":{"name":"mock-server","version":"0.1.0"}}}`,
		`{"jsonrpc":"2.0","id":2,"result":{"tools":[{"name":"echo","description":"Echoes back the input","input_schema":{"type":"object","properties":{"message":{"type":"string"}},"required":["message"]}}]}}`,
		`{"jsonrpc":"2.0","id":3,"result":{"content":[{"type":"text","text":"Echo: hi"}],"isError":false}}`,
	}, "\n")+"\n", stdout)

	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "Error: line 4: parse error"), lines[0])
}

func TestRootCmd_DebugLogging(t *testing.T) {
	_, stderr, err := run(t, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`+"\n", "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, stderr, "dispatch")
	assert.Contains(t, stderr, "initialize")
	assert.Contains(t, stderr, "instance")
}

func TestRootCmd_InvalidLogLevel(t *testing.T) {
	_, stderr, err := run(t, "", "--log-level", "loud")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(stderr, "Error: "), stderr)
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	_, _, err := run(t, "", "extra")
	assert.Error(t, err)
}
