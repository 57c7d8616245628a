package client

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// StdioClient runs an MCP server as a subprocess and talks to it over its
// stdin and stdout. The subprocess's stderr is passed through to ours.
type StdioClient struct {
	*Client
	cmd *exec.Cmd
}

// NewStdioClient launches command and starts a Client wired to its pipes.
// env is appended to the current environment.
func NewStdioClient(
	ctx context.Context,
	command string,
	env []string,
	args ...string,
) (*StdioClient, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start command: %w", err)
	}

	c := &StdioClient{
		Client: NewClient(stdout, stdin),
		cmd:    cmd,
	}
	if err := c.Start(ctx); err != nil {
		_ = c.cmd.Process.Kill()
		_ = c.cmd.Wait()
		return nil, err
	}

	return c, nil
}

// Close closes the subprocess's stdin and waits for it to exit.
func (c *StdioClient) Close() error {
	if err := c.Client.Close(); err != nil {
		return fmt.Errorf("failed to close stdin: %w", err)
	}
	<-c.Done()
	return c.cmd.Wait()
}
