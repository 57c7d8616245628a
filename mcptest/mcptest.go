// Package mcptest implements helper functions for testing against the mock
// MCP server in-process.
package mcptest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/zillow/mcp-mockserver/client"
	"github.com/zillow/mcp-mockserver/mcp"
	"github.com/zillow/mcp-mockserver/server"
)

// Server encapsulates a mock MCP server and manages resources like pipes and context.
type Server struct {
	name string

	ctx    context.Context
	cancel func()

	serverReader *io.PipeReader
	serverWriter *io.PipeWriter
	clientReader *io.PipeReader
	clientWriter *io.PipeWriter

	stderr    syncBuffer
	listenErr error

	client *client.Client

	wg sync.WaitGroup
}

// syncBuffer is a bytes.Buffer safe for one writer and concurrent readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// NewServer starts a new mock server and returns it with an initialized client.
func NewServer(t *testing.T) (*Server, error) {
	server := NewUnstartedServer(t)

	if err := server.Start(); err != nil {
		return nil, err
	}

	return server, nil
}

// NewUnstartedServer creates a new mock server instance named after the test, but does not start it.
// Useful for tests that need to drive the handshake themselves.
func NewUnstartedServer(t *testing.T) *Server {
	server := &Server{
		name: t.Name(),
	}

	// Use t.Context() once we switch to go >= 1.24
	ctx := context.TODO()

	// Set up context with cancellation, used to stop the server
	server.ctx, server.cancel = context.WithCancel(ctx)

	// Set up pipes for client-server communication
	server.serverReader, server.clientWriter = io.Pipe()
	server.clientReader, server.serverWriter = io.Pipe()

	return server
}

// Start starts the server in a goroutine and initializes a client against it.
// Make sure to defer Close() after Start().
// When using NewServer(), the returned server is already started.
func (s *Server) Start() error {
	if err := s.StartUninitialized(); err != nil {
		return err
	}

	if _, err := s.client.Initialize(s.ctx); err != nil {
		return fmt.Errorf("client.Initialize(): %w", err)
	}

	return nil
}

// StartUninitialized starts the server and client without performing the
// handshake.
func (s *Server) StartUninitialized() error {
	s.wg.Add(1)

	// Start the mock server in a goroutine
	go func() {
		defer s.wg.Done()

		mockServer := server.NewMockServer(mcp.ServerName, mcp.ServerVersion)

		stdioServer := server.NewStdioServer(mockServer)
		stdioServer.SetErrorLogger(server.NewDiagnosticLogger(&s.stderr))

		s.listenErr = stdioServer.Listen(s.ctx, s.serverReader, s.serverWriter)

		// Let the client see end of output.
		s.serverWriter.Close()
	}()

	s.client = client.NewClient(s.clientReader, s.clientWriter, client.WithClientInfo(s.name, "1.0.0"))
	if err := s.client.Start(s.ctx); err != nil {
		return fmt.Errorf("client.Start(): %w", err)
	}

	return nil
}

// Close stops the server and cleans up the pipes.
func (s *Server) Close() {
	if s.client != nil {
		s.client.Close()
	}

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	// Wait for server goroutine to finish
	s.wg.Wait()

	s.serverWriter.Close()
	s.serverReader.Close()

	s.clientWriter.Close()
	s.clientReader.Close()
}

// Wait closes the client's side of the connection and blocks until the
// server has drained its input. It returns the error Listen ended with.
func (s *Server) Wait() error {
	if s.client != nil {
		s.client.Close()
	}
	s.wg.Wait()
	return s.listenErr
}

// Client returns a client connected to the server.
// After Start the client is already initialized, i.e. you do _not_ need to call Client.Initialize().
func (s *Server) Client() *client.Client {
	return s.client
}

// Stderr returns the diagnostics the server has written so far.
func (s *Server) Stderr() string {
	return s.stderr.String()
}
