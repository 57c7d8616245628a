package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"github.com/zillow/mcp-mockserver/mcp"
)

// DiagnosticPrefix starts every line the stdio loop writes for a faulty
// input line.
const DiagnosticPrefix = "Error: "

// StdioServer wraps a MockServer and handles line-delimited communication.
// Lines are handled one at a time, in input order; every response is flushed
// before the next line is read.
type StdioServer struct {
	server    *MockServer
	errLogger *log.Logger
}

// NewStdioServer creates a new stdio server wrapper around a MockServer
func NewStdioServer(server *MockServer) *StdioServer {
	return &StdioServer{
		server:    server,
		errLogger: log.New(io.Discard, "", log.LstdFlags), // Default to discarding logs
	}
}

// NewDiagnosticLogger returns a logger that writes one "Error: " line per
// faulty input line to w.
func NewDiagnosticLogger(w io.Writer) *log.Logger {
	return log.New(w, DiagnosticPrefix, 0)
}

// SetErrorLogger allows configuring where errors are logged
func (s *StdioServer) SetErrorLogger(logger *log.Logger) {
	s.errLogger = logger
}

// Listen reads messages from stdin and writes responses to stdout until stdin
// is exhausted, in which case it returns nil. It returns ctx.Err() when ctx is
// cancelled and a wrapped error when reading or writing fails.
func (s *StdioServer) Listen(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	// The reader only hands lines over; all handling stays on this goroutine.
	go func() {
		reader := bufio.NewReader(stdin)
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	writer := bufio.NewWriter(stdout)
	lineNo := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line := <-lines:
			lineNo++
			if err := s.processMessage(ctx, lineNo, line, writer); err != nil {
				s.errLogger.Printf("%v", err)
				return err
			}
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				s.server.logger.Info("input closed", "lines", lineNo)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
	}
}

// processMessage handles a single line and writes the response, if any. Only
// write failures are returned; a faulty line is reported and swallowed.
func (s *StdioServer) processMessage(
	ctx context.Context,
	lineNo int,
	line string,
	writer *bufio.Writer,
) error {
	message := strings.TrimRight(line, "\r\n")

	response, err := s.server.HandleMessage(ctx, []byte(message))
	if err != nil {
		s.errLogger.Print(&LineError{Line: lineNo, Err: err})
		return nil
	}

	// Notifications and ignored messages don't have responses
	if response == nil {
		return nil
	}

	if err := s.writeResponse(response, writer); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}

	return nil
}

func (s *StdioServer) writeResponse(response mcp.JSONRPCMessage, writer *bufio.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetEscapeHTML(false)

	// Encode terminates the message with a newline
	if err := encoder.Encode(response); err != nil {
		return err
	}

	return writer.Flush()
}

// ServeStdio runs server over the given streams with diagnostics on stderr.
// It stops at end of input, or when SIGINT or SIGTERM arrives.
func ServeStdio(
	ctx context.Context,
	server *MockServer,
	stdin io.Reader,
	stdout, stderr io.Writer,
) error {
	s := NewStdioServer(server)
	s.SetErrorLogger(NewDiagnosticLogger(stderr))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	server.logger.Info("serving stdio",
		"name", server.name,
		"version", server.version,
		"protocol", mcp.LATEST_PROTOCOL_VERSION,
	)

	return s.Listen(ctx, stdin, stdout)
}
