package server

import (
	"errors"
	"fmt"
)

var (
	// Line faults. Each one yields a single diagnostic and no response.
	ErrParse         = errors.New("parse error")
	ErrNotObject     = errors.New("message is not a JSON object")
	ErrInvalidParams = errors.New("invalid params")

	ErrToolNotFound = errors.New("tool not found")
)

// LineError reports an input line that could not be handled. The dispatch
// loop logs it and moves on to the next line.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
