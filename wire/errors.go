package wire

import (
	"errors"
	"fmt"
)

// Error types for the arith protocol.
// These help callers decide whether the stream is still usable.

// MalformedArgumentError is returned by DecodeRequest when an argument token
// is not a base-10 integer. The server answers it with BAD_DATA.
//
// Connection handling: connection is still valid
type MalformedArgumentError struct {
	Token string
	Err   error // strconv error
}

func (e *MalformedArgumentError) Error() string {
	return fmt.Sprintf("%s: %q", ReasonMalformedArgument, e.Token)
}

// Unwrap returns the underlying error for error chain inspection
func (e *MalformedArgumentError) Unwrap() error {
	return e.Err
}

// Reason returns the text sent to the client.
func (e *MalformedArgumentError) Reason() string {
	return ReasonMalformedArgument
}

// ShouldCloseConnection returns false - one bad line does not desync the stream
func (e *MalformedArgumentError) ShouldCloseConnection() bool {
	return false
}

// ParseError is returned when a response line cannot be interpreted.
// The line was fully consumed, so the request/response alternation is intact.
//
// Common causes:
//   - Unrecognized leading tag
//   - Non-integer RESULT payload
//
// Connection handling: connection can be REUSED
type ParseError struct {
	Message string
	Line    string // raw response line
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "parse error: " + e.Message + ": " + e.Err.Error()
	}
	return "parse error: " + e.Message + ": " + e.Line
}

// Unwrap returns the underlying error for error chain inspection
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns false - the offending line was consumed
func (e *ParseError) ShouldCloseConnection() bool {
	return false
}

// InvalidLineError is returned when a request line would break framing.
//
// Connection handling: nothing was written, connection is still valid
type InvalidLineError struct {
	Message string
}

func (e *InvalidLineError) Error() string {
	return "invalid line: " + e.Message
}

// ShouldCloseConnection returns false - the line was rejected before writing
func (e *InvalidLineError) ShouldCloseConnection() bool {
	return false
}

// ConnectionError wraps underlying I/O errors from connection operations.
//
// Common causes:
//   - Connection closed by peer
//   - Read or write deadline exceeded
//   - Connection reset
//
// Connection handling: connection is broken, CLOSE it
type ConnectionError struct {
	Op  string // Operation that failed (read, write)
	Err error  // Underlying error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - connection errors mean connection is broken
func (e *ConnectionError) ShouldCloseConnection() bool {
	return true
}

// ErrorWithConnectionState is implemented by all errors of this package.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection reports whether err leaves the stream unusable.
// Unknown error types are treated conservatively and return true.
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}

	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}

	return true
}
