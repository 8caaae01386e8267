package arith

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pior/arith/wire"
)

var (
	ErrConnectionClosed = errors.New("arith: connection closed")
)

// Connection is a single client connection to an arith server.
// Requests on a connection are strictly serialized: one line out, one line in.
type Connection struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	mu     sync.Mutex // serializes round trips
	closed atomic.Bool
}

// NewConnection wraps an established net.Conn.
func NewConnection(conn net.Conn) *Connection {
	return &Connection{
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
	}
}

// RoundTrip sends line and reads exactly one response line.
//
// A *wire.ParseError means the reply was consumed but not understood; the
// connection stays usable. Any other error except *wire.InvalidLineError
// closes the connection. A reply stream closed by the server is reported as
// a *wire.ConnectionError wrapping io.EOF.
func (c *Connection) RoundTrip(ctx context.Context, line string) (wire.Response, error) {
	if err := ctx.Err(); err != nil {
		return wire.Response{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return wire.Response{}, ErrConnectionClosed
	}

	c.setDeadline(ctx)

	if err := c.writeLine(line); err != nil {
		return wire.Response{}, err
	}

	resp, err := wire.ReadResponse(c.reader)
	if err != nil {
		var perr *wire.ParseError
		if errors.As(err, &perr) {
			return wire.Response{}, err
		}
		c.Close()
		return wire.Response{}, &wire.ConnectionError{Op: "read", Err: err}
	}

	return resp, nil
}

// Send writes line without waiting for a reply.
// Used for STOP, which the server never answers.
func (c *Connection) Send(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return ErrConnectionClosed
	}

	c.setDeadline(ctx)
	return c.writeLine(line)
}

// writeLine must be called with lock held
func (c *Connection) writeLine(line string) error {
	err := wire.WriteLine(c.writer, line)
	if err == nil {
		return nil
	}

	var invalid *wire.InvalidLineError
	if errors.As(err, &invalid) {
		return err
	}

	c.Close()
	return &wire.ConnectionError{Op: "write", Err: err}
}

// setDeadline applies the context deadline to the socket (must be called with lock held)
func (c *Connection) setDeadline(ctx context.Context) {
	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
	} else {
		// Clear deadline if context doesn't have one
		c.conn.SetDeadline(time.Time{})
	}
}

// IsClosed returns whether the connection is closed
func (c *Connection) IsClosed() bool {
	return c.closed.Load()
}

// RemoteAddr returns the server address
func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the connection.
// It does not wait for an in-flight round trip, which fails with an I/O error.
func (c *Connection) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.conn.Close()
}
