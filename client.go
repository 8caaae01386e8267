package arith

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pior/arith/wire"
	"github.com/sony/gobreaker/v2"
)

var (
	ErrClientClosed = errors.New("arith: client closed")
	ErrServerClosed = errors.New("arith: server closed the connection")
)

// ResponseError is returned by Call when the server answers UNKNOWN or BAD_DATA.
type ResponseError struct {
	Response wire.Response
}

func (e *ResponseError) Error() string {
	return "arith: " + e.Response.Encode()
}

// ClientConfig holds configuration for the arith client.
type ClientConfig struct {
	// DialTimeout bounds connection establishment when the context has no deadline.
	// Zero means no limit.
	DialTimeout time.Duration

	// RequestTimeout bounds each round trip when the context has no deadline.
	// Zero means no limit.
	RequestTimeout time.Duration

	// Dialer is the net.Dialer used to create connections.
	// If nil, the default net.Dialer is used.
	Dialer *net.Dialer

	// NewCircuitBreaker creates a circuit breaker for the server.
	// If nil, no circuit breaker is used.
	NewCircuitBreaker func(serverAddr string) *CircuitBreaker

	// for testing purposes only
	dial func(ctx context.Context) (net.Conn, error)
}

// Client sends request lines to a single arith server over one connection.
// A connection broken by a transport failure is discarded and re-dialed on
// the next request.
type Client struct {
	addr           string
	dialTimeout    time.Duration
	requestTimeout time.Duration
	dial           func(ctx context.Context) (net.Conn, error)
	breaker        *CircuitBreaker // nil if not configured

	mu     sync.Mutex
	conn   *Connection
	closed bool

	stats *clientStatsCollector
}

// NewClient creates a client for addr. No connection is made until the first request.
func NewClient(addr string, config ClientConfig) (*Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("arith: no server address provided")
	}

	dial := config.dial
	if dial == nil {
		dialer := config.Dialer
		if dialer == nil {
			dialer = &net.Dialer{}
		}
		dial = func(ctx context.Context) (net.Conn, error) {
			return dialer.DialContext(ctx, "tcp", addr)
		}
	}

	client := &Client{
		addr:           addr,
		dialTimeout:    config.DialTimeout,
		requestTimeout: config.RequestTimeout,
		dial:           dial,
		stats:          newClientStatsCollector(),
	}
	if config.NewCircuitBreaker != nil {
		client.breaker = config.NewCircuitBreaker(addr)
	}

	return client, nil
}

// Dial creates a client and connects it immediately.
func Dial(ctx context.Context, addr string, config ClientConfig) (*Client, error) {
	client, err := NewClient(addr, config)
	if err != nil {
		return nil, err
	}
	if _, err := client.connection(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// connection returns the current connection, dialing a new one if needed.
func (c *Client) connection(ctx context.Context) (*Connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn, nil
	}

	if c.dialTimeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.dialTimeout)
			defer cancel()
		}
	}

	netConn, err := c.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("arith: dial %s: %w", c.addr, err)
	}
	c.conn = NewConnection(netConn)
	return c.conn, nil
}

// Do sends one request line and returns the server's reply.
// If a circuit breaker is configured, the round trip is wrapped with it.
func (c *Client) Do(ctx context.Context, line string) (wire.Response, error) {
	if c.requestTimeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
			defer cancel()
		}
	}

	var resp wire.Response
	var err error

	if c.breaker != nil {
		resp, err = c.breaker.Execute(func() (wire.Response, error) {
			return c.roundTrip(ctx, line)
		})
	} else {
		resp, err = c.roundTrip(ctx, line)
	}

	if err != nil {
		c.stats.recordError()
		return wire.Response{}, err
	}

	c.stats.recordResponse(resp.Status)
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, line string) (wire.Response, error) {
	conn, err := c.connection(ctx)
	if err != nil {
		return wire.Response{}, err
	}
	return conn.RoundTrip(ctx, line)
}

// Call sends op with args and returns the RESULT value.
// UNKNOWN and BAD_DATA replies are returned as *ResponseError.
func (c *Client) Call(ctx context.Context, op string, args ...int64) (int64, error) {
	resp, err := c.Do(ctx, wire.NewRequest(op, args...).Encode())
	if err != nil {
		return 0, err
	}
	if !resp.IsResult() {
		return 0, &ResponseError{Response: resp}
	}
	return resp.Value, nil
}

// Stop sends STOP and closes the connection. The client can still be used
// afterwards; the next request dials a new connection.
func (c *Client) Stop(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil || conn.IsClosed() {
		return nil
	}

	err := conn.Send(ctx, wire.CmdStop)
	if cerr := conn.Close(); err == nil {
		err = cerr
	}
	return err
}

// Close closes the client and its connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Stats returns a snapshot of client statistics.
func (c *Client) Stats() ClientStats {
	return c.stats.snapshot()
}

// CircuitBreakerState returns the breaker state, or StateClosed when no
// breaker is configured.
func (c *Client) CircuitBreakerState() gobreaker.State {
	if c.breaker == nil {
		return gobreaker.StateClosed
	}
	return c.breaker.State()
}
