package arith

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startServer runs a server on a loopback port and returns it once it is accepting.
func startServer(t testing.TB, config ServerConfig) *Server {
	t.Helper()

	if config.Logger == nil {
		config.Logger = discardLogger()
	}

	server, err := NewServer(config)
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- server.Serve(context.Background(), listener)
	}()

	require.Eventually(t, func() bool { return server.Addr() != nil }, time.Second, time.Millisecond)

	t.Cleanup(func() {
		server.Close()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	return server
}

// rawConn dials addr and returns a line-oriented handle on the connection.
type rawConn struct {
	net.Conn
	reader *bufio.Reader
}

func dialRaw(t testing.TB, addr string) *rawConn {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	conn.SetDeadline(time.Now().Add(5 * time.Second))
	return &rawConn{Conn: conn, reader: bufio.NewReader(conn)}
}

func (c *rawConn) send(t testing.TB, line string) {
	t.Helper()
	_, err := io.WriteString(c.Conn, line+"\n")
	require.NoError(t, err)
}

func (c *rawConn) receive(t testing.TB) string {
	t.Helper()
	line, err := c.reader.ReadString('\n')
	require.NoError(t, err)
	return line
}

func (c *rawConn) exchange(t testing.TB, line string) string {
	t.Helper()
	c.send(t, line)
	return c.receive(t)
}

// createListener starts a bare TCP listener that hands each connection to handler.
func createListener(t testing.TB, handler func(conn net.Conn)) string {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to start test server: %v", err)
	}

	t.Cleanup(func() {
		listener.Close()
	})

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}

			go func(c net.Conn) {
				defer c.Close()

				if handler != nil {
					handler(c)
				}
			}(conn)
		}
	}()

	return listener.Addr().String()
}

// scriptedResponder answers each request line with the next reply, then closes.
func scriptedResponder(replies ...string) func(conn net.Conn) {
	return func(conn net.Conn) {
		reader := bufio.NewReader(conn)
		for _, reply := range replies {
			if _, err := reader.ReadString('\n'); err != nil {
				return
			}
			if _, err := io.WriteString(conn, reply); err != nil {
				return
			}
		}
	}
}
