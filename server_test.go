package arith

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_Examples(t *testing.T) {
	server := startServer(t, ServerConfig{})
	conn := dialRaw(t, server.Addr().String())

	assert.Equal(t, "RESULT 10\n", conn.exchange(t, "ADD 2 3 5"))
	assert.Equal(t, "BAD_DATA division by zero\n", conn.exchange(t, "DIV 10 0"))
	assert.Equal(t, "UNKNOWN FOO\n", conn.exchange(t, "FOO 1"))
	assert.Equal(t, "BAD_DATA negative argument\n", conn.exchange(t, "SQRT -4"))
	assert.Equal(t, "RESULT 3\n", conn.exchange(t, "SQRT 9"))
	assert.Equal(t, "BAD_DATA malformed argument\n", conn.exchange(t, "ADD 1 x"))
}

func TestServer_StopClosesSession(t *testing.T) {
	server := startServer(t, ServerConfig{})
	conn := dialRaw(t, server.Addr().String())

	assert.Equal(t, "RESULT 3\n", conn.exchange(t, "ADD 1 2"))
	conn.send(t, "STOP")

	// No reply; the server closes its side.
	_, err := conn.reader.ReadString('\n')
	assert.ErrorIs(t, err, io.EOF)

	require.Eventually(t, func() bool {
		return server.Stats().Stops == 1 && server.Stats().ActiveSessions == 0
	}, time.Second, 5*time.Millisecond)
}

func TestServer_PipelinedRequests(t *testing.T) {
	server := startServer(t, ServerConfig{})
	conn := dialRaw(t, server.Addr().String())

	_, err := io.WriteString(conn.Conn, "ADD 1 1\nMULT 2 3\nSUB 10 4\n")
	require.NoError(t, err)

	assert.Equal(t, "RESULT 2\n", conn.receive(t))
	assert.Equal(t, "RESULT 6\n", conn.receive(t))
	assert.Equal(t, "RESULT 6\n", conn.receive(t))
}

func TestServer_ConcurrentSessions(t *testing.T) {
	server := startServer(t, ServerConfig{})
	addr := server.Addr().String()

	const sessions = 20
	var wg sync.WaitGroup
	for i := range sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn := dialRaw(t, addr)
			for j := range 10 {
				got := conn.exchange(t, fmt.Sprintf("ADD %d %d", i, j))
				assert.Equal(t, fmt.Sprintf("RESULT %d\n", i+j), got)
			}
			conn.send(t, "STOP")
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		return server.Stats().Stops == sessions
	}, 2*time.Second, 5*time.Millisecond)

	stats := server.Stats()
	assert.Equal(t, uint64(sessions), stats.SessionsAccepted)
	assert.Equal(t, uint64(sessions*10), stats.Results)
}

func TestServer_BrokenSessionDoesNotAffectOthers(t *testing.T) {
	server := startServer(t, ServerConfig{})
	addr := server.Addr().String()

	healthy := dialRaw(t, addr)
	assert.Equal(t, "RESULT 1\n", healthy.exchange(t, "ADD 1"))

	broken := dialRaw(t, addr)
	_, err := io.WriteString(broken.Conn, "ADD 1 2")
	require.NoError(t, err)
	require.NoError(t, broken.Close())

	assert.Equal(t, "RESULT 4\n", healthy.exchange(t, "SQR 2"))
}

func TestServer_MaxSessions(t *testing.T) {
	server := startServer(t, ServerConfig{MaxSessions: 1})
	addr := server.Addr().String()

	first := dialRaw(t, addr)
	assert.Equal(t, "RESULT 1\n", first.exchange(t, "ADD 1"))

	// The second session waits for the slot held by the first.
	second := dialRaw(t, addr)
	second.send(t, "ADD 2")

	replies := make(chan string, 1)
	go func() {
		line, err := second.reader.ReadString('\n')
		if err == nil {
			replies <- line
		}
	}()

	select {
	case <-replies:
		t.Fatal("second session served while the slot was held")
	case <-time.After(50 * time.Millisecond):
	}

	first.send(t, "STOP")

	select {
	case line := <-replies:
		assert.Equal(t, "RESULT 2\n", line)
	case <-time.After(2 * time.Second):
		t.Fatal("second session was never served")
	}

	assert.Equal(t, int32(1), server.Stats().MaxSessions)
}

func TestServer_Stats(t *testing.T) {
	server := startServer(t, ServerConfig{MaxSessions: 8})
	conn := dialRaw(t, server.Addr().String())

	conn.exchange(t, "ADD 1")
	conn.exchange(t, "NOPE")
	conn.exchange(t, "DIV 1 0")

	stats := server.Stats()
	assert.Equal(t, uint64(1), stats.SessionsAccepted)
	assert.Equal(t, uint64(3), stats.Requests)
	assert.Equal(t, uint64(1), stats.Results)
	assert.Equal(t, uint64(1), stats.Unknowns)
	assert.Equal(t, uint64(1), stats.BadData)
	assert.Equal(t, int32(1), stats.ActiveSessions)
	assert.Equal(t, int32(8), stats.MaxSessions)
}

func TestServer_CloseEndsSessions(t *testing.T) {
	server, err := NewServer(ServerConfig{Logger: discardLogger()})
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- server.Serve(context.Background(), listener) }()

	conn := dialRaw(t, listener.Addr().String())
	assert.Equal(t, "RESULT 2\n", conn.exchange(t, "ADD 1 1"))

	require.NoError(t, server.Close())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}

	_, err = conn.reader.ReadString('\n')
	assert.Error(t, err)
	assert.Equal(t, int32(0), server.Stats().ActiveSessions)
	assert.Equal(t, uint64(0), server.Stats().SessionErrors)
}

func TestServer_ContextCancel(t *testing.T) {
	server, err := NewServer(ServerConfig{Logger: discardLogger()})
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, listener) }()

	conn := dialRaw(t, listener.Addr().String())
	assert.Equal(t, "RESULT 9\n", conn.exchange(t, "SQR 3"))

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}

	_, err = net.DialTimeout("tcp", listener.Addr().String(), 100*time.Millisecond)
	assert.Error(t, err)
}

func TestServer_ServeAfterClose(t *testing.T) {
	server, err := NewServer(ServerConfig{Logger: discardLogger()})
	require.NoError(t, err)
	require.NoError(t, server.Close())

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	err = server.Serve(context.Background(), listener)
	assert.ErrorIs(t, err, ErrServerStopped)
}

func TestServer_ListenAndServe_BindFailure(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer occupied.Close()

	server, err := NewServer(ServerConfig{Addr: occupied.Addr().String(), Logger: discardLogger()})
	require.NoError(t, err)

	err = server.ListenAndServe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arith: listen on")
}

func TestServer_ReadTimeoutEndsSession(t *testing.T) {
	server := startServer(t, ServerConfig{ReadTimeout: 50 * time.Millisecond})
	conn := dialRaw(t, server.Addr().String())

	assert.Equal(t, "RESULT 5\n", conn.exchange(t, "ADD 2 3"))

	_, err := conn.reader.ReadString('\n')
	assert.ErrorIs(t, err, io.EOF)

	require.Eventually(t, func() bool {
		return server.Stats().SessionErrors == 1
	}, time.Second, 5*time.Millisecond)
}

func TestNewServer_Defaults(t *testing.T) {
	server, err := NewServer(ServerConfig{})
	require.NoError(t, err)
	defer server.Close()

	assert.Equal(t, DefaultAddr, server.config.Addr)
	assert.Equal(t, int32(defaultMaxSessions), server.Stats().MaxSessions)
	assert.Nil(t, server.Addr())
}

func TestNewServer_NegativeRate(t *testing.T) {
	_, err := NewServer(ServerConfig{RequestsPerSecond: -1})
	assert.Error(t, err)
}
