package arith

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/jackc/puddle/v2"

	"github.com/pior/arith/ops"
)

// DefaultAddr is the address the server listens on when none is configured.
const DefaultAddr = ":1234"

const (
	defaultMaxSessions = 1024
	defaultBufferSize  = 4096
	acceptBackoff      = 50 * time.Millisecond
)

var (
	ErrServerStopped = errors.New("arith: server stopped")
)

// ServerConfig holds configuration for the arith server.
type ServerConfig struct {
	// Addr is the TCP address to listen on, used by ListenAndServe.
	// If empty, DefaultAddr is used.
	Addr string

	// ReadTimeout bounds the wait for each request line.
	// Zero means no limit. A timeout ends the session.
	ReadTimeout time.Duration

	// WriteTimeout bounds each response write.
	// Zero means no limit.
	WriteTimeout time.Duration

	// MaxSessions is the maximum number of sessions served at once.
	// Further connections wait in the accept backlog.
	// If zero, defaults to 1024.
	MaxSessions int32

	// BufferSize is the size of each session's read and write buffers.
	// If zero, defaults to 4096.
	BufferSize int

	// RequestsPerSecond throttles each session to this request rate.
	// Zero disables throttling.
	RequestsPerSecond float64

	// RequestBurst is the token bucket size used with RequestsPerSecond.
	// If zero, defaults to 1.
	RequestBurst int

	// Logger receives session and accept failures.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Server accepts connections and serves each one in its own goroutine.
// Sessions share nothing but the read-only operation registry.
type Server struct {
	config   ServerConfig
	logger   *slog.Logger
	sessions *puddle.Pool[*sessionBuffers]
	stats    *serverStatsCollector

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	cancel   context.CancelFunc
	closed   bool

	wg sync.WaitGroup
}

// NewServer creates a server with the given configuration.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Addr == "" {
		config.Addr = DefaultAddr
	}
	if config.MaxSessions <= 0 {
		config.MaxSessions = defaultMaxSessions
	}
	if config.BufferSize <= 0 {
		config.BufferSize = defaultBufferSize
	}
	if config.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("arith: negative request rate %v", config.RequestsPerSecond)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sessions, err := newSessionPool(config.MaxSessions, config.BufferSize)
	if err != nil {
		return nil, fmt.Errorf("arith: create session pool: %w", err)
	}

	return &Server{
		config:   config,
		logger:   logger,
		sessions: sessions,
		stats:    newServerStatsCollector(),
		conns:    make(map[net.Conn]struct{}),
	}, nil
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled or Close is called. A bind failure is returned immediately.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("arith: listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or Close is called.
// It takes ownership of ln and returns nil after a clean shutdown, once all
// sessions have ended.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.closed || s.listener != nil {
		s.mu.Unlock()
		ln.Close()
		return ErrServerStopped
	}
	s.listener = ln
	s.cancel = cancel
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	s.logger.Info("arith: listening", "addr", ln.Addr().String(), "operations", ops.Names())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("arith: accept failed", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(acceptBackoff):
			}
			continue
		}

		res, err := s.sessions.Acquire(ctx)
		if err != nil {
			conn.Close()
			if s.isClosed() || ctx.Err() != nil {
				break
			}
			s.logger.Error("arith: session slot unavailable", "error", err)
			continue
		}

		if !s.track(conn) {
			res.Release()
			conn.Close()
			break
		}

		s.stats.recordAccept()
		go s.serveConn(ctx, conn, res)
	}

	s.wg.Wait()
	return nil
}

// serveConn runs one session and releases its resources on every exit path.
func (s *Server) serveConn(ctx context.Context, conn net.Conn, res *puddle.Resource[*sessionBuffers]) {
	buffers := res.Value()
	buffers.attach(conn)

	logger := s.logger.With("remote", conn.RemoteAddr().String())
	logger.Debug("arith: session started")

	sess := newSession(conn, buffers, s.config, s.stats)

	defer func() {
		buffers.detach()
		s.untrack(conn)
		res.Release()
		s.wg.Done()
	}()

	err := sess.run(ctx)
	switch {
	case err == nil:
		logger.Debug("arith: session ended", "requests", sess.requests)
	case s.isClosed():
		logger.Debug("arith: session closed by shutdown", "requests", sess.requests, "error", err)
	default:
		s.stats.recordSessionError()
		logger.Warn("arith: session failed", "requests", sess.requests, "error", err)
	}
}

// track registers a live connection and its session goroutine.
// It returns false once the server is closed.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()

	conn.Close()
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Addr returns the listener address, or nil before Serve is called.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close stops accepting connections, closes live sessions and waits for them to end.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true

	if s.cancel != nil {
		s.cancel()
	}

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.sessions.Close()
	return err
}

// Stats returns a snapshot of server statistics.
func (s *Server) Stats() ServerStats {
	stats := s.stats.snapshot()

	stat := s.sessions.Stat()
	stats.ActiveSessions = stat.AcquiredResources()
	stats.MaxSessions = stat.MaxResources()
	return stats
}
