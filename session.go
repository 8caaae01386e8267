package arith

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"time"

	"golang.org/x/time/rate"

	"github.com/pior/arith/wire"
)

// session serves one accepted connection: read a line, answer it, repeat.
type session struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer

	readTimeout  time.Duration
	writeTimeout time.Duration
	limiter      *rate.Limiter // nil if unlimited

	stats    *serverStatsCollector
	requests int
}

func newSession(conn net.Conn, buffers *sessionBuffers, config ServerConfig, stats *serverStatsCollector) *session {
	s := &session{
		conn:         conn,
		reader:       buffers.reader,
		writer:       buffers.writer,
		readTimeout:  config.ReadTimeout,
		writeTimeout: config.WriteTimeout,
		stats:        stats,
	}
	if config.RequestsPerSecond > 0 {
		burst := config.RequestBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}
	return s
}

// run loops until the peer closes the stream, sends STOP, or an I/O error occurs.
// It returns nil for a clean end and a *wire.ConnectionError otherwise.
func (s *session) run(ctx context.Context) error {
	for {
		if s.readTimeout > 0 {
			s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		}

		line, err := wire.ReadLine(s.reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return &wire.ConnectionError{Op: "read", Err: err}
		}

		resp, stop := Dispatch(line)
		if stop {
			s.stats.recordStop()
			return nil
		}

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		if s.writeTimeout > 0 {
			s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		}

		if err := wire.WriteResponse(s.writer, resp); err != nil {
			return &wire.ConnectionError{Op: "write", Err: err}
		}

		s.requests++
		s.stats.recordResponse(resp.Status)
	}
}
