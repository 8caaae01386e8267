package testutils

import (
	"bytes"
	"net"
	"strings"
	"sync"
	"time"
)

// ConnectionMock is an in-memory net.Conn for testing.
// Reads drain the scripted input and then return ReadErr (io.EOF by default);
// writes are recorded unless WriteErr is set.
type ConnectionMock struct {
	mu       sync.Mutex
	readBuf  *bytes.Buffer
	writeBuf *bytes.Buffer
	closed   bool

	// ReadErr is returned once the scripted input is exhausted.
	// If nil, io.EOF is returned.
	ReadErr error

	// WriteErr, if set, fails every write.
	WriteErr error

	readDeadlines int
}

// NewConnectionMock creates a mock connection that yields the given lines as input.
// Each line is terminated with "\n".
func NewConnectionMock(lines ...string) *ConnectionMock {
	var input strings.Builder
	for _, line := range lines {
		input.WriteString(line)
		input.WriteString("\n")
	}
	return NewConnectionMockRaw(input.String())
}

// NewConnectionMockRaw creates a mock connection that yields data verbatim as input.
func NewConnectionMockRaw(data string) *ConnectionMock {
	return &ConnectionMock{
		readBuf:  bytes.NewBufferString(data),
		writeBuf: &bytes.Buffer{},
	}
}

func (m *ConnectionMock) Read(b []byte) (n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, net.ErrClosed
	}
	if m.readBuf.Len() == 0 && m.ReadErr != nil {
		return 0, m.ReadErr
	}
	return m.readBuf.Read(b)
}

func (m *ConnectionMock) Write(b []byte) (n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, net.ErrClosed
	}
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}
	return m.writeBuf.Write(b)
}

func (m *ConnectionMock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (m *ConnectionMock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *ConnectionMock) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1234}
}

func (m *ConnectionMock) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 50000}
}

func (m *ConnectionMock) SetDeadline(t time.Time) error { return nil }

func (m *ConnectionMock) SetReadDeadline(t time.Time) error {
	m.mu.Lock()
	m.readDeadlines++
	m.mu.Unlock()
	return nil
}

func (m *ConnectionMock) SetWriteDeadline(t time.Time) error { return nil }

// ReadDeadlines returns how many times SetReadDeadline was called.
func (m *ConnectionMock) ReadDeadlines() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readDeadlines
}

// Written returns everything written to the mock connection.
func (m *ConnectionMock) Written() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeBuf.String()
}

// WrittenLines returns the written output split into lines, without terminators.
func (m *ConnectionMock) WrittenLines() []string {
	out := strings.TrimSuffix(m.Written(), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}
