package arith

import (
	"bufio"
	"context"
	"io"

	"github.com/jackc/puddle/v2"
)

// sessionBuffers holds the read and write buffers of one session.
// They are pooled across sessions; the pool size caps concurrent sessions.
type sessionBuffers struct {
	reader *bufio.Reader
	writer *bufio.Writer
}

func (b *sessionBuffers) attach(rw io.ReadWriter) {
	b.reader.Reset(rw)
	b.writer.Reset(rw)
}

func (b *sessionBuffers) detach() {
	b.reader.Reset(nil)
	b.writer.Reset(nil)
}

// newSessionPool creates a puddle pool of session buffers holding at most maxSize entries.
func newSessionPool(maxSize int32, bufferSize int) (*puddle.Pool[*sessionBuffers], error) {
	return puddle.NewPool(&puddle.Config[*sessionBuffers]{
		Constructor: func(ctx context.Context) (*sessionBuffers, error) {
			return &sessionBuffers{
				reader: bufio.NewReaderSize(nil, bufferSize),
				writer: bufio.NewWriterSize(nil, bufferSize),
			}, nil
		},
		Destructor: func(*sessionBuffers) {},
		MaxSize:    maxSize,
	})
}
