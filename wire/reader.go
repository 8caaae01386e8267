package wire

import (
	"bufio"
	"strings"
)

// ReadLine reads one line from r and strips its terminator.
// It returns io.EOF when the stream is closed before a complete line is read;
// a partial unterminated line is discarded.
//
// Uses ReadSlice to avoid allocating for lines that fit in the buffer and
// falls back to ReadString for longer lines.
func ReadLine(r *bufio.Reader) (string, error) {
	slice, err := r.ReadSlice('\n')
	var line string
	switch err {
	case nil:
		line = string(slice)
	case bufio.ErrBufferFull:
		head := string(slice)
		rest, err := r.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = head + rest
	default:
		return "", err
	}

	line = strings.TrimSuffix(line, LF)
	line = strings.TrimSuffix(line, CR)
	return line, nil
}

// ReadResponse reads and parses a single response line from r.
//
// Go errors returned:
//   - io.EOF: connection closed
//   - *ParseError: unrecognized line, connection is still usable
//   - Other I/O errors: connection should be closed
func ReadResponse(r *bufio.Reader) (Response, error) {
	line, err := ReadLine(r)
	if err != nil {
		return Response{}, err
	}
	return ParseResponse(line)
}
