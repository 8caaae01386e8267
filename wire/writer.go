package wire

import (
	"bufio"
	"io"
	"strings"
)

// WriteLine writes line followed by a single LF.
// Lines containing CR or LF are rejected since they would split into
// several messages on the wire.
//
// Flushes w when it is a *bufio.Writer.
func WriteLine(w io.Writer, line string) error {
	if strings.ContainsAny(line, CR+LF) {
		return &InvalidLineError{Message: "line contains a line terminator"}
	}
	return writeTerminated(w, line)
}

// WriteRequest writes the encoded request followed by LF.
func WriteRequest(w io.Writer, req Request) error {
	return WriteLine(w, req.Encode())
}

// WriteResponse writes the encoded response followed by LF.
func WriteResponse(w io.Writer, resp Response) error {
	return writeTerminated(w, resp.Encode())
}

func writeTerminated(w io.Writer, line string) error {
	if bw, ok := w.(*bufio.Writer); ok {
		bw.WriteString(line)
		bw.WriteString(LF)
		return bw.Flush()
	}

	_, err := io.WriteString(w, line+LF)
	return err
}
