package arith

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pior/arith/wire"
)

// Prompt is printed before each operator line.
const Prompt = "> "

// Interact runs the operator loop: read a line from in, send it, print the
// interpreted reply to out. It ends when the operator types STOP (any case)
// or in is exhausted, in which case STOP is sent and nil returned.
//
// A reply stream closed by the server returns ErrServerClosed.
func Interact(ctx context.Context, client *Client, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, Prompt)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("arith: read input: %w", err)
			}
			return disconnect(ctx, client, out)
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if wire.IsStop(line) {
			return disconnect(ctx, client, out)
		}

		resp, err := client.Do(ctx, line)
		if err != nil {
			var perr *wire.ParseError
			switch {
			case errors.As(err, &perr):
				fmt.Fprintf(out, "Unexpected response from server: %s\n", perr.Line)
				continue
			case errors.Is(err, io.EOF):
				fmt.Fprintln(out, "Server closed the connection.")
				return ErrServerClosed
			default:
				return err
			}
		}

		printResponse(out, resp)
	}
}

func disconnect(ctx context.Context, client *Client, out io.Writer) error {
	err := client.Stop(ctx)
	fmt.Fprintln(out, "Disconnecting from server...")
	return err
}

func printResponse(out io.Writer, resp wire.Response) {
	switch resp.Status {
	case wire.StatusResult:
		fmt.Fprintf(out, "Result: %d\n", resp.Value)
	case wire.StatusUnknown:
		fmt.Fprintf(out, "Error: Unknown operation - %s\n", resp.Text)
	case wire.StatusBadData:
		fmt.Fprintf(out, "Error: Invalid data - %s\n", resp.Text)
	}
}
