package wire

import (
	"strconv"
	"strings"
)

// Request is a decoded request line.
type Request struct {
	// Name is the operation token exactly as received.
	Name string

	// Args are the integer arguments in wire order.
	Args []int64
}

// NewRequest creates a Request for op with args.
func NewRequest(op string, args ...int64) Request {
	return Request{Name: op, Args: args}
}

// Encode returns the request line without terminator.
func (r Request) Encode() string {
	if len(r.Args) == 0 {
		return r.Name
	}

	var b strings.Builder
	b.WriteString(r.Name)
	for _, arg := range r.Args {
		b.WriteString(Space)
		b.WriteString(strconv.FormatInt(arg, 10))
	}
	return b.String()
}

// DecodeRequest splits line on single spaces into an operation name and
// integer arguments. Consecutive spaces produce empty tokens, which are
// malformed arguments.
func DecodeRequest(line string) (Request, error) {
	name, rest, hasArgs := strings.Cut(line, Space)
	req := Request{Name: name}
	if !hasArgs {
		return req, nil
	}

	tokens := strings.Split(rest, Space)
	req.Args = make([]int64, len(tokens))
	for i, token := range tokens {
		v, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return Request{Name: name}, &MalformedArgumentError{Token: token, Err: err}
		}
		req.Args[i] = v
	}
	return req, nil
}

// IsStop reports whether line is the STOP command, ignoring case.
func IsStop(line string) bool {
	return strings.EqualFold(line, CmdStop)
}
