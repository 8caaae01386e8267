package wire

import (
	"strconv"
	"strings"
)

// Response is one tagged server reply.
// Exactly one of Value (RESULT) or Text (UNKNOWN, BAD_DATA) is meaningful,
// depending on Status.
type Response struct {
	Status Status

	// Value is the computed result for StatusResult.
	Value int64

	// Text is the echoed token for StatusUnknown or the reason for StatusBadData.
	Text string
}

// Result creates a RESULT response.
func Result(v int64) Response {
	return Response{Status: StatusResult, Value: v}
}

// Unknown creates an UNKNOWN response echoing name.
func Unknown(name string) Response {
	return Response{Status: StatusUnknown, Text: name}
}

// BadData creates a BAD_DATA response with reason.
func BadData(reason string) Response {
	return Response{Status: StatusBadData, Text: reason}
}

// IsResult returns true for a RESULT response.
func (r Response) IsResult() bool {
	return r.Status == StatusResult
}

// Encode returns the response line without terminator.
func (r Response) Encode() string {
	if r.Status == StatusResult {
		return string(StatusResult) + Space + strconv.FormatInt(r.Value, 10)
	}
	return string(r.Status) + Space + r.Text
}

func (r Response) String() string {
	return r.Encode()
}

// ParseResponse parses a response line (without terminator).
// A line whose tag is not one of RESULT, UNKNOWN or BAD_DATA, or a RESULT
// whose payload is not an integer, returns a *ParseError.
func ParseResponse(line string) (Response, error) {
	tag, payload, _ := strings.Cut(line, Space)

	switch Status(tag) {
	case StatusResult:
		v, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			return Response{}, &ParseError{Message: "invalid RESULT value", Line: line, Err: err}
		}
		return Result(v), nil
	case StatusUnknown:
		return Unknown(payload), nil
	case StatusBadData:
		return BadData(payload), nil
	default:
		return Response{}, &ParseError{Message: "unexpected response tag", Line: line}
	}
}
