package wire

// Status is the leading tag of a response line.
type Status string

// Protocol delimiters
const (
	// LF terminates every message.
	LF = "\n"

	// CR is accepted before LF on input.
	CR = "\r"

	// Space separates tokens.
	Space = " "
)

// Response tags
const (
	// StatusResult carries the integer result of a valid request.
	StatusResult Status = "RESULT"

	// StatusUnknown echoes an operation name that is not registered.
	StatusUnknown Status = "UNKNOWN"

	// StatusBadData carries a free-text reason for rejected arguments.
	StatusBadData Status = "BAD_DATA"
)

// CmdStop ends a session. It is matched case-insensitively.
const CmdStop = "STOP"

// ReasonMalformedArgument is the BAD_DATA reason for non-integer arguments.
const ReasonMalformedArgument = "malformed argument"
