package ops

import "errors"

// Validation errors returned by Operation.Validate.
// Their text is sent verbatim to the client as the BAD_DATA reason.
var (
	ErrDivisionByZero   = errors.New("division by zero")
	ErrTooManyArguments = errors.New("too many arguments")
	ErrNegativeArgument = errors.New("negative argument")
	ErrMissingArgument  = errors.New("missing argument")
)
