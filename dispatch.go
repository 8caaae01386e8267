package arith

import (
	"github.com/pior/arith/ops"
	"github.com/pior/arith/wire"
)

// Dispatch resolves one request line into its response.
// It returns stop=true, and no response, for the STOP command.
func Dispatch(line string) (resp wire.Response, stop bool) {
	if wire.IsStop(line) {
		return wire.Response{}, true
	}
	return Evaluate(line), false
}

// Evaluate decodes line and executes it. Malformed arguments are reported
// as BAD_DATA before the operation name is looked up.
func Evaluate(line string) wire.Response {
	req, err := wire.DecodeRequest(line)
	if err != nil {
		return wire.BadData(wire.ReasonMalformedArgument)
	}
	return Execute(req)
}

// Execute runs a decoded request against the operation registry.
func Execute(req wire.Request) wire.Response {
	op, ok := ops.Lookup(req.Name)
	if !ok {
		return wire.Unknown(req.Name)
	}

	v, err := op.Apply(req.Args)
	if err != nil {
		return wire.BadData(err.Error())
	}
	return wire.Result(v)
}
