// Package wire implements the arith line protocol codec.
//
// Every message is one line of UTF-8 text terminated by '\n'. A trailing
// '\r' before the terminator is tolerated on input and never produced.
//
// # Requests
//
// A request is an operation name followed by zero or more base-10 signed
// integers, all separated by single spaces:
//
//	ADD 2 3 5
//	SQRT 9
//	STOP
//
// DecodeRequest splits a line into a Request. A token that is not an integer
// yields a *MalformedArgumentError.
//
// # Responses
//
// The server answers each request with exactly one tagged line:
//
//	RESULT 10
//	UNKNOWN FOO
//	BAD_DATA division by zero
//
// WriteResponse serializes a Response; ParseResponse is the client-side
// inverse.
//
// # Error Handling
//
// Errors returned by this package implement ShouldCloseConnection so callers
// can tell a broken stream from a recoverable protocol condition:
//
//	line, err := wire.ReadLine(r)
//	if err != nil {
//	    if wire.ShouldCloseConnection(err) {
//	        conn.Close()
//	    }
//	    return err
//	}
package wire
