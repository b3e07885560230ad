package mailer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
)

// Transport error codes reported to handlers.
const (
	CodeAuth       = "EAUTH"
	CodeConnection = "ECONNECTION"
	CodeTLS        = "ETLS"
	CodeTimeout    = "ETIMEDOUT"
	CodeEnvelope   = "EENVELOPE"
	CodeMessage    = "EMESSAGE"
	CodeProtocol   = "EPROTOCOL"
)

// Error is a classified transport failure.
// ResponseCode is the SMTP reply code when the server rejected a command, 0 otherwise.
type Error struct {
	Code         string
	ResponseCode int
	Op           string
	Err          error
}

func (e *Error) Error() string {
	if e.ResponseCode != 0 {
		return fmt.Sprintf("smtp %s: %s (%d): %v", e.Op, e.Code, e.ResponseCode, e.Err)
	}
	return fmt.Sprintf("smtp %s: %s: %v", e.Op, e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// newError classifies err for operation op. code is used unless the error is a timeout.
func newError(code, op string, err error) *Error {
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}

	e := &Error{Code: code, Op: op, Err: err}

	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		e.ResponseCode = tpErr.Code
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		e.Code = CodeTimeout
	}
	return e
}

// AsError extracts a classified transport error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
