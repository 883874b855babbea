package errors

import (
	"errors"
	"fmt"
)

// SuccessABCICode is the response code of a successful request.
const SuccessABCICode = 0

// Errors that do not wrap a registered root share one code and, outside of
// debug mode, one message.
const (
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the code and log reported to the client for err. The
// message of an internal error is hidden unless debug is set, in which case
// the full stack trace is returned.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessABCICode, ""
	}
	code := abciCode(err)
	switch {
	case debug:
		return code, fmt.Sprintf("%+v", err)
	case code == internalABCICode:
		return code, internalABCILog
	default:
		return code, err.Error()
	}
}

type coder interface {
	ABCICode() uint32
}

// abciCode returns the code of the registered root wrapped by err.
func abciCode(err error) uint32 {
	if isNilErr(err) {
		return SuccessABCICode
	}
	found := walk(err, func(cur error) bool {
		_, ok := cur.(coder)
		return ok
	})
	if found == nil {
		return internalABCICode
	}
	return found.(coder).ABCICode()
}

// Redact replaces internal errors and recovered panics with a generic
// error. It returns err unchanged in debug mode.
func Redact(err error, debug bool) error {
	if debug {
		return err
	}
	if ErrPanic.Is(err) || abciCode(err) == internalABCICode {
		return errors.New(internalABCILog)
	}
	return err
}
