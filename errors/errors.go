package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Root errors shared by all packages. Codes below 100 are reserved for this
// package.
var (
	// ErrUnauthorized is returned when the required conditions are not
	// present in the context.
	ErrUnauthorized = Register(2, "unauthorized")
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound     = Register(3, "not found")
	ErrInvalidMsg   = Register(4, "invalid message")
	ErrInvalidModel = Register(5, "invalid model")
	// ErrDuplicate is returned when a unique key or index value is taken.
	ErrDuplicate = Register(6, "duplicate")
	// ErrHuman marks a code path that correct code never reaches.
	ErrHuman        = Register(7, "coding error")
	ErrEmpty        = Register(9, "value is empty")
	ErrInvalidState = Register(10, "invalid state")
	ErrInvalidType  = Register(11, "invalid type")
	ErrInvalidInput = Register(14, "invalid input")
	ErrOverflow     = Register(16, "value overflow")
	// ErrDatabase is returned when the underlying storage fails.
	ErrDatabase = Register(17, "database")
	// ErrPanic is the root of every recovered panic. Its details are
	// never exposed outside of debug mode.
	ErrPanic = Register(111222, "panic")
)

// usedCodes maps every registered code to its root error. Code 1 belongs to
// errors that are not registered at all.
var usedCodes = map[uint32]*Error{1: nil}

// Register declares a new root error. It panics when the code is already
// taken, so call it only from package level variable declarations.
func Register(code uint32, description string) *Error {
	if prev, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error code %d is already registered: %q", code, prev.desc))
	}
	e := &Error{code: code, desc: description}
	usedCodes[code] = e
	return e
}

// Error is a registered root error. Errors returned at runtime wrap one of
// the roots so that callers can test them with Is and clients receive a
// stable code.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// ABCICode returns the public code of this error.
func (e Error) ABCICode() uint32 {
	return e.code
}

// New wraps the root error with a description. It is the same as
// Wrap(e, description).
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

func (e *Error) Newf(format string, args ...interface{}) error {
	return Wrap(e, fmt.Sprintf(format, args...))
}

// Is returns true if err is this root error or wraps it. A nil root matches
// only a nil error.
func (e *Error) Is(err error) bool {
	if e == nil {
		return isNilErr(err)
	}
	return walk(err, func(cur error) bool {
		return cur == e
	}) != nil
}

// Wrap adds a description to err and attaches a stack trace if err does not
// carry one yet. Wrapping nil returns nil.
//
// Errors that do not wrap a registered root are reported as internal
// errors.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrappedError{msg: description, parent: err}
}

func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.parent.Error()
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Format writes the message. With %+v the stack trace of the innermost
// wrap follows it.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	fmt.Fprint(s, e.Error())
	if verb != 'v' || !s.Flag('+') {
		return
	}
	if st := stackTrace(e); st != nil {
		fmt.Fprintf(s, "%+v", st.StackTrace())
	}
}

// Recover turns a panic into an ErrPanic assigned to err. Use it with
// defer.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

type causer interface {
	Cause() error
}

type stackTracer interface {
	error
	StackTrace() errors.StackTrace
}

// walk calls match for err and then for every error it wraps, returning the
// first one matched. It returns nil when nothing matches.
func walk(err error, match func(error) bool) error {
	for !isNilErr(err) {
		if match(err) {
			return err
		}
		c, ok := err.(causer)
		if !ok {
			return nil
		}
		err = c.Cause()
	}
	return nil
}

// stackTrace returns the outermost error in the chain carrying a stack
// trace, or nil.
func stackTrace(err error) stackTracer {
	found := walk(err, func(cur error) bool {
		_, ok := cur.(stackTracer)
		return ok
	})
	if found == nil {
		return nil
	}
	return found.(stackTracer)
}

// isNilErr also catches typed nil pointers stored in an error interface.
func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	v := reflect.ValueOf(err)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
