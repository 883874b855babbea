package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attaches the name of the failing field to err, for example
// Owners.2 or Instructions.0.Target. List elements are indexed from zero. A
// nil err stays nil.
func Field(name string, err error, format string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	desc := format
	if len(args) > 0 {
		desc = fmt.Sprintf(format, args...)
	}
	return &fieldError{cause: err, name: name, desc: desc}
}

type fieldError struct {
	cause error
	name  string
	desc  string
}

func (e *fieldError) Error() string {
	if e.desc == "" {
		return fmt.Sprintf("field %q: %s", e.name, e.cause)
	}
	return fmt.Sprintf("field %q: %s: %s", e.name, e.desc, e.cause)
}

func (e *fieldError) Cause() error  { return e.cause }
func (e *fieldError) Field() string { return e.name }

type fielder interface {
	Field() string
}

// FieldName returns the name given to the outermost Field wrap of err or
// an empty string.
func FieldName(err error) string {
	if f, ok := walk(err, func(cur error) bool {
		_, ok := cur.(fielder)
		return ok
	}).(fielder); ok {
		return f.Field()
	}
	return ""
}
