/*
Package errors implements the error registry used by all quorum packages.

Reuse the root errors declared in this package where possible and register
a custom root error only when an extension needs a distinct, testable
failure class (see x/vault for an example). Register(code, description)
panics on a reused code.

Create errors at the point of failure with ErrXyz.New("...") or
errors.Wrap(err, "...") so that a stacktrace is attached once, at the
innermost wrap. Do not declare wrapped errors as package variables, the
recorded stacktrace would be useless.

Test for an error class with ErrXyz.Is(err). A nil *Error matches a nil
error only, which keeps table tests short.

Formatting:
	%s is just the error message
	%+v is the message followed by the stack trace of the innermost wrap
*/
package errors
