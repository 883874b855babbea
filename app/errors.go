package app

import (
	"github.com/iov-one/quorum/errors"
)

// App reserves 10~19 error codes

// ErrNoSuchPath is returned when a message is routed to a path that has no
// handler registered.
var ErrNoSuchPath = errors.Register(12, "path not registered")
