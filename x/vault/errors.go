package vault

import "github.com/iov-one/quorum/errors"

var (
	ErrEmptyOwners      = errors.Register(300, "owners must not be empty")
	ErrInvalidThreshold = errors.Register(301, "invalid threshold")
	ErrDuplicateOwner   = errors.Register(302, "owners must be unique")
	ErrInvalidOwner     = errors.Register(303, "not a vault owner")
	ErrNotEnoughSigners = errors.Register(304, "not enough owners approved")
	ErrAlreadyExecuted  = errors.Register(305, "proposal already executed")
	ErrStaleProposal    = errors.Register(306, "owner set changed since proposal creation")
)
