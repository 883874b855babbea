package sigs

import "github.com/iov-one/quorum/errors"

var (
	// ErrInvalidSequence is returned when a signature nonce is not the next
	// expected one for the signer.
	ErrInvalidSequence = errors.Register(120, "invalid sequence")
)
