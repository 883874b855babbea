package quorumtest

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/crypto"
)

// NewKey returns a fresh random ed25519 signer.
func NewKey() crypto.Signer {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns the condition of a fresh random key.
func NewCondition() quorum.Condition {
	return NewKey().PublicKey().Condition()
}

// NewAddresses returns n distinct addresses, each one the address of a fresh
// key condition.
func NewAddresses(n int) []quorum.Address {
	addrs := make([]quorum.Address, n)
	for i := range addrs {
		addrs[i] = NewCondition().Address()
	}
	return addrs
}
