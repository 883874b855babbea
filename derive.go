package quorum

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/iov-one/quorum/errors"
)

const derivePrefix = "quorum/derive/"

// DeriveAddress computes a deterministic address from a domain tag and a
// list of seeds. Anyone knowing the tag and seeds can recompute the address
// without any prior storage.
//
// The returned bump is the discriminator that was mixed into the digest. It
// is searched downwards from 255 and the first candidate that is not the
// reserved zero address wins. Store it to recompute the address with
// CreateDerivedAddress without searching.
func DeriveAddress(tag string, seeds ...[]byte) (Address, uint8) {
	for bump := 255; bump >= 0; bump-- {
		addr := CreateDerivedAddress(tag, uint8(bump), seeds...)
		if !isZeroAddress(addr) {
			return addr, uint8(bump)
		}
	}
	// Finding 256 zero digests in a row means sha256 is broken.
	panic("cannot derive address")
}

// CreateDerivedAddress computes the address for given tag, seeds and bump.
// Each seed is length prefixed so that different seed splits never produce
// the same digest.
func CreateDerivedAddress(tag string, bump uint8, seeds ...[]byte) Address {
	h := sha256.New()
	_, _ = h.Write([]byte(derivePrefix))
	_, _ = h.Write([]byte(tag))
	var lenbuf [binary.MaxVarintLen64]byte
	for _, s := range seeds {
		n := binary.PutUvarint(lenbuf[:], uint64(len(s)))
		_, _ = h.Write(lenbuf[:n])
		_, _ = h.Write(s)
	}
	_, _ = h.Write([]byte{bump})
	return Address(h.Sum(nil)[:AddressLength])
}

// VerifyDerivedAddress returns an error if given address is not the one
// derived from the tag, seeds and bump.
func VerifyDerivedAddress(addr Address, tag string, bump uint8, seeds ...[]byte) error {
	if !CreateDerivedAddress(tag, bump, seeds...).Equals(addr) {
		return errors.Wrapf(errors.ErrInvalidInput, "address %s is not derived from %q seeds", addr, tag)
	}
	return nil
}

func isZeroAddress(a Address) bool {
	for _, b := range a {
		if b != 0 {
			return false
		}
	}
	return true
}

// EncodeSequence returns the fixed width little endian representation of
// given number. Use it to turn counters into derivation seeds.
func EncodeSequence(n uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, n)
	return b
}
