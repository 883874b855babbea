package crypto

import (
	"github.com/iov-one/quorum/errors"
	"github.com/stellar/go/exp/crypto/derivation"
)

// DefaultDerivationPath is the bip44 path used by the command line client
// when a key is derived from a seed without an explicit path.
const DefaultDerivationPath = "m/44'/234'/0'"

// DerivePrivKeyEd25519 derives a hardened ed25519 key (SLIP-0010) from a
// master seed. The same seed and path always produce the same key.
func DerivePrivKeyEd25519(seed []byte, path string) (*PrivateKey, error) {
	if len(seed) < 16 || len(seed) > 64 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "seed must be between 16 and 64 bytes, got %d", len(seed))
	}
	if path == "" {
		path = DefaultDerivationPath
	}
	k, err := derivation.DeriveForPath(path, seed)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "derive %q: %s", path, err)
	}
	return PrivKeyEd25519FromSeed(k.Key), nil
}
