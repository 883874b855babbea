package vault

import (
	"encoding/hex"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Initializer fulfils the Initializer interface to load vaults from the
// genesis file.
type Initializer struct{}

var _ quorum.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial vault info from genesis and save it in the
// database. Identity keys are hex encoded.
func (*Initializer) FromGenesis(ctx quorum.Context, opts quorum.Options, kv quorum.KVStore) error {
	var vaults []struct {
		IdentityKey string           `json:"identity_key"`
		Owners      []quorum.Address `json:"owners"`
		Threshold   uint32           `json:"threshold"`
	}
	if err := opts.ReadOptions("vault", &vaults); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}

	bucket := NewVaultBucket()
	for i, v := range vaults {
		key, err := hex.DecodeString(v.IdentityKey)
		if err != nil {
			return errors.Wrapf(errors.ErrInvalidInput, "vault #%d identity key: %s", i, err)
		}
		addr, nonce := VaultAddress(key)
		switch exists, err := bucket.Has(kv, addr); {
		case err != nil:
			return errors.Wrap(err, "cannot check vault")
		case exists:
			return errors.Wrapf(errors.ErrDuplicate, "vault #%d", i)
		}
		vault := &Vault{
			IdentityKey:     key,
			Owners:          v.Owners,
			Threshold:       v.Threshold,
			DerivationNonce: uint32(nonce),
			Address:         addr,
		}
		if err := bucket.Update(kv, vault); err != nil {
			return errors.Wrapf(err, "cannot save #%d vault", i)
		}
		quorum.GetLogger(ctx).Debug("genesis vault", "vault", addr)
	}
	return nil
}
