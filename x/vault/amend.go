package vault

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x"
)

// ReplaceOwnersHandler replaces the owners of the vault executing the
// instruction.
type ReplaceOwnersHandler struct {
	auth   x.Authenticator
	vaults *VaultBucket
}

var _ quorum.Handler = ReplaceOwnersHandler{}

func (h ReplaceOwnersHandler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &quorum.CheckResult{}, nil
}

func (h ReplaceOwnersHandler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	msg, vault, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	vault.Owners = msg.Owners
	if n := uint32(len(vault.Owners)); vault.Threshold > n {
		vault.Threshold = n
	}
	// Every proposal created before this point becomes stale.
	vault.OwnerSetVersion++
	if err := h.vaults.Update(db, vault); err != nil {
		return nil, err
	}
	quorum.GetLogger(ctx).Info("vault owners replaced",
		"vault", vault.Address,
		"owners", len(vault.Owners),
		"threshold", vault.Threshold,
		"version", vault.OwnerSetVersion)
	return &quorum.DeliverResult{}, nil
}

func (h ReplaceOwnersHandler) validate(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*ReplaceOwnersMsg, *Vault, error) {
	var msg ReplaceOwnersMsg
	if err := quorum.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	vault, err := authorizedVault(ctx, h.auth, h.vaults, db, msg.Vault)
	if err != nil {
		return nil, nil, err
	}
	return &msg, vault, nil
}

// ChangeThresholdHandler changes the threshold of the vault executing the
// instruction. Proposals created before stay valid.
type ChangeThresholdHandler struct {
	auth   x.Authenticator
	vaults *VaultBucket
}

var _ quorum.Handler = ChangeThresholdHandler{}

func (h ChangeThresholdHandler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &quorum.CheckResult{}, nil
}

func (h ChangeThresholdHandler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	msg, vault, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	vault.Threshold = msg.Threshold
	if err := h.vaults.Update(db, vault); err != nil {
		return nil, err
	}
	quorum.GetLogger(ctx).Info("vault threshold changed",
		"vault", vault.Address,
		"threshold", vault.Threshold)
	return &quorum.DeliverResult{}, nil
}

func (h ChangeThresholdHandler) validate(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*ChangeThresholdMsg, *Vault, error) {
	var msg ChangeThresholdMsg
	if err := quorum.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	vault, err := authorizedVault(ctx, h.auth, h.vaults, db, msg.Vault)
	if err != nil {
		return nil, nil, err
	}
	if err := validateThreshold(msg.Threshold, len(vault.Owners)); err != nil {
		return nil, nil, err
	}
	return &msg, vault, nil
}

// authorizedVault loads the vault if the context carries its authority.
func authorizedVault(ctx quorum.Context, auth x.Authenticator, vaults *VaultBucket, db quorum.KVStore, addr quorum.Address) (*Vault, error) {
	if !x.HasAllConditions(ctx, auth, []quorum.Condition{VaultCondition(addr)}) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "authority of vault %s required", addr)
	}
	return vaults.GetVault(db, addr)
}
