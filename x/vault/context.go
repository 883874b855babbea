package vault

import (
	"context"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/x"
)

type contextKey int // local to the vault module

const (
	contextKeyAuthority contextKey = iota
)

// VaultCondition returns the authority condition of the vault with given
// address. Only instructions executed by that vault carry it.
func VaultCondition(vault quorum.Address) quorum.Condition {
	return quorum.NewCondition("vault", "authority", vault)
}

// AuthorityAddress returns the address instructions executed by given vault
// sign with.
func AuthorityAddress(vault quorum.Address) quorum.Address {
	return VaultCondition(vault).Address()
}

// withVaultAuthority is private, as only the execution of a proposal can
// grant the authority of a vault. Authorities granted by outer executions
// are kept.
func withVaultAuthority(ctx quorum.Context, vault quorum.Address) quorum.Context {
	prev, _ := ctx.Value(contextKeyAuthority).([]quorum.Condition)
	conds := make([]quorum.Condition, 0, len(prev)+1)
	conds = append(conds, prev...)
	conds = append(conds, VaultCondition(vault))
	return context.WithValue(ctx, contextKeyAuthority, conds)
}

// Authenticate exposes the authority of the vaults whose proposal is being
// executed.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns the vault authorities set on this context.
func (Authenticate) GetConditions(ctx quorum.Context) []quorum.Condition {
	// (val, ok) form to return nil instead of panic if unset
	val, _ := ctx.Value(contextKeyAuthority).([]quorum.Condition)
	return val
}

// HasAddress returns true iff this address is in GetConditions.
func (a Authenticate) HasAddress(ctx quorum.Context, addr quorum.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
