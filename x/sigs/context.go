package sigs

import (
	"context"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/x"
)

type ctxKey struct{}

// Only the decorator of this package may grant signer conditions.
func withSigners(ctx quorum.Context, signers []quorum.Condition) quorum.Context {
	return context.WithValue(ctx, ctxKey{}, signers)
}

// Authenticate grants the conditions of the verified signatures.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

func (Authenticate) GetConditions(ctx quorum.Context) []quorum.Condition {
	signers, _ := ctx.Value(ctxKey{}).([]quorum.Condition)
	return signers
}

func (a Authenticate) HasAddress(ctx quorum.Context, addr quorum.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if c.Address().Equals(addr) {
			return true
		}
	}
	return false
}
