package quorumtest

import (
	"context"
	"fmt"

	"github.com/iov-one/quorum"
)

// Auth grants a fixed set of conditions. Signer is a shortcut for a single
// condition and is reported after Signers.
type Auth struct {
	Signer  quorum.Condition
	Signers []quorum.Condition
}

func (a *Auth) GetConditions(quorum.Context) []quorum.Condition {
	if a.Signer == nil {
		return a.Signers
	}
	all := make([]quorum.Condition, 0, len(a.Signers)+1)
	return append(append(all, a.Signers...), a.Signer)
}

func (a *Auth) HasAddress(ctx quorum.Context, addr quorum.Address) bool {
	return hasAddress(a.GetConditions(ctx), addr)
}

// CtxAuth grants the conditions stored in the context under Key. Use
// SetConditions to grant them.
type CtxAuth struct {
	Key string
}

func (a *CtxAuth) SetConditions(ctx quorum.Context, conds ...quorum.Condition) quorum.Context {
	return context.WithValue(ctx, a.Key, conds)
}

func (a *CtxAuth) GetConditions(ctx quorum.Context) []quorum.Condition {
	switch v := ctx.Value(a.Key).(type) {
	case nil:
		return nil
	case []quorum.Condition:
		return v
	default:
		panic(fmt.Sprintf("context key %q holds %T", a.Key, v))
	}
}

func (a *CtxAuth) HasAddress(ctx quorum.Context, addr quorum.Address) bool {
	return hasAddress(a.GetConditions(ctx), addr)
}

func hasAddress(conds []quorum.Condition, addr quorum.Address) bool {
	for _, c := range conds {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
