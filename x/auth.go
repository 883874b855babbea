package x

import (
	"github.com/iov-one/quorum"
)

// Authenticator tells which conditions a request satisfies. Handlers take
// one in their constructor, so the vault does not depend on how signatures
// are checked.
type Authenticator interface {
	GetConditions(quorum.Context) []quorum.Condition
	HasAddress(quorum.Context, quorum.Address) bool
}

// MultiAuth grants everything any of its members grants.
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls: impls}
}

// GetConditions returns the conditions of all members in order. Duplicates
// keep their first position.
func (m MultiAuth) GetConditions(ctx quorum.Context) []quorum.Condition {
	var all []quorum.Condition
	for _, impl := range m.impls {
		for _, c := range impl.GetConditions(ctx) {
			if !contains(all, c) {
				all = append(all, c)
			}
		}
	}
	return all
}

func (m MultiAuth) HasAddress(ctx quorum.Context, addr quorum.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first granted condition or nil.
func MainSigner(ctx quorum.Context, auth Authenticator) quorum.Condition {
	if all := auth.GetConditions(ctx); len(all) > 0 {
		return all[0]
	}
	return nil
}

// AnySigner returns the first candidate that signed the request or nil.
func AnySigner(ctx quorum.Context, auth Authenticator, candidates []quorum.Address) quorum.Address {
	for _, addr := range candidates {
		if auth.HasAddress(ctx, addr) {
			return addr
		}
	}
	return nil
}

// HasAllConditions is true when every required condition is granted.
func HasAllConditions(ctx quorum.Context, auth Authenticator, required []quorum.Condition) bool {
	return HasNConditions(ctx, auth, required, len(required))
}

// HasNConditions is true when at least n of the requested conditions are
// granted.
func HasNConditions(ctx quorum.Context, auth Authenticator, requested []quorum.Condition, n int) bool {
	granted := auth.GetConditions(ctx)
	for _, c := range requested {
		if n <= 0 {
			break
		}
		if contains(granted, c) {
			n--
		}
	}
	return n <= 0
}

func contains(list []quorum.Condition, c quorum.Condition) bool {
	for _, el := range list {
		if el.Equals(c) {
			return true
		}
	}
	return false
}
