package utils

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Recovery converts a panic further down the chain into ErrPanic and logs
// it.
type Recovery struct{}

var _ quorum.Decorator = Recovery{}

func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx, next quorum.Checker) (_ *quorum.CheckResult, err error) {
	defer recoverInto(ctx, &err)
	return next.Check(ctx, store, tx)
}

func (Recovery) Deliver(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx, next quorum.Deliverer) (_ *quorum.DeliverResult, err error) {
	defer recoverInto(ctx, &err)
	return next.Deliver(ctx, store, tx)
}

func recoverInto(ctx quorum.Context, err *error) {
	if r := recover(); r != nil {
		*err = errors.Wrapf(errors.ErrPanic, "%v", r)
		quorum.GetLogger(ctx).Error("recovered from panic", "panic", r)
	}
}
