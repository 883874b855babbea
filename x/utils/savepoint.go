package utils

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Savepoint runs the rest of the chain on a cache of the store. The cache
// is written only when the request succeeds. A new Savepoint is inactive,
// enable it with OnCheck and OnDeliver.
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ quorum.Decorator = Savepoint{}

func NewSavepoint() Savepoint {
	return Savepoint{}
}

func (s Savepoint) OnCheck() Savepoint {
	s.onCheck = true
	return s
}

func (s Savepoint) OnDeliver() Savepoint {
	s.onDeliver = true
	return s
}

func (s Savepoint) Check(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx, next quorum.Checker) (res *quorum.CheckResult, err error) {
	cstore, ok := store.(quorum.CacheableKVStore)
	if !s.onCheck || !ok {
		return next.Check(ctx, store, tx)
	}
	err = Isolate(cstore, func(db quorum.KVStore) (err error) {
		res, err = next.Check(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s Savepoint) Deliver(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx, next quorum.Deliverer) (res *quorum.DeliverResult, err error) {
	cstore, ok := store.(quorum.CacheableKVStore)
	if !s.onDeliver || !ok {
		return next.Deliver(ctx, store, tx)
	}
	err = Isolate(cstore, func(db quorum.KVStore) (err error) {
		res, err = next.Deliver(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Isolate calls fn with a cache of store. The cache is written back when fn
// succeeds and discarded otherwise, so a failure leaves store untouched.
func Isolate(store quorum.CacheableKVStore, fn func(quorum.KVStore) error) error {
	cache := store.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "write savepoint")
	}
	return nil
}
