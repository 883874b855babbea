package app

import (
	"reflect"

	"github.com/iov-one/quorum"
)

// Decorators is a chain of decorators waiting for its final handler.
type Decorators struct {
	chain []quorum.Decorator
}

// ChainDecorators starts a chain. The first decorator runs first. Nil
// decorators are skipped, so optional ones can be passed inline.
//
//	app.ChainDecorators(
//		utils.NewLogging(),
//		utils.NewRecovery(),
//		sigs.NewDecorator(),
//	).WithHandler(router)
func ChainDecorators(chain ...quorum.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain returns a new chain with more decorators appended.
func (d Decorators) Chain(chain ...quorum.Decorator) Decorators {
	all := make([]quorum.Decorator, 0, len(d.chain)+len(chain))
	all = append(all, d.chain...)
	for _, dec := range chain {
		if !isNil(dec) {
			all = append(all, dec)
		}
	}
	return Decorators{chain: all}
}

func isNil(dec quorum.Decorator) bool {
	if dec == nil {
		return true
	}
	v := reflect.ValueOf(dec)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler closes the chain with h.
func (d Decorators) WithHandler(h quorum.Handler) quorum.Handler {
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = step{dec: d.chain[i], next: h}
	}
	return h
}

// step runs one decorator with the rest of the chain as next.
type step struct {
	dec  quorum.Decorator
	next quorum.Handler
}

var _ quorum.Handler = step{}

func (s step) Check(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	return s.dec.Check(ctx, store, tx, s.next)
}

func (s step) Deliver(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	return s.dec.Deliver(ctx, store, tx, s.next)
}
