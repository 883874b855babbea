package quorum

import (
	"context"
	"encoding/json"

	"github.com/tendermint/tendermint/libs/common"
)

// Context carries the request scoped values, see context.go.
type Context = context.Context

// Handler processes the messages routed to it, for example creating a vault
// or approving a proposal. Check only validates. Deliver changes the state.
type Handler interface {
	Checker
	Deliverer
}

type Checker interface {
	Check(ctx Context, store KVStore, tx Tx) (*CheckResult, error)
}

type Deliverer interface {
	Deliver(ctx Context, store KVStore, tx Tx) (*DeliverResult, error)
}

// Decorator runs around the next handler of a chain. It may enrich the
// context, for example with signers, or stop the request.
type Decorator interface {
	Check(ctx Context, store KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, store KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry binds handlers to message paths.
type Registry interface {
	Handle(path string, h Handler)
}

type CheckResult struct {
	// Data is the machine readable result.
	Data []byte
	Log  string
}

type DeliverResult struct {
	// Data is the machine readable result, for example the address of a
	// created entity.
	Data []byte
	Log  string
	// Tags notify observers of what happened.
	Tags []common.KVPair
}

// Options is the genesis document. Every extension reads the JSON stored
// under its own key.
type Options map[string]json.RawMessage

// ReadOptions decodes the value stored under key into obj. A missing key
// leaves obj untouched.
func (o Options) ReadOptions(key string, obj interface{}) error {
	raw, ok := o[key]
	if !ok || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, obj)
}

// Initializer loads the genesis state of an extension.
type Initializer interface {
	FromGenesis(ctx Context, opts Options, kv KVStore) error
}
