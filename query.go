package quorum

import (
	"fmt"
)

// Query modifiers understood by the orm buckets and indexes.
const (
	// KeyQueryMod returns the model stored under exactly the given key.
	KeyQueryMod = ""
	// PrefixQueryMod returns every model whose key starts with the data.
	PrefixQueryMod = "prefix"
)

// Pair constructs a model from a key-value pair
func Pair(key, value []byte) Model {
	return Model{Key: key, Value: value}
}

// QueryHandler reads models from the state. The meaning of data depends on
// mod.
type QueryHandler interface {
	Query(db ReadOnlyKVStore, mod string, data []byte) ([]Model, error)
}

// QueryRegister adds the query handlers of one extension to a router.
type QueryRegister func(QueryRouter)

// QueryRouter dispatches state queries by path, for example "/vaults" or
// "/proposals/vault".
type QueryRouter struct {
	routes map[string]QueryHandler
}

func NewQueryRouter() QueryRouter {
	return QueryRouter{routes: make(map[string]QueryHandler)}
}

func (r QueryRouter) RegisterAll(registers ...QueryRegister) {
	for _, register := range registers {
		register(r)
	}
}

// Register binds h to path. Binding the same path twice is a programming
// error and panics.
func (r QueryRouter) Register(path string, h QueryHandler) {
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("query path %q already registered", path))
	}
	r.routes[path] = h
}

// Handler returns the handler bound to path or nil.
func (r QueryRouter) Handler(path string) QueryHandler {
	return r.routes[path]
}
