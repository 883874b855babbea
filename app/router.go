package app

import (
	"fmt"
	"regexp"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

var isPath = regexp.MustCompile(`^[a-zA-Z0-9_/]+$`).MatchString

// Router dispatches each message to the handler registered for its path.
type Router struct {
	routes map[string]quorum.Handler
}

var _ quorum.Registry = (*Router)(nil)
var _ quorum.Handler = (*Router)(nil)

func NewRouter() *Router {
	return &Router{
		routes: make(map[string]quorum.Handler),
	}
}

// Handle registers h for path. Registering a path twice panics.
func (r *Router) Handle(path string, h quorum.Handler) {
	if !isPath(path) {
		panic(fmt.Sprintf("invalid route path %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("route %q already registered", path))
	}
	r.routes[path] = h
}

// Handler never returns nil. An unknown path gets a handler failing with
// ErrNoSuchPath.
func (r *Router) Handler(path string) quorum.Handler {
	if h, ok := r.routes[path]; ok {
		return h
	}
	return noSuchPathHandler{path: path}
}

func (r *Router) Has(path string) bool {
	_, ok := r.routes[path]
	return ok
}

func (r *Router) Check(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "decode message")
	}
	h := r.Handler(msg.Path())
	return h.Check(ctx, store, tx)
}

func (r *Router) Deliver(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "decode message")
	}
	h := r.Handler(msg.Path())
	return h.Deliver(ctx, store, tx)
}

type noSuchPathHandler struct {
	path string
}

var _ quorum.Handler = noSuchPathHandler{}

func (h noSuchPathHandler) Check(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	return nil, errors.Wrapf(ErrNoSuchPath, "path %q", h.path)
}

func (h noSuchPathHandler) Deliver(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	return nil, errors.Wrapf(ErrNoSuchPath, "path %q", h.path)
}
