package app

import (
	"context"
	"time"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Application runs every transaction as one all-or-nothing step on top of a
// persistent commit store. A successful transaction is written and committed
// as a new version, a failed one leaves no trace in the store.
//
// Application is not safe for concurrent use. The host must serialize calls.
type Application struct {
	name    string
	chainID string
	logger  log.Logger
	debug   bool

	store   quorum.CommitKVStore
	handler quorum.Handler
	queries quorum.QueryRouter
}

// NewApplication returns an application instance that dispatches transactions
// to given handler and queries to given query router.
func NewApplication(
	name string,
	chainID string,
	store quorum.CommitKVStore,
	handler quorum.Handler,
	queries quorum.QueryRouter,
	logger log.Logger,
) (*Application, error) {
	if !quorum.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "chain id %q", chainID)
	}
	if logger == nil {
		logger = quorum.DefaultLogger
	}
	return &Application{
		name:    name,
		chainID: chainID,
		logger:  logger.With("module", name),
		store:   store,
		handler: handler,
		queries: queries,
	}, nil
}

// WithDebug returns a copy of the application that does not redact internal
// errors.
func (a Application) WithDebug(debug bool) *Application {
	a.debug = debug
	return &a
}

// Logger returns the application logger.
func (a *Application) Logger() log.Logger {
	return a.logger
}

// InitChain loads the initial state from given genesis options and commits
// it as the first version. It fails if the store already holds any version.
func (a *Application) InitChain(opts quorum.Options, init quorum.Initializer) (quorum.CommitID, error) {
	latest, err := a.store.LatestVersion()
	if err != nil {
		return quorum.CommitID{}, err
	}
	if latest.Version != 0 {
		return quorum.CommitID{}, errors.Wrapf(errors.ErrInvalidState, "state already initialized at version %d", latest.Version)
	}

	ctx := a.blockContext(time.Now(), 0)
	cache := a.store.CacheWrap()
	if err := init.FromGenesis(ctx, opts, cache); err != nil {
		cache.Discard()
		return quorum.CommitID{}, errors.Wrap(err, "genesis")
	}
	if err := cache.Write(); err != nil {
		return quorum.CommitID{}, err
	}
	return a.store.Commit()
}

// CheckTx runs the transaction checks against the current state. Nothing is
// ever written.
func (a *Application) CheckTx(ctx quorum.Context, tx quorum.Tx, now time.Time) (res *quorum.CheckResult, err error) {
	defer errors.Recover(&err)

	latest, err := a.store.LatestVersion()
	if err != nil {
		return nil, err
	}
	ctx = quorum.WithLogInfo(a.withBlock(ctx, now, latest.Version+1),
		"call", "check_tx",
		"path", quorum.GetPath(tx))

	cache := a.store.CacheWrap()
	defer cache.Discard()
	res, err = a.handler.Check(ctx, cache, tx)
	if err != nil {
		a.logError(ctx, err)
		return nil, errors.Redact(err, a.debug)
	}
	return res, nil
}

// DeliverTx executes the transaction in a fresh cache. On success the cache is
// written and a new version committed. On failure all changes are dropped.
func (a *Application) DeliverTx(ctx quorum.Context, tx quorum.Tx, now time.Time) (res *quorum.DeliverResult, id quorum.CommitID, err error) {
	latest, err := a.store.LatestVersion()
	if err != nil {
		return nil, id, err
	}
	ctx = quorum.WithLogInfo(a.withBlock(ctx, now, latest.Version+1),
		"call", "deliver_tx",
		"path", quorum.GetPath(tx))

	cache := a.store.CacheWrap()
	res, err = a.deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		a.logError(ctx, err)
		return nil, id, errors.Redact(err, a.debug)
	}
	if err := cache.Write(); err != nil {
		return nil, id, errors.Wrap(err, "write cache")
	}
	id, err = a.store.Commit()
	if err != nil {
		return nil, id, errors.Wrap(err, "commit")
	}
	quorum.GetLogger(ctx).Debug("committed", "version", id.Version)
	return res, id, nil
}

func (a *Application) deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (res *quorum.DeliverResult, err error) {
	defer errors.Recover(&err)
	return a.handler.Deliver(ctx, db, tx)
}

// Query dispatches a query to the handler registered for given path. Queries
// read the last committed state.
func (a *Application) Query(path, mod string, data []byte) ([]quorum.Model, error) {
	h := a.queries.Handler(path)
	if h == nil {
		return nil, errors.Wrapf(ErrNoSuchPath, "query path %q", path)
	}
	cache := a.store.CacheWrap()
	defer cache.Discard()
	return h.Query(cache, mod, data)
}

// ReadOnlyStore returns a view of the last committed state. Any write done
// to it is never persisted.
func (a *Application) ReadOnlyStore() quorum.ReadOnlyKVStore {
	return a.store.CacheWrap()
}

func (a *Application) blockContext(now time.Time, height int64) quorum.Context {
	return a.withBlock(context.Background(), now, height)
}

func (a *Application) withBlock(ctx quorum.Context, now time.Time, height int64) quorum.Context {
	ctx = quorum.WithHeight(ctx, height)
	ctx = quorum.WithBlockTime(ctx, now)
	ctx = quorum.WithChainID(ctx, a.chainID)
	ctx = quorum.WithLogger(ctx, a.logger)
	return ctx
}

func (a *Application) logError(ctx quorum.Context, err error) {
	code, msg := errors.ABCIInfo(err, true)
	quorum.GetLogger(ctx).Info("transaction failed", "code", code, "log", msg)
}
