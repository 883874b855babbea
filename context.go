package quorum

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/tendermint/tendermint/libs/log"
)

// Request scoped values carried by the Context. The block values are set
// once by the application. Extensions add their own keys, see x/vault for
// the vault authority.

type contextKey int

const (
	contextKeyHeight contextKey = iota
	contextKeyBlockTime
	contextKeyLogger
	contextKeyChainID
)

var (
	// DefaultLogger is returned by GetLogger when no logger was set.
	DefaultLogger = log.NewNopLogger()

	// IsValidChainID accepts 6 to 20 letters, digits, dashes or
	// underscores.
	IsValidChainID = regexp.MustCompile(`^[a-zA-Z0-9_\-]{6,20}$`).MatchString
)

// setOnce panics when key already holds a value, so that no handler can
// override what the application declared for the block.
func setOnce(ctx Context, key contextKey, what string, val interface{}) Context {
	if ctx.Value(key) != nil {
		panic(fmt.Sprintf("%s already set in context", what))
	}
	return context.WithValue(ctx, key, val)
}

// WithHeight panics if the height was already set.
func WithHeight(ctx Context, height int64) Context {
	return setOnce(ctx, contextKeyHeight, "height", height)
}

func GetHeight(ctx Context) (int64, bool) {
	val, ok := ctx.Value(contextKeyHeight).(int64)
	return val, ok
}

// WithBlockTime sets the time every timestamp of the request is taken from.
// Handlers never read the wall clock. It panics if already set.
func WithBlockTime(ctx Context, t time.Time) Context {
	return setOnce(ctx, contextKeyBlockTime, "block time", t)
}

// BlockTime returns false when no block time or the zero time is set.
func BlockTime(ctx Context) (time.Time, bool) {
	val, ok := ctx.Value(contextKeyBlockTime).(time.Time)
	if !ok || val.IsZero() {
		return time.Time{}, false
	}
	return val, true
}

// WithChainID panics on an invalid chain id or when one is already set.
func WithChainID(ctx Context, chainID string) Context {
	if !IsValidChainID(chainID) {
		panic(fmt.Sprintf("invalid chain id %q", chainID))
	}
	return setOnce(ctx, contextKeyChainID, "chain id", chainID)
}

// GetChainID panics when the application did not set a chain id.
func GetChainID(ctx Context) string {
	id, ok := ctx.Value(contextKeyChainID).(string)
	if !ok {
		panic("chain id not set in context")
	}
	return id
}

func WithLogger(ctx Context, logger log.Logger) Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// WithLogInfo returns a context whose logger adds keyvals to every entry.
func WithLogInfo(ctx Context, keyvals ...interface{}) Context {
	return WithLogger(ctx, GetLogger(ctx).With(keyvals...))
}

func GetLogger(ctx Context) log.Logger {
	if l, ok := ctx.Value(contextKeyLogger).(log.Logger); ok {
		return l
	}
	return DefaultLogger
}
