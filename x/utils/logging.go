package utils

import (
	"time"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Logging writes one log line per request with its path, duration and
// outcome. Failures are logged as errors. Successful checks are logged at
// debug level and successful deliveries at info level.
type Logging struct{}

var _ quorum.Decorator = Logging{}

func NewLogging() Logging {
	return Logging{}
}

func (Logging) Check(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx, next quorum.Checker) (*quorum.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	var log string
	if res != nil {
		log = res.Log
	}
	logResult(ctx, tx, start, log, err, true)
	return res, err
}

func (Logging) Deliver(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx, next quorum.Deliverer) (*quorum.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	var log string
	if res != nil {
		log = res.Log
	}
	logResult(ctx, tx, start, log, err, false)
	return res, err
}

func logResult(ctx quorum.Context, tx quorum.Tx, start time.Time, msg string, err error, check bool) {
	logger := quorum.GetLogger(ctx).With(
		"path", quorum.GetPath(tx),
		"duration", time.Since(start)/time.Microsecond)
	switch {
	case err != nil:
		code, log := errors.ABCIInfo(err, true)
		logger.Error(msg, "code", code, "err", log)
	case check:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}
