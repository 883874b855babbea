package main

import (
	"fmt"

	"github.com/tendermint/tendermint/libs/log"
	"go.uber.org/zap"
)

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %s", level, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build(zap.AddStacktrace(zap.PanicLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %v", err)
	}
	return logger, nil
}

// tmLogger exposes a zap logger as the logger the application and the
// handlers write to.
type tmLogger struct {
	s *zap.SugaredLogger
}

var _ log.Logger = tmLogger{}

func newTMLogger(l *zap.Logger) log.Logger {
	return tmLogger{s: l.Sugar()}
}

func (l tmLogger) Debug(msg string, keyvals ...interface{}) {
	l.s.Debugw(msg, keyvals...)
}

func (l tmLogger) Info(msg string, keyvals ...interface{}) {
	l.s.Infow(msg, keyvals...)
}

func (l tmLogger) Error(msg string, keyvals ...interface{}) {
	l.s.Errorw(msg, keyvals...)
}

func (l tmLogger) With(keyvals ...interface{}) log.Logger {
	return tmLogger{s: l.s.With(keyvals...)}
}
