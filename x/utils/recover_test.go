package utils

import (
	"context"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecovery(t *testing.T) {
	var h panicHandler
	r := NewRecovery()

	ctx := context.Background()
	s := store.MemStore()

	// Panic handler panics. Test the test tool.
	assert.Panics(t, func() { h.Check(ctx, s, nil) })
	assert.Panics(t, func() { h.Deliver(ctx, s, nil) })

	// Recovery wrapped handler returns an error.
	_, err := r.Check(ctx, s, nil, h)
	assert.True(t, errors.ErrPanic.Is(err))

	_, err = r.Deliver(ctx, s, nil, h)
	assert.True(t, errors.ErrPanic.Is(err))
}

func TestRecoveryPassesThrough(t *testing.T) {
	r := NewRecovery()
	ctx := context.Background()
	s := store.MemStore()

	h := &quorumtest.Handler{
		DeliverResult: quorum.DeliverResult{Log: "all good"},
		CheckErr:      errors.ErrUnauthorized,
	}
	res, err := r.Deliver(ctx, s, nil, h)
	require.NoError(t, err)
	assert.Equal(t, "all good", res.Log)

	_, err = r.Check(ctx, s, nil, h)
	assert.True(t, errors.ErrUnauthorized.Is(err))
	assert.Equal(t, 2, h.CallCount())
}

type panicHandler struct{}

var _ quorum.Handler = panicHandler{}

func (p panicHandler) Check(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	panic("check panic")
}

func (p panicHandler) Deliver(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	panic("deliver panic")
}
