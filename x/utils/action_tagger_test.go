package utils_test

import (
	"context"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/app"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/store"
	"github.com/iov-one/quorum/x/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/common"
)

func stringTag(key, value string) common.KVPair {
	return common.KVPair{
		Key:   []byte(key),
		Value: []byte(value),
	}
}

func TestActionTagger(t *testing.T) {
	cases := map[string]struct {
		stack quorum.Handler
		tx    quorum.Tx
		err   *errors.Error
		tags  []common.KVPair
	}{
		"simple call": {
			stack: app.ChainDecorators(utils.NewActionTagger()).WithHandler(
				&quorumtest.Handler{},
			),
			tx:   &quorumtest.Tx{Msg: &quorumtest.Msg{RoutePath: "vault/create"}},
			tags: []common.KVPair{stringTag(utils.ActionKey, "vault/create")},
		},
		"passes through error": {
			stack: app.ChainDecorators(utils.NewActionTagger()).WithHandler(
				&quorumtest.Handler{DeliverErr: errors.ErrHuman},
			),
			tx:  &quorumtest.Tx{Msg: &quorumtest.Msg{RoutePath: "vault/create"}},
			err: errors.ErrHuman,
		},
		"fails early on broken transaction": {
			stack: app.ChainDecorators(utils.NewActionTagger()).WithHandler(
				&quorumtest.Handler{},
			),
			tx:  &quorumtest.Tx{Err: errors.ErrInvalidMsg},
			err: errors.ErrInvalidMsg,
		},
		"tags are additive": {
			stack: app.ChainDecorators(utils.NewActionTagger()).WithHandler(
				&quorumtest.Handler{
					DeliverResult: quorum.DeliverResult{Tags: []common.KVPair{stringTag(utils.ActionKey, "random")}},
				},
			),
			tx:   &quorumtest.Tx{Msg: &quorumtest.Msg{RoutePath: "vault/create"}},
			tags: []common.KVPair{stringTag(utils.ActionKey, "random"), stringTag(utils.ActionKey, "vault/create")},
		},
		"same action is tagged once": {
			stack: app.ChainDecorators(utils.NewActionTagger(), utils.NewActionTagger()).WithHandler(
				&quorumtest.Handler{},
			),
			tx:   &quorumtest.Tx{Msg: &quorumtest.Msg{RoutePath: "vault/approve"}},
			tags: []common.KVPair{stringTag(utils.ActionKey, "vault/approve")},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			db := store.MemStore()

			res, err := tc.stack.Deliver(ctx, db, tc.tx)
			if tc.err != nil {
				assert.True(t, tc.err.Is(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.tags, res.Tags)
		})
	}
}

func TestLoggingPassesResults(t *testing.T) {
	stack := app.ChainDecorators(utils.NewLogging()).WithHandler(&quorumtest.Handler{
		CheckResult: quorum.CheckResult{Log: "checked"},
		DeliverErr:  errors.ErrNotFound,
	})
	ctx := context.Background()
	db := store.MemStore()
	tx := &quorumtest.Tx{Msg: &quorumtest.Msg{RoutePath: "vault/execute"}}

	res, err := stack.Check(ctx, db, tx)
	require.NoError(t, err)
	assert.Equal(t, "checked", res.Log)

	_, err = stack.Deliver(ctx, db, tx)
	assert.True(t, errors.ErrNotFound.Is(err))
}
