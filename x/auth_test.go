package x

import (
	"context"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/stretchr/testify/assert"
)

func TestAuth(t *testing.T) {
	a := quorumtest.NewCondition()
	b := quorumtest.NewCondition()
	c := quorumtest.NewCondition()

	ctx1 := &quorumtest.CtxAuth{Key: "foo"}
	ctx2 := &quorumtest.CtxAuth{Key: "bar"}

	cases := map[string]struct {
		ctx          quorum.Context
		auth         Authenticator
		mainSigner   quorum.Condition
		wantInCtx    quorum.Condition
		wantNotInCtx quorum.Condition
		wantAll      []quorum.Condition
	}{
		"empty context": {
			ctx:          context.Background(),
			auth:         &quorumtest.Auth{},
			wantNotInCtx: b,
		},
		"signer a": {
			ctx:          context.Background(),
			auth:         &quorumtest.Auth{Signer: a},
			mainSigner:   a,
			wantInCtx:    a,
			wantNotInCtx: b,
			wantAll:      []quorum.Condition{a},
		},
		"signer b": {
			ctx: context.Background(),
			auth: ChainAuth(
				&quorumtest.Auth{Signer: b},
				&quorumtest.Auth{Signer: a}),
			mainSigner:   b,
			wantInCtx:    b,
			wantNotInCtx: c,
			wantAll:      []quorum.Condition{b, a},
		},
		"chained duplicates are reported once": {
			ctx: context.Background(),
			auth: ChainAuth(
				&quorumtest.Auth{Signers: []quorum.Condition{a, b}},
				&quorumtest.Auth{Signer: a}),
			mainSigner:   a,
			wantInCtx:    b,
			wantNotInCtx: c,
			wantAll:      []quorum.Condition{a, b},
		},
		"context auth reads its own key": {
			ctx:          ctx1.SetConditions(context.Background(), a, b),
			auth:         ctx1,
			mainSigner:   a,
			wantInCtx:    b,
			wantNotInCtx: c,
			wantAll:      []quorum.Condition{a, b},
		},
		"context auth ignores other keys": {
			ctx:          ctx1.SetConditions(context.Background(), a, b),
			auth:         ctx2,
			wantNotInCtx: a,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.mainSigner, MainSigner(tc.ctx, tc.auth))
			if tc.wantInCtx != nil && !tc.auth.HasAddress(tc.ctx, tc.wantInCtx.Address()) {
				t.Fatal("condition address that was expected in context not found")
			}
			if tc.wantNotInCtx != nil && tc.auth.HasAddress(tc.ctx, tc.wantNotInCtx.Address()) {
				t.Fatal("condition address that was expected not to be in context found")
			}

			all := tc.auth.GetConditions(tc.ctx)
			assert.Equal(t, tc.wantAll, all)

			if !HasAllConditions(tc.ctx, tc.auth, all) {
				t.Fatal("has all conditions check failed")
			}
			if HasAllConditions(tc.ctx, tc.auth, append(all, tc.wantNotInCtx)) {
				t.Fatal("has all condition succeeded after adding non existing condition")
			}

			if len(all) > 0 {
				if !HasNConditions(tc.ctx, tc.auth, all, len(all)-1) {
					t.Fatal("want condition check of a subset to succeed")
				}
				if HasNConditions(tc.ctx, tc.auth, all, len(all)+1) {
					t.Fatal("want condition check of a superset to fail")
				}
			}
		})
	}
}

func TestAnySigner(t *testing.T) {
	a := quorumtest.NewCondition()
	b := quorumtest.NewCondition()
	c := quorumtest.NewCondition()
	auth := &quorumtest.Auth{Signers: []quorum.Condition{b, c}}
	ctx := context.Background()

	got := AnySigner(ctx, auth, []quorum.Address{a.Address(), c.Address(), b.Address()})
	assert.Equal(t, c.Address(), got)
	assert.Nil(t, AnySigner(ctx, auth, []quorum.Address{a.Address()}))
	assert.Nil(t, AnySigner(ctx, auth, nil))
}
