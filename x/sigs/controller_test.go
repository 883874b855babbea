package sigs

import (
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTx(payload string) *StdTx {
	return NewStdTx(&quorumtest.Msg{RoutePath: "test/sign", Payload: []byte(payload)})
}

func TestSignBytes(t *testing.T) {
	tx := newTx("foobar")
	tx2 := newTx("blast")

	tbz, err := tx.GetSignBytes()
	require.NoError(t, err)
	tbz2, err := tx2.GetSignBytes()
	require.NoError(t, err)
	assert.NotEqual(t, tbz, tbz2)

	// same payload on another route signs different bytes
	other := NewStdTx(&quorumtest.Msg{RoutePath: "test/other", Payload: []byte("foobar")})
	obz, err := other.GetSignBytes()
	require.NoError(t, err)
	assert.NotEqual(t, tbz, obz)

	chainID := "test-sign-bytes"
	c1, err := BuildSignBytesTx(tx, chainID, 17)
	require.NoError(t, err)
	c1a, err := BuildSignBytes(tbz, chainID, 17)
	require.NoError(t, err)
	assert.Equal(t, c1, c1a)
	assert.NotEqual(t, tbz, c1)

	// make sure sign bytes change on tx, chain_id and seq
	ct, err := BuildSignBytes(tbz2, chainID, 17)
	require.NoError(t, err)
	assert.NotEqual(t, c1, ct)
	c2, err := BuildSignBytes(tbz, chainID+"2", 17)
	require.NoError(t, err)
	assert.NotEqual(t, c1, c2)
	c3, err := BuildSignBytes(tbz, chainID, 18)
	require.NoError(t, err)
	assert.NotEqual(t, c1, c3)

	_, err = BuildSignBytes(tbz, chainID, -1)
	assert.True(t, ErrInvalidSequence.Is(err))
	_, err = BuildSignBytes(tbz, "x", 1)
	assert.True(t, errors.ErrInvalidInput.Is(err))

	_, err = (&StdTx{}).GetSignBytes()
	assert.True(t, errors.ErrInvalidMsg.Is(err))
}

func TestVerifySignature(t *testing.T) {
	kv := store.MemStore()
	priv := crypto.GenPrivKeyEd25519()
	pub := priv.PublicKey()
	perm := pub.Condition()

	chainID := "emo-music-2345"
	tx := newTx("my special valentine")
	bz, err := tx.GetSignBytes()
	require.NoError(t, err)

	sig0, err := SignTx(priv, tx, chainID, 0)
	require.NoError(t, err)
	sig1, err := SignTx(priv, tx, chainID, 1)
	require.NoError(t, err)
	sig2, err := SignTx(priv, tx, chainID, 2)
	require.NoError(t, err)
	sig13, err := SignTx(priv, tx, chainID, 13)
	require.NoError(t, err)
	empty := new(StdSignature)

	// signing should be deterministic
	sig2a, err := SignTx(priv, tx, chainID, 2)
	require.NoError(t, err)
	assert.Equal(t, sig2, sig2a)

	// the first one must have a signature in the store
	_, err = VerifySignature(kv, sig1, bz, chainID)
	assert.True(t, ErrInvalidSequence.Is(err))

	_, err = VerifySignature(kv, empty, bz, chainID)
	assert.True(t, errors.ErrUnauthorized.Is(err))

	// must start with 0
	sign, err := VerifySignature(kv, sig0, bz, chainID)
	require.NoError(t, err)
	assert.Equal(t, perm, sign)
	// we can advance one (store in kvstore)
	sign, err = VerifySignature(kv, sig1, bz, chainID)
	require.NoError(t, err)
	assert.Equal(t, perm, sign)

	next, err := NextNonce(kv, pub.Address())
	require.NoError(t, err)
	assert.Equal(t, int64(2), next)

	// jumping and replays are a no-no
	_, err = VerifySignature(kv, sig1, bz, chainID)
	assert.True(t, ErrInvalidSequence.Is(err))
	_, err = VerifySignature(kv, sig13, bz, chainID)
	assert.True(t, ErrInvalidSequence.Is(err))

	// different chain doesn't match
	_, err = VerifySignature(kv, sig2, bz, "metal-chain")
	assert.True(t, errors.ErrUnauthorized.Is(err))

	// doesn't match on bad sig
	broken := *sig2
	broken.Signature = &crypto.Signature{Ed25519: append([]byte{42, 17, 99}, sig2.Signature.Ed25519[3:]...)}
	_, err = VerifySignature(kv, &broken, bz, chainID)
	assert.True(t, errors.ErrUnauthorized.Is(err))

	_, err = VerifySignature(kv, sig2, bz, chainID)
	assert.NoError(t, err)
}

func TestVerifyTxSignatures(t *testing.T) {
	kv := store.MemStore()

	priv := crypto.GenPrivKeyEd25519()
	addr := priv.PublicKey().Condition()
	priv2 := crypto.GenPrivKeyEd25519()
	addr2 := priv2.PublicKey().Condition()

	chainID := "hot_summer_days"
	tx := newTx("ice cream")
	tx2 := newTx("ice cream with sprinkles")

	// two signers
	require.NoError(t, tx.Sign(priv, chainID, 0))
	require.NoError(t, tx.Sign(priv2, chainID, 0))
	// other tx, signed with the next sequence
	require.NoError(t, tx2.Sign(priv, chainID, 1))

	cases := map[string]struct {
		tx      SignedTx
		wantErr *errors.Error
		signers []quorum.Condition
	}{
		"no signatures": {
			tx:      newTx("ice cream"),
			signers: nil,
		},
		"two signatures": {
			tx:      tx,
			signers: []quorum.Condition{addr, addr2},
		},
		"replay is rejected": {
			tx:      tx,
			wantErr: ErrInvalidSequence,
		},
		"next sequence": {
			tx:      tx2,
			signers: []quorum.Condition{addr},
		},
	}

	// cases are stateful, run them in order
	for _, name := range []string{"no signatures", "two signatures", "replay is rejected", "next sequence"} {
		tc := cases[name]
		t.Run(name, func(t *testing.T) {
			signers, err := VerifyTxSignatures(kv, tc.tx, chainID)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.signers, signers)
		})
	}
}
