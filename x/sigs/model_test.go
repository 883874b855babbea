package sigs

import (
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserValidate(t *testing.T) {
	pub := crypto.GenPrivKeyEd25519().PublicKey()

	cases := map[string]struct {
		user      *UserData
		wantErr   *errors.Error
		wantField string
	}{
		"valid": {
			user: &UserData{Pubkey: pub, Sequence: 4},
		},
		"missing key": {
			user:      &UserData{Sequence: 4},
			wantErr:   errors.ErrEmpty,
			wantField: "Pubkey",
		},
		"short key": {
			user:      &UserData{Pubkey: &crypto.PublicKey{Ed25519: []byte("short")}},
			wantErr:   errors.ErrInvalidInput,
			wantField: "Pubkey",
		},
		"negative sequence": {
			user:      &UserData{Pubkey: pub, Sequence: -1},
			wantErr:   ErrInvalidSequence,
			wantField: "Sequence",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.user.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, tc.wantErr.Is(err), "got %v", err)
			assert.Equal(t, tc.wantField, errors.FieldName(err))
		})
	}
}

func TestCheckAndIncrementSequence(t *testing.T) {
	u := &UserData{Sequence: 3}
	assert.True(t, ErrInvalidSequence.Is(u.CheckAndIncrementSequence(2)))
	require.NoError(t, u.CheckAndIncrementSequence(3))
	assert.Equal(t, int64(4), u.Sequence)

	u = &UserData{Sequence: maxSequenceValue}
	assert.True(t, errors.ErrOverflow.Is(u.CheckAndIncrementSequence(maxSequenceValue)))
	assert.Equal(t, int64(maxSequenceValue), u.Sequence)
}

func TestGetOrCreate(t *testing.T) {
	db := store.MemStore()
	b := NewBucket()
	pub := crypto.GenPrivKeyEd25519().PublicKey()

	obj, err := b.GetOrCreate(db, pub)
	require.NoError(t, err)
	assert.Equal(t, []byte(pub.Address()), obj.Key())
	assert.Equal(t, int64(0), AsUser(obj).Sequence)

	AsUser(obj).Sequence = 7
	require.NoError(t, b.Save(db, obj))

	obj, err = b.GetOrCreate(db, pub)
	require.NoError(t, err)
	assert.Equal(t, int64(7), AsUser(obj).Sequence)
	assert.Equal(t, pub.Ed25519, AsUser(obj).Pubkey.Ed25519)

	assert.Nil(t, AsUser(nil))

	next, err := NextNonce(db, quorum.NewAddress([]byte("unknown")))
	require.NoError(t, err)
	assert.Equal(t, int64(0), next)
}
