package vault

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenesis(t *testing.T) {
	owners := quorumtest.NewAddresses(3)
	genesis := fmt.Sprintf(`{
		"vault": [
			{"identity_key": "%s", "owners": ["%s", "%s"], "threshold": 2},
			{"identity_key": "%s", "owners": ["%s"], "threshold": 1}
		]
	}`, hex.EncodeToString([]byte("first")), owners[0], owners[1],
		hex.EncodeToString([]byte("second")), owners[2])

	var opts quorum.Options
	require.NoError(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	var initializer Initializer
	require.NoError(t, initializer.FromGenesis(context.Background(), opts, db))

	first, _ := VaultAddress([]byte("first"))
	v, err := NewVaultBucket().GetVault(db, first)
	require.NoError(t, err)
	assert.Equal(t, owners[:2], v.Owners)
	assert.Equal(t, uint32(2), v.Threshold)

	owned, err := NewVaultBucket().ByOwner(db, owners[2])
	require.NoError(t, err)
	require.Len(t, owned, 1)
	second, _ := VaultAddress([]byte("second"))
	assert.Equal(t, second, owned[0].Address)
}

func TestGenesisErrors(t *testing.T) {
	owner := quorumtest.NewAddresses(1)[0]
	key := hex.EncodeToString([]byte("key"))

	cases := map[string]struct {
		genesis string
		wantErr *errors.Error
	}{
		"no vaults": {
			genesis: `{}`,
		},
		"not hex": {
			genesis: fmt.Sprintf(`{"vault": [{"identity_key": "zz", "owners": ["%s"], "threshold": 1}]}`, owner),
			wantErr: errors.ErrInvalidInput,
		},
		"invalid threshold": {
			genesis: fmt.Sprintf(`{"vault": [{"identity_key": "%s", "owners": ["%s"], "threshold": 2}]}`, key, owner),
			wantErr: ErrInvalidThreshold,
		},
		"same identity twice": {
			genesis: fmt.Sprintf(`{"vault": [
				{"identity_key": "%s", "owners": ["%s"], "threshold": 1},
				{"identity_key": "%s", "owners": ["%s"], "threshold": 1}
			]}`, key, owner, key, owner),
			wantErr: errors.ErrDuplicate,
		},
		"malformed": {
			genesis: `{"vault": {}}`,
			wantErr: errors.ErrInvalidInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var opts quorum.Options
			require.NoError(t, json.Unmarshal([]byte(tc.genesis), &opts))
			var initializer Initializer
			err := initializer.FromGenesis(context.Background(), opts, store.MemStore())
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, tc.wantErr.Is(err), "want %s, got %+v", tc.wantErr, err)
		})
	}
}
