package vault

import (
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/app"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructionRouterDecode(t *testing.T) {
	r := NewInstructionRouter()
	RegisterInstructionRoutes(r, Authenticate{})
	vault, _ := VaultAddress([]byte("identity"))

	cases := map[string]struct {
		ins     *Instruction
		want    quorum.Msg
		wantErr *errors.Error
	}{
		"change threshold": {
			ins:  mustInstruction(t, &ChangeThresholdMsg{Vault: vault, Threshold: 3}),
			want: &ChangeThresholdMsg{Vault: vault, Threshold: 3},
		},
		"replace owners": {
			ins:  mustInstruction(t, &ReplaceOwnersMsg{Vault: vault, Owners: []quorum.Address{vault}}),
			want: &ReplaceOwnersMsg{Vault: vault, Owners: []quorum.Address{vault}},
		},
		"unknown target": {
			ins:     &Instruction{Target: "bank/send"},
			wantErr: app.ErrNoSuchPath,
		},
		"malformed data": {
			ins:     &Instruction{Target: pathChangeThresholdMsg, Data: []byte{0xff, 0xff, 0xff}},
			wantErr: errors.ErrInvalidInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := r.Decode(tc.ins)
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "want %s, got %+v", tc.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	assert.True(t, r.Has(pathReplaceOwnersMsg))
	assert.True(t, r.Has(pathChangeThresholdMsg))
	assert.False(t, r.Has(pathExecuteMsg))

	msg, err := r.New(pathReplaceOwnersMsg)
	require.NoError(t, err)
	assert.Equal(t, &ReplaceOwnersMsg{}, msg)
	_, err = r.New(pathExecuteMsg)
	assert.True(t, app.ErrNoSuchPath.Is(err), "%+v", err)
}

func TestInstructionRouterHandle(t *testing.T) {
	r := NewInstructionRouter()
	r.Handle(&quorumtest.Msg{RoutePath: "test/one"}, &quorumtest.Handler{})

	assert.Panics(t, func() {
		r.Handle(&quorumtest.Msg{RoutePath: "test/one"}, &quorumtest.Handler{})
	}, "duplicate route")
	assert.Panics(t, func() {
		r.Handle(&quorumtest.Msg{RoutePath: "Not A Path"}, &quorumtest.Handler{})
	}, "invalid path")
}

func TestNewInstruction(t *testing.T) {
	account := &AccountMeta{Address: quorumtest.NewAddresses(1)[0], Writable: true}
	msg := &quorumtest.Msg{RoutePath: "test/route", Payload: []byte("payload")}

	ins, err := NewInstruction(msg, account)
	require.NoError(t, err)
	assert.Equal(t, "test/route", ins.Target)
	assert.Equal(t, []*AccountMeta{account}, ins.Accounts)
	assert.NoError(t, ins.Validate())

	var got quorumtest.Msg
	require.NoError(t, quorum.Unmarshal(ins.Data, &got))
	assert.Equal(t, *msg, got)
}

func TestEventTags(t *testing.T) {
	addrs := quorumtest.NewAddresses(3)

	ev := Event{Kind: EventVaultCreated, Vault: addrs[0]}
	assert.Len(t, ev.Tags(), 1)

	ev = Event{Kind: EventProposalApproved, Vault: addrs[0], Proposal: addrs[1], Actor: addrs[2]}
	tags := ev.Tags()
	require.Len(t, tags, 3)
	assert.Equal(t, []byte(addrs[1].String()), tags[1].Value)
	assert.Equal(t, tagActor, string(tags[2].Key))
}
