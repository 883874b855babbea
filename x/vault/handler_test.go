package vault

import (
	"context"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateVault(t *testing.T) {
	owners := quorumtest.NewAddresses(3)
	a, b, c := owners[0], owners[1], owners[2]

	cases := map[string]struct {
		msg     *CreateVaultMsg
		wantErr *errors.Error
	}{
		"three owners, two required": {
			msg: &CreateVaultMsg{IdentityKey: []byte("one"), Owners: owners, Threshold: 2},
		},
		"single owner": {
			msg: &CreateVaultMsg{IdentityKey: []byte("one"), Owners: owners[:1], Threshold: 1},
		},
		"no owners": {
			msg:     &CreateVaultMsg{IdentityKey: []byte("one"), Threshold: 1},
			wantErr: ErrEmptyOwners,
		},
		"threshold above owner count": {
			msg:     &CreateVaultMsg{IdentityKey: []byte("one"), Owners: []quorum.Address{a, b, c}, Threshold: 4},
			wantErr: ErrInvalidThreshold,
		},
		"zero threshold": {
			msg:     &CreateVaultMsg{IdentityKey: []byte("one"), Owners: []quorum.Address{a, b, c}, Threshold: 0},
			wantErr: ErrInvalidThreshold,
		},
		"repeated owner": {
			msg:     &CreateVaultMsg{IdentityKey: []byte("one"), Owners: []quorum.Address{a, b, a}, Threshold: 2},
			wantErr: ErrDuplicateOwner,
		},
		"missing identity key": {
			msg:     &CreateVaultMsg{Owners: owners, Threshold: 1},
			wantErr: errors.ErrEmpty,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			e := newEnv(t)

			err := e.check(tc.msg)
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "want %s, got %+v", tc.wantErr, err)
				_, err = e.deliver(tc.msg)
				require.True(t, tc.wantErr.Is(err), "want %s, got %+v", tc.wantErr, err)
				assert.Empty(t, e.sink.events)
				return
			}
			require.NoError(t, err)

			res, err := e.deliver(tc.msg)
			require.NoError(t, err)
			want, nonce := VaultAddress(tc.msg.IdentityKey)
			assert.Equal(t, want, quorum.Address(res.Data))

			v := e.vault(want)
			assert.Equal(t, tc.msg.Owners, v.Owners)
			assert.Equal(t, tc.msg.Threshold, v.Threshold)
			assert.Equal(t, uint64(0), v.ProposalCount)
			assert.Equal(t, uint64(0), v.OwnerSetVersion)
			assert.Equal(t, uint32(nonce), v.DerivationNonce)

			require.Len(t, e.sink.events, 1)
			ev := e.sink.events[0]
			assert.Equal(t, EventVaultCreated, ev.Kind)
			assert.Equal(t, want, ev.Vault)
			assert.Equal(t, tc.msg.Owners, ev.Owners)
			assert.Equal(t, tc.msg.Threshold, ev.Threshold)
			assert.Equal(t, quorum.AsUnixTime(e.now), ev.Time)
			assert.Nil(t, ev.Actor)
		})
	}
}

func TestCreateVaultRecordsCreator(t *testing.T) {
	e := newEnv(t)
	creator := quorumtest.NewCondition()
	msg := &CreateVaultMsg{IdentityKey: []byte("mine"), Owners: quorumtest.NewAddresses(2), Threshold: 2}
	_, err := e.deliver(msg, creator)
	require.NoError(t, err)

	require.Len(t, e.sink.events, 1)
	assert.Equal(t, creator.Address(), e.sink.events[0].Actor)
}

func TestCreateVaultTwice(t *testing.T) {
	e := newEnv(t)
	msg := &CreateVaultMsg{IdentityKey: []byte("same"), Owners: quorumtest.NewAddresses(2), Threshold: 1}
	_, err := e.deliver(msg)
	require.NoError(t, err)

	_, err = e.deliver(msg)
	assert.True(t, errors.ErrDuplicate.Is(err), "%+v", err)
}

func TestCreateVaultRequiresBlockTime(t *testing.T) {
	e := newEnv(t)
	msg := &CreateVaultMsg{IdentityKey: []byte("one"), Owners: quorumtest.NewAddresses(1), Threshold: 1}
	_, err := e.router.Deliver(context.Background(), e.db, &quorum.MsgTx{Msg: msg})
	assert.True(t, errors.ErrHuman.Is(err), "%+v", err)
}

func TestCreateProposal(t *testing.T) {
	owners := conditions(3)
	stranger := quorumtest.NewCondition()

	cases := map[string]struct {
		signers       []quorum.Condition
		proposer      quorum.Address
		instructions  func(t testing.TB) []*Instruction
		wantErr       *errors.Error
		wantApprovals []bool
		wantProposer  quorum.Address
	}{
		"first owner": {
			signers:       owners[:1],
			wantApprovals: []bool{true, false, false},
			wantProposer:  owners[0].Address(),
		},
		"last owner": {
			signers:       owners[2:],
			wantApprovals: []bool{false, false, true},
			wantProposer:  owners[2].Address(),
		},
		"first authenticated owner is used": {
			signers:       []quorum.Condition{stranger, owners[1], owners[0]},
			wantApprovals: []bool{false, true, false},
			wantProposer:  owners[1].Address(),
		},
		"explicit proposer": {
			signers:       []quorum.Condition{owners[0], owners[2]},
			proposer:      owners[2].Address(),
			wantApprovals: []bool{false, false, true},
			wantProposer:  owners[2].Address(),
		},
		"explicit proposer not signed": {
			signers:  owners[:1],
			proposer: owners[2].Address(),
			wantErr:  errors.ErrUnauthorized,
		},
		"explicit proposer not an owner": {
			signers:  []quorum.Condition{stranger},
			proposer: stranger.Address(),
			wantErr:  ErrInvalidOwner,
		},
		"stranger": {
			signers: []quorum.Condition{stranger},
			wantErr: ErrInvalidOwner,
		},
		"nobody": {
			wantErr: ErrInvalidOwner,
		},
		"no instructions": {
			signers:      owners[:1],
			instructions: func(testing.TB) []*Instruction { return nil },
			wantErr:      errors.ErrEmpty,
		},
		"invalid instruction target": {
			signers: owners[:1],
			instructions: func(testing.TB) []*Instruction {
				return []*Instruction{{Target: "x"}}
			},
			wantErr: errors.ErrInvalidInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			e := newEnv(t)
			vault := e.createVault(owners, 2)
			ins := []*Instruction{instruction(t, "test/noop")}
			if tc.instructions != nil {
				ins = tc.instructions(t)
			}
			msg := &CreateProposalMsg{Vault: vault, Proposer: tc.proposer, Instructions: ins}

			err := e.check(msg, tc.signers...)
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "want %s, got %+v", tc.wantErr, err)
				_, err = e.deliver(msg, tc.signers...)
				require.True(t, tc.wantErr.Is(err), "want %s, got %+v", tc.wantErr, err)
				assert.Equal(t, uint64(0), e.vault(vault).ProposalCount)
				return
			}
			require.NoError(t, err)

			res, err := e.deliver(msg, tc.signers...)
			require.NoError(t, err)
			want, _ := ProposalAddress(vault, 0)
			assert.Equal(t, want, quorum.Address(res.Data))

			p := e.proposal(want)
			assert.Equal(t, tc.wantApprovals, p.Approvals)
			assert.Equal(t, 1, p.ApprovalCount())
			assert.Equal(t, tc.wantProposer, p.Proposer)
			assert.Equal(t, vault, p.VaultRef)
			assert.Equal(t, uint64(0), p.Ordinal)
			assert.Equal(t, uint64(0), p.OwnerSetVersion)
			assert.Equal(t, quorum.AsUnixTime(e.now), p.CreatedAt)
			assert.False(t, p.IsExecuted())
			assert.Nil(t, p.Executor)
			assert.Equal(t, uint64(1), e.vault(vault).ProposalCount)

			assert.Equal(t, []string{EventVaultCreated, EventProposalCreated}, e.sink.kinds())
		})
	}
}

func TestCreateProposalUnknownVault(t *testing.T) {
	e := newEnv(t)
	owner := quorumtest.NewCondition()
	_, err := e.deliver(&CreateProposalMsg{
		Vault:        quorumtest.NewAddresses(1)[0],
		Instructions: []*Instruction{instruction(t, "test/noop")},
	}, owner)
	assert.True(t, errors.ErrNotFound.Is(err), "%+v", err)
}

func TestProposalOrdinals(t *testing.T) {
	e := newEnv(t)
	owners := conditions(2)
	vault := e.createVault(owners, 1)

	var created []quorum.Address
	for i := 0; i < 3; i++ {
		created = append(created, e.propose(vault, owners[i%2], instruction(t, "test/noop")))
	}
	assert.Equal(t, uint64(3), e.vault(vault).ProposalCount)

	for i, addr := range created {
		want, _ := ProposalAddress(vault, uint64(i))
		assert.Equal(t, want, addr)
		p, err := NewProposalBucket().GetByOrdinal(e.db, vault, uint64(i))
		require.NoError(t, err)
		assert.Equal(t, uint64(i), p.Ordinal)
	}

	listed, err := NewProposalBucket().ByVault(e.db, vault)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	for i, p := range listed {
		assert.Equal(t, uint64(i), p.Ordinal)
	}
}

func TestProposalCountSaturates(t *testing.T) {
	e := newEnv(t)
	owners := conditions(1)
	addr := e.createVault(owners, 1)

	v := e.vault(addr)
	v.ProposalCount = ^uint64(0)
	require.NoError(t, NewVaultBucket().Update(e.db, v))

	p := e.propose(addr, owners[0], instruction(t, "test/noop"))
	assert.Equal(t, ^uint64(0), e.proposal(p).Ordinal)
	assert.Equal(t, ^uint64(0), e.vault(addr).ProposalCount)

	_, err := e.deliver(&CreateProposalMsg{
		Vault:        addr,
		Instructions: []*Instruction{instruction(t, "test/noop")},
	}, owners[0])
	assert.True(t, errors.ErrDuplicate.Is(err), "%+v", err)
}

func TestApprove(t *testing.T) {
	owners := conditions(3)
	stranger := quorumtest.NewCondition()

	cases := map[string]struct {
		signers       []quorum.Condition
		owner         quorum.Address
		wantErr       *errors.Error
		wantApprovals []bool
	}{
		"second owner": {
			signers:       owners[1:2],
			wantApprovals: []bool{true, true, false},
		},
		"proposer again": {
			signers:       owners[:1],
			wantApprovals: []bool{true, false, false},
		},
		"explicit owner": {
			signers:       []quorum.Condition{owners[1], owners[2]},
			owner:         owners[2].Address(),
			wantApprovals: []bool{true, false, true},
		},
		"explicit owner not signed": {
			signers: owners[1:2],
			owner:   owners[2].Address(),
			wantErr: errors.ErrUnauthorized,
		},
		"stranger": {
			signers: []quorum.Condition{stranger},
			wantErr: ErrInvalidOwner,
		},
		"stranger naming itself": {
			signers: []quorum.Condition{stranger},
			owner:   stranger.Address(),
			wantErr: ErrInvalidOwner,
		},
		"nobody": {
			wantErr: ErrInvalidOwner,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			e := newEnv(t)
			vault := e.createVault(owners, 2)
			proposal := e.propose(vault, owners[0], instruction(t, "test/noop"))
			msg := &ApproveMsg{Proposal: proposal, Owner: tc.owner}

			err := e.check(msg, tc.signers...)
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "want %s, got %+v", tc.wantErr, err)
				_, err = e.deliver(msg, tc.signers...)
				require.True(t, tc.wantErr.Is(err), "want %s, got %+v", tc.wantErr, err)
				assert.Equal(t, []bool{true, false, false}, e.proposal(proposal).Approvals)
				return
			}
			require.NoError(t, err)

			res, err := e.deliver(msg, tc.signers...)
			require.NoError(t, err)
			assert.Equal(t, proposal, quorum.Address(res.Data))
			assert.Equal(t, tc.wantApprovals, e.proposal(proposal).Approvals)

			last := e.sink.events[len(e.sink.events)-1]
			assert.Equal(t, EventProposalApproved, last.Kind)
			assert.Equal(t, proposal, last.Proposal)
			assert.Equal(t, vault, last.Vault)
		})
	}
}

func TestApproveIsIdempotent(t *testing.T) {
	e := newEnv(t)
	owners := conditions(3)
	vault := e.createVault(owners, 3)
	proposal := e.propose(vault, owners[0], instruction(t, "test/noop"))

	require.NoError(t, e.approve(proposal, owners[2]))
	once := e.proposal(proposal).Approvals

	require.NoError(t, e.approve(proposal, owners[2]))
	require.NoError(t, e.approve(proposal, owners[2]))
	assert.Equal(t, once, e.proposal(proposal).Approvals)
	assert.Equal(t, []bool{true, false, true}, once)
}

func TestApproveUnknownProposal(t *testing.T) {
	e := newEnv(t)
	err := e.approve(quorumtest.NewAddresses(1)[0], quorumtest.NewCondition())
	assert.True(t, errors.ErrNotFound.Is(err), "%+v", err)
}

func TestOwnedVaults(t *testing.T) {
	e := newEnv(t)
	owners := conditions(3)
	first := e.createVault(owners[:2], 1)
	second := e.createVault(owners[1:], 1)

	cases := map[string]struct {
		owner quorum.Address
		want  []quorum.Address
	}{
		"only first":  {owner: owners[0].Address(), want: []quorum.Address{first}},
		"both":        {owner: owners[1].Address(), want: []quorum.Address{first, second}},
		"only second": {owner: owners[2].Address(), want: []quorum.Address{second}},
		"none":        {owner: quorumtest.NewAddresses(1)[0], want: nil},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			vaults, err := NewVaultBucket().ByOwner(e.db, tc.owner)
			require.NoError(t, err)
			var got []quorum.Address
			for _, v := range vaults {
				got = append(got, v.Address)
			}
			assert.ElementsMatch(t, tc.want, got)
		})
	}
}

func TestQueries(t *testing.T) {
	e := newEnv(t)
	owners := conditions(2)
	vault := e.createVault(owners, 1)
	proposal := e.propose(vault, owners[0], instruction(t, "test/noop"))

	qr := quorum.NewQueryRouter()
	RegisterQuery(qr)

	res, err := qr.Handler("/vaults").Query(e.db, quorum.KeyQueryMod, vault)
	require.NoError(t, err)
	require.Len(t, res, 1)
	var v Vault
	require.NoError(t, quorum.Unmarshal(res[0].Value, &v))
	assert.Equal(t, vault, v.Address)

	res, err = qr.Handler("/vaults/owner").Query(e.db, quorum.KeyQueryMod, owners[1].Address())
	require.NoError(t, err)
	assert.Len(t, res, 1)

	res, err = qr.Handler("/proposals/vault").Query(e.db, quorum.KeyQueryMod, vault)
	require.NoError(t, err)
	require.Len(t, res, 1)
	var p Proposal
	require.NoError(t, quorum.Unmarshal(res[0].Value, &p))
	assert.Equal(t, proposal, p.Address)
}
