package vault

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

const (
	pathCreateVaultMsg     = "vault/create"
	pathCreateProposalMsg  = "vault/propose"
	pathApproveMsg         = "vault/approve"
	pathExecuteMsg         = "vault/execute"
	pathReplaceOwnersMsg   = "vault/replace_owners"
	pathChangeThresholdMsg = "vault/change_threshold"
)

// CreateVaultMsg creates a new vault. The vault address is derived from the
// identity key.
type CreateVaultMsg struct {
	IdentityKey []byte           `protobuf:"bytes,1,opt,name=identity_key,json=identityKey,proto3" json:"identity_key,omitempty"`
	Owners      []quorum.Address `protobuf:"bytes,2,rep,name=owners,proto3,casttype=github.com/iov-one/quorum.Address" json:"owners,omitempty"`
	Threshold   uint32           `protobuf:"varint,3,opt,name=threshold,proto3" json:"threshold,omitempty"`
}

func (m *CreateVaultMsg) Reset()         { *m = CreateVaultMsg{} }
func (m *CreateVaultMsg) String() string { return proto.CompactTextString(m) }
func (*CreateVaultMsg) ProtoMessage()    {}

var _ quorum.Msg = (*CreateVaultMsg)(nil)

func (CreateVaultMsg) Path() string {
	return pathCreateVaultMsg
}

func (m *CreateVaultMsg) Validate() error {
	if len(m.IdentityKey) == 0 {
		return errors.Field("IdentityKey", errors.ErrEmpty, "required")
	}
	if len(m.IdentityKey) > maxIdentityKeyLength {
		return errors.Field("IdentityKey", errors.ErrInvalidInput, "longer than %d bytes", maxIdentityKeyLength)
	}
	return validateOwners(m.Owners, m.Threshold)
}

// CreateProposalMsg proposes a batch of instructions to be executed by the
// vault. When the proposer is not given, the first authenticated vault owner
// is used.
type CreateProposalMsg struct {
	Vault        quorum.Address `protobuf:"bytes,1,opt,name=vault,proto3,casttype=github.com/iov-one/quorum.Address" json:"vault,omitempty"`
	Proposer     quorum.Address `protobuf:"bytes,2,opt,name=proposer,proto3,casttype=github.com/iov-one/quorum.Address" json:"proposer,omitempty"`
	Instructions []*Instruction `protobuf:"bytes,3,rep,name=instructions,proto3" json:"instructions,omitempty"`
}

func (m *CreateProposalMsg) Reset()         { *m = CreateProposalMsg{} }
func (m *CreateProposalMsg) String() string { return proto.CompactTextString(m) }
func (*CreateProposalMsg) ProtoMessage()    {}

var _ quorum.Msg = (*CreateProposalMsg)(nil)

func (CreateProposalMsg) Path() string {
	return pathCreateProposalMsg
}

func (m *CreateProposalMsg) Validate() error {
	if err := m.Vault.Validate(); err != nil {
		return errors.Field("Vault", err, "invalid")
	}
	if m.Proposer != nil {
		if err := m.Proposer.Validate(); err != nil {
			return errors.Field("Proposer", err, "invalid")
		}
	}
	return validateInstructions(m.Instructions)
}

// ApproveMsg records the approval of a vault owner. When the owner is not
// given, the first authenticated vault owner is used.
type ApproveMsg struct {
	Proposal quorum.Address `protobuf:"bytes,1,opt,name=proposal,proto3,casttype=github.com/iov-one/quorum.Address" json:"proposal,omitempty"`
	Owner    quorum.Address `protobuf:"bytes,2,opt,name=owner,proto3,casttype=github.com/iov-one/quorum.Address" json:"owner,omitempty"`
}

func (m *ApproveMsg) Reset()         { *m = ApproveMsg{} }
func (m *ApproveMsg) String() string { return proto.CompactTextString(m) }
func (*ApproveMsg) ProtoMessage()    {}

var _ quorum.Msg = (*ApproveMsg)(nil)

func (ApproveMsg) Path() string {
	return pathApproveMsg
}

func (m *ApproveMsg) Validate() error {
	if err := m.Proposal.Validate(); err != nil {
		return errors.Field("Proposal", err, "invalid")
	}
	if m.Owner != nil {
		if err := m.Owner.Validate(); err != nil {
			return errors.Field("Owner", err, "invalid")
		}
	}
	return nil
}

// ExecuteMsg executes an approved proposal. Every account referenced by the
// proposal instructions must be listed in remaining accounts.
type ExecuteMsg struct {
	Proposal          quorum.Address   `protobuf:"bytes,1,opt,name=proposal,proto3,casttype=github.com/iov-one/quorum.Address" json:"proposal,omitempty"`
	Executor          quorum.Address   `protobuf:"bytes,2,opt,name=executor,proto3,casttype=github.com/iov-one/quorum.Address" json:"executor,omitempty"`
	RemainingAccounts []quorum.Address `protobuf:"bytes,3,rep,name=remaining_accounts,json=remainingAccounts,proto3,casttype=github.com/iov-one/quorum.Address" json:"remaining_accounts,omitempty"`
}

func (m *ExecuteMsg) Reset()         { *m = ExecuteMsg{} }
func (m *ExecuteMsg) String() string { return proto.CompactTextString(m) }
func (*ExecuteMsg) ProtoMessage()    {}

var _ quorum.Msg = (*ExecuteMsg)(nil)

func (ExecuteMsg) Path() string {
	return pathExecuteMsg
}

func (m *ExecuteMsg) Validate() error {
	if err := m.Proposal.Validate(); err != nil {
		return errors.Field("Proposal", err, "invalid")
	}
	if m.Executor != nil {
		if err := m.Executor.Validate(); err != nil {
			return errors.Field("Executor", err, "invalid")
		}
	}
	for i, a := range m.RemainingAccounts {
		if err := a.Validate(); err != nil {
			return errors.Field("RemainingAccounts", err, "account %d", i)
		}
	}
	return nil
}

// ReplaceOwnersMsg replaces the owners of a vault. It is accepted only as
// an instruction executed by that vault.
type ReplaceOwnersMsg struct {
	Vault  quorum.Address   `protobuf:"bytes,1,opt,name=vault,proto3,casttype=github.com/iov-one/quorum.Address" json:"vault,omitempty"`
	Owners []quorum.Address `protobuf:"bytes,2,rep,name=owners,proto3,casttype=github.com/iov-one/quorum.Address" json:"owners,omitempty"`
}

func (m *ReplaceOwnersMsg) Reset()         { *m = ReplaceOwnersMsg{} }
func (m *ReplaceOwnersMsg) String() string { return proto.CompactTextString(m) }
func (*ReplaceOwnersMsg) ProtoMessage()    {}

var _ quorum.Msg = (*ReplaceOwnersMsg)(nil)

func (ReplaceOwnersMsg) Path() string {
	return pathReplaceOwnersMsg
}

func (m *ReplaceOwnersMsg) Validate() error {
	if err := m.Vault.Validate(); err != nil {
		return errors.Field("Vault", err, "invalid")
	}
	// Any threshold up to the current one is fine here, the handler
	// lowers it to the new owner count.
	return validateOwners(m.Owners, 1)
}

// ChangeThresholdMsg changes the number of approvals a vault proposal needs.
// It is accepted only as an instruction executed by that vault.
type ChangeThresholdMsg struct {
	Vault     quorum.Address `protobuf:"bytes,1,opt,name=vault,proto3,casttype=github.com/iov-one/quorum.Address" json:"vault,omitempty"`
	Threshold uint32         `protobuf:"varint,2,opt,name=threshold,proto3" json:"threshold,omitempty"`
}

func (m *ChangeThresholdMsg) Reset()         { *m = ChangeThresholdMsg{} }
func (m *ChangeThresholdMsg) String() string { return proto.CompactTextString(m) }
func (*ChangeThresholdMsg) ProtoMessage()    {}

var _ quorum.Msg = (*ChangeThresholdMsg)(nil)

func (ChangeThresholdMsg) Path() string {
	return pathChangeThresholdMsg
}

func (m *ChangeThresholdMsg) Validate() error {
	if err := m.Vault.Validate(); err != nil {
		return errors.Field("Vault", err, "invalid")
	}
	if m.Threshold == 0 {
		return errors.Field("Threshold", ErrInvalidThreshold, "must be at least 1")
	}
	return nil
}
