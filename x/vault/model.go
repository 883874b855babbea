package vault

import (
	"math"
	"regexp"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
)

const (
	// VaultTag is the derivation tag of vault addresses.
	VaultTag = "vault"
	// ProposalTag is the derivation tag of proposal addresses.
	ProposalTag = "proposal"

	maxIdentityKeyLength = 64
)

var isTarget = regexp.MustCompile(`^[a-z0-9_/]{3,64}$`).MatchString

// AccountMeta references an account an instruction operates on.
type AccountMeta struct {
	Address  quorum.Address `protobuf:"bytes,1,opt,name=address,proto3,casttype=github.com/iov-one/quorum.Address" json:"address,omitempty"`
	Signer   bool           `protobuf:"varint,2,opt,name=signer,proto3" json:"signer,omitempty"`
	Writable bool           `protobuf:"varint,3,opt,name=writable,proto3" json:"writable,omitempty"`
}

func (m *AccountMeta) Reset()         { *m = AccountMeta{} }
func (m *AccountMeta) String() string { return proto.CompactTextString(m) }
func (*AccountMeta) ProtoMessage()    {}

func (m *AccountMeta) Validate() error {
	if err := m.Address.Validate(); err != nil {
		return errors.Field("Address", err, "invalid")
	}
	return nil
}

// Instruction is a single operation executed on behalf of a vault. It is
// plain data. Target names the route of the instruction router and data is
// the serialized message that route expects.
type Instruction struct {
	Target   string         `protobuf:"bytes,1,opt,name=target,proto3" json:"target,omitempty"`
	Accounts []*AccountMeta `protobuf:"bytes,2,rep,name=accounts,proto3" json:"accounts,omitempty"`
	Data     []byte         `protobuf:"bytes,3,opt,name=data,proto3" json:"data,omitempty"`
}

func (m *Instruction) Reset()         { *m = Instruction{} }
func (m *Instruction) String() string { return proto.CompactTextString(m) }
func (*Instruction) ProtoMessage()    {}

func (m *Instruction) Validate() error {
	if !isTarget(m.Target) {
		return errors.Field("Target", errors.ErrInvalidInput, "invalid route name %q", m.Target)
	}
	for i, a := range m.Accounts {
		if a == nil {
			return errors.Field("Accounts", errors.ErrEmpty, "account %d missing", i)
		}
		if err := a.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}
	return nil
}

// Vault is the persistent state of a shared account.
type Vault struct {
	// IdentityKey is the seed the vault address is derived from.
	IdentityKey []byte           `protobuf:"bytes,1,opt,name=identity_key,json=identityKey,proto3" json:"identity_key,omitempty"`
	Owners      []quorum.Address `protobuf:"bytes,2,rep,name=owners,proto3,casttype=github.com/iov-one/quorum.Address" json:"owners,omitempty"`
	Threshold   uint32           `protobuf:"varint,3,opt,name=threshold,proto3" json:"threshold,omitempty"`
	// ProposalCount is the ordinal of the next proposal.
	ProposalCount uint64 `protobuf:"varint,4,opt,name=proposal_count,json=proposalCount,proto3" json:"proposal_count,omitempty"`
	// OwnerSetVersion is incremented every time the owners are replaced.
	OwnerSetVersion uint64         `protobuf:"varint,5,opt,name=owner_set_version,json=ownerSetVersion,proto3" json:"owner_set_version,omitempty"`
	DerivationNonce uint32         `protobuf:"varint,6,opt,name=derivation_nonce,json=derivationNonce,proto3" json:"derivation_nonce,omitempty"`
	Address         quorum.Address `protobuf:"bytes,7,opt,name=address,proto3,casttype=github.com/iov-one/quorum.Address" json:"address,omitempty"`
}

func (m *Vault) Reset()         { *m = Vault{} }
func (m *Vault) String() string { return proto.CompactTextString(m) }
func (*Vault) ProtoMessage()    {}

var _ orm.Persistent = (*Vault)(nil)

func (v *Vault) Validate() error {
	if len(v.IdentityKey) == 0 {
		return errors.Field("IdentityKey", errors.ErrEmpty, "required")
	}
	if len(v.IdentityKey) > maxIdentityKeyLength {
		return errors.Field("IdentityKey", errors.ErrInvalidInput, "longer than %d bytes", maxIdentityKeyLength)
	}
	if err := validateOwners(v.Owners, v.Threshold); err != nil {
		return err
	}
	if v.DerivationNonce > math.MaxUint8 {
		return errors.Field("DerivationNonce", errors.ErrInvalidInput, "must fit a byte")
	}
	if err := quorum.VerifyDerivedAddress(v.Address, VaultTag, uint8(v.DerivationNonce), v.IdentityKey); err != nil {
		return errors.Field("Address", err, "invalid")
	}
	return nil
}

// OwnerIndex returns the position of given identity in the owner list.
func (v *Vault) OwnerIndex(addr quorum.Address) (int, bool) {
	for i, o := range v.Owners {
		if o.Equals(addr) {
			return i, true
		}
	}
	return -1, false
}

// validateOwners checks an owner list together with the threshold that is
// going to be used with it. Empty owners are reported first, then an out of
// range threshold and finally malformed or repeated entries.
func validateOwners(owners []quorum.Address, threshold uint32) error {
	if len(owners) == 0 {
		return errors.Field("Owners", ErrEmptyOwners, "required")
	}
	if err := validateThreshold(threshold, len(owners)); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(owners))
	for i, o := range owners {
		if err := o.Validate(); err != nil {
			return errors.Field("Owners", err, "owner %d", i)
		}
		if _, ok := seen[string(o)]; ok {
			return errors.Field("Owners", ErrDuplicateOwner, "owner %s at %d", o, i)
		}
		seen[string(o)] = struct{}{}
	}
	return nil
}

func validateThreshold(threshold uint32, owners int) error {
	if threshold == 0 || uint64(threshold) > uint64(owners) {
		return errors.Field("Threshold", ErrInvalidThreshold, "%d not in [1, %d]", threshold, owners)
	}
	return nil
}

// Proposal is a batch of instructions waiting for the approval of the vault
// owners.
type Proposal struct {
	VaultRef quorum.Address `protobuf:"bytes,1,opt,name=vault_ref,json=vaultRef,proto3,casttype=github.com/iov-one/quorum.Address" json:"vault_ref,omitempty"`
	Proposer quorum.Address `protobuf:"bytes,2,opt,name=proposer,proto3,casttype=github.com/iov-one/quorum.Address" json:"proposer,omitempty"`
	// Executor is set together with ExecutedAt.
	Executor     quorum.Address `protobuf:"bytes,3,opt,name=executor,proto3,casttype=github.com/iov-one/quorum.Address" json:"executor,omitempty"`
	Instructions []*Instruction `protobuf:"bytes,4,rep,name=instructions,proto3" json:"instructions,omitempty"`
	// Approvals has one entry for every owner the vault had when the
	// proposal was created.
	Approvals       []bool          `protobuf:"varint,5,rep,packed,name=approvals,proto3" json:"approvals,omitempty"`
	OwnerSetVersion uint64          `protobuf:"varint,6,opt,name=owner_set_version,json=ownerSetVersion,proto3" json:"owner_set_version,omitempty"`
	Ordinal         uint64          `protobuf:"varint,7,opt,name=ordinal,proto3" json:"ordinal,omitempty"`
	CreatedAt       quorum.UnixTime `protobuf:"varint,8,opt,name=created_at,json=createdAt,proto3,casttype=github.com/iov-one/quorum.UnixTime" json:"created_at"`
	ExecutedAt      quorum.UnixTime `protobuf:"varint,9,opt,name=executed_at,json=executedAt,proto3,casttype=github.com/iov-one/quorum.UnixTime" json:"executed_at"`
	DerivationNonce uint32          `protobuf:"varint,10,opt,name=derivation_nonce,json=derivationNonce,proto3" json:"derivation_nonce,omitempty"`
	Address         quorum.Address  `protobuf:"bytes,11,opt,name=address,proto3,casttype=github.com/iov-one/quorum.Address" json:"address,omitempty"`
}

func (m *Proposal) Reset()         { *m = Proposal{} }
func (m *Proposal) String() string { return proto.CompactTextString(m) }
func (*Proposal) ProtoMessage()    {}

var _ orm.Persistent = (*Proposal)(nil)

func (p *Proposal) Validate() error {
	if err := p.VaultRef.Validate(); err != nil {
		return errors.Field("VaultRef", err, "invalid")
	}
	if err := p.Proposer.Validate(); err != nil {
		return errors.Field("Proposer", err, "invalid")
	}
	if err := validateInstructions(p.Instructions); err != nil {
		return err
	}
	if len(p.Approvals) == 0 {
		return errors.Field("Approvals", errors.ErrEmpty, "required")
	}
	if p.CreatedAt.IsZero() {
		return errors.Field("CreatedAt", errors.ErrEmpty, "required")
	}
	switch {
	case p.ExecutedAt.IsZero() && p.Executor != nil:
		return errors.Field("Executor", errors.ErrInvalidState, "set on a pending proposal")
	case !p.ExecutedAt.IsZero():
		if err := p.Executor.Validate(); err != nil {
			return errors.Field("Executor", err, "invalid")
		}
	}
	if p.DerivationNonce > math.MaxUint8 {
		return errors.Field("DerivationNonce", errors.ErrInvalidInput, "must fit a byte")
	}
	err := quorum.VerifyDerivedAddress(p.Address, ProposalTag, uint8(p.DerivationNonce),
		p.VaultRef, quorum.EncodeSequence(p.Ordinal))
	if err != nil {
		return errors.Field("Address", err, "invalid")
	}
	return nil
}

// IsExecuted returns true once the proposal was executed. An executed
// proposal never changes again.
func (p *Proposal) IsExecuted() bool {
	return !p.ExecutedAt.IsZero()
}

// ApprovalCount returns the number of owners that approved.
func (p *Proposal) ApprovalCount() int {
	var n int
	for _, ok := range p.Approvals {
		if ok {
			n++
		}
	}
	return n
}

// HasApproved returns true if the owner at given position approved.
func (p *Proposal) HasApproved(index int) bool {
	return index >= 0 && index < len(p.Approvals) && p.Approvals[index]
}

// IsStale returns true if the owner set of the vault changed since the
// proposal was created.
func (p *Proposal) IsStale(v *Vault) bool {
	return p.OwnerSetVersion != v.OwnerSetVersion
}

func validateInstructions(ins []*Instruction) error {
	if len(ins) == 0 {
		return errors.Field("Instructions", errors.ErrEmpty, "required")
	}
	for i, in := range ins {
		if in == nil {
			return errors.Field("Instructions", errors.ErrEmpty, "instruction %d missing", i)
		}
		if err := in.Validate(); err != nil {
			return errors.Wrapf(err, "instruction %d", i)
		}
	}
	return nil
}

// VaultAddress returns the address of the vault created with given identity
// key and the nonce used to derive it.
func VaultAddress(identityKey []byte) (quorum.Address, uint8) {
	return quorum.DeriveAddress(VaultTag, identityKey)
}

// ProposalAddress returns the address of the proposal with given ordinal
// and the nonce used to derive it.
func ProposalAddress(vault quorum.Address, ordinal uint64) (quorum.Address, uint8) {
	return quorum.DeriveAddress(ProposalTag, vault, quorum.EncodeSequence(ordinal))
}

// incSaturating returns n+1, or n if that would overflow.
func incSaturating(n uint64) uint64 {
	if n == math.MaxUint64 {
		return n
	}
	return n + 1
}
