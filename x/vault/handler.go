package vault

import (
	"time"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x"
)

// RegisterQuery registers vault buckets for querying.
func RegisterQuery(qr quorum.QueryRouter) {
	NewVaultBucket().Register("vaults", qr)
	NewProposalBucket().Register("proposals", qr)
}

// RegisterRoutes registers handlers for vault message processing.
// Instructions of executed proposals are dispatched by given instruction
// router. Successful operations are reported to the sink, which may be nil.
func RegisterRoutes(r quorum.Registry, auth x.Authenticator, instructions *InstructionRouter, sink EventSink) {
	if sink == nil {
		sink = NopSink{}
	}
	vaults := NewVaultBucket()
	proposals := NewProposalBucket()
	r.Handle(pathCreateVaultMsg, &CreateVaultHandler{
		auth:   auth,
		vaults: vaults,
		sink:   sink,
	})
	r.Handle(pathCreateProposalMsg, &CreateProposalHandler{
		auth:      auth,
		vaults:    vaults,
		proposals: proposals,
		sink:      sink,
	})
	r.Handle(pathApproveMsg, &ApproveHandler{
		auth:      auth,
		vaults:    vaults,
		proposals: proposals,
		sink:      sink,
	})
	r.Handle(pathExecuteMsg, &ExecuteHandler{
		auth:         auth,
		vaults:       vaults,
		proposals:    proposals,
		instructions: instructions,
		sink:         sink,
	})
}

// RegisterInstructionRoutes registers the handlers a vault uses to amend
// itself. They accept only messages carrying the authority of the amended
// vault, so they must be reachable through the instruction router only.
func RegisterInstructionRoutes(r *InstructionRouter, auth x.Authenticator) {
	vaults := NewVaultBucket()
	r.Handle(&ReplaceOwnersMsg{}, &ReplaceOwnersHandler{auth: auth, vaults: vaults})
	r.Handle(&ChangeThresholdMsg{}, &ChangeThresholdHandler{auth: auth, vaults: vaults})
}

// CreateVaultHandler creates new vaults. Anyone can create a vault.
type CreateVaultHandler struct {
	auth   x.Authenticator
	vaults *VaultBucket
	sink   EventSink
}

var _ quorum.Handler = CreateVaultHandler{}

func (h CreateVaultHandler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &quorum.CheckResult{}, nil
}

func (h CreateVaultHandler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	vault, now, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.vaults.Update(db, vault); err != nil {
		return nil, err
	}

	quorum.GetLogger(ctx).Info("vault created",
		"vault", vault.Address,
		"owners", len(vault.Owners),
		"threshold", vault.Threshold)
	var creator quorum.Address
	if signer := x.MainSigner(ctx, h.auth); signer != nil {
		creator = signer.Address()
	}
	ev := Event{
		Kind:      EventVaultCreated,
		Vault:     vault.Address,
		Actor:     creator,
		Owners:    vault.Owners,
		Threshold: vault.Threshold,
		Time:      quorum.AsUnixTime(now),
	}
	if err := h.sink.Emit(ctx, ev); err != nil {
		return nil, errors.Wrap(err, "emit event")
	}
	return &quorum.DeliverResult{Data: vault.Address, Tags: ev.Tags()}, nil
}

func (h CreateVaultHandler) validate(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*Vault, time.Time, error) {
	var msg CreateVaultMsg
	if err := quorum.LoadMsg(tx, &msg); err != nil {
		return nil, time.Time{}, errors.Wrap(err, "load msg")
	}
	now, ok := quorum.BlockTime(ctx)
	if !ok {
		return nil, time.Time{}, errors.Wrap(errors.ErrHuman, "block time not set")
	}
	addr, nonce := VaultAddress(msg.IdentityKey)
	switch exists, err := h.vaults.Has(db, addr); {
	case err != nil:
		return nil, time.Time{}, errors.Wrap(err, "cannot check vault")
	case exists:
		return nil, time.Time{}, errors.Wrapf(errors.ErrDuplicate, "vault %s exists", addr)
	}
	vault := &Vault{
		IdentityKey:     msg.IdentityKey,
		Owners:          msg.Owners,
		Threshold:       msg.Threshold,
		ProposalCount:   0,
		OwnerSetVersion: 0,
		DerivationNonce: uint32(nonce),
		Address:         addr,
	}
	return vault, now, nil
}

// CreateProposalHandler creates proposals. The proposer must be an owner of
// the vault and approves the proposal by creating it.
type CreateProposalHandler struct {
	auth      x.Authenticator
	vaults    *VaultBucket
	proposals *ProposalBucket
	sink      EventSink
}

var _ quorum.Handler = CreateProposalHandler{}

func (h CreateProposalHandler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &quorum.CheckResult{}, nil
}

func (h CreateProposalHandler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	proposal, vault, now, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.proposals.Update(db, proposal); err != nil {
		return nil, err
	}
	vault.ProposalCount = incSaturating(vault.ProposalCount)
	if err := h.vaults.Update(db, vault); err != nil {
		return nil, err
	}

	quorum.GetLogger(ctx).Info("proposal created",
		"vault", vault.Address,
		"proposal", proposal.Address,
		"ordinal", proposal.Ordinal,
		"instructions", len(proposal.Instructions))
	ev := Event{
		Kind:     EventProposalCreated,
		Vault:    vault.Address,
		Proposal: proposal.Address,
		Actor:    proposal.Proposer,
		Time:     quorum.AsUnixTime(now),
	}
	if err := h.sink.Emit(ctx, ev); err != nil {
		return nil, errors.Wrap(err, "emit event")
	}
	return &quorum.DeliverResult{Data: proposal.Address, Tags: ev.Tags()}, nil
}

func (h CreateProposalHandler) validate(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*Proposal, *Vault, time.Time, error) {
	var msg CreateProposalMsg
	if err := quorum.LoadMsg(tx, &msg); err != nil {
		return nil, nil, time.Time{}, errors.Wrap(err, "load msg")
	}
	now, ok := quorum.BlockTime(ctx)
	if !ok {
		return nil, nil, time.Time{}, errors.Wrap(errors.ErrHuman, "block time not set")
	}
	vault, err := h.vaults.GetVault(db, msg.Vault)
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	proposer, index, err := actingOwner(ctx, h.auth, vault, msg.Proposer)
	if err != nil {
		return nil, nil, time.Time{}, err
	}

	addr, nonce := ProposalAddress(vault.Address, vault.ProposalCount)
	// The proposal counter saturates, so the last ordinal can be used
	// only once.
	switch exists, err := h.proposals.Has(db, addr); {
	case err != nil:
		return nil, nil, time.Time{}, errors.Wrap(err, "cannot check proposal")
	case exists:
		return nil, nil, time.Time{}, errors.Wrapf(errors.ErrDuplicate, "proposal %d exists", vault.ProposalCount)
	}

	approvals := make([]bool, len(vault.Owners))
	approvals[index] = true
	proposal := &Proposal{
		VaultRef:        vault.Address,
		Proposer:        proposer,
		Instructions:    msg.Instructions,
		Approvals:       approvals,
		OwnerSetVersion: vault.OwnerSetVersion,
		Ordinal:         vault.ProposalCount,
		CreatedAt:       quorum.AsUnixTime(now),
		DerivationNonce: uint32(nonce),
		Address:         addr,
	}
	return proposal, vault, now, nil
}

// ApproveHandler records owner approvals. Approving twice is not an error.
type ApproveHandler struct {
	auth      x.Authenticator
	vaults    *VaultBucket
	proposals *ProposalBucket
	sink      EventSink
}

var _ quorum.Handler = ApproveHandler{}

func (h ApproveHandler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &quorum.CheckResult{}, nil
}

func (h ApproveHandler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	proposal, owner, now, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.proposals.Update(db, proposal); err != nil {
		return nil, err
	}

	quorum.GetLogger(ctx).Info("proposal approved",
		"proposal", proposal.Address,
		"owner", owner,
		"approvals", proposal.ApprovalCount())
	ev := Event{
		Kind:     EventProposalApproved,
		Vault:    proposal.VaultRef,
		Proposal: proposal.Address,
		Actor:    owner,
		Time:     quorum.AsUnixTime(now),
	}
	if err := h.sink.Emit(ctx, ev); err != nil {
		return nil, errors.Wrap(err, "emit event")
	}
	return &quorum.DeliverResult{Data: proposal.Address, Tags: ev.Tags()}, nil
}

// validate returns the proposal with the approval already set.
func (h ApproveHandler) validate(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*Proposal, quorum.Address, time.Time, error) {
	var msg ApproveMsg
	if err := quorum.LoadMsg(tx, &msg); err != nil {
		return nil, nil, time.Time{}, errors.Wrap(err, "load msg")
	}
	now, ok := quorum.BlockTime(ctx)
	if !ok {
		return nil, nil, time.Time{}, errors.Wrap(errors.ErrHuman, "block time not set")
	}
	proposal, err := h.proposals.GetProposal(db, msg.Proposal)
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	vault, err := h.vaults.GetVault(db, proposal.VaultRef)
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	if proposal.IsStale(vault) {
		return nil, nil, time.Time{}, errors.Wrapf(ErrStaleProposal,
			"proposal version %d, vault version %d", proposal.OwnerSetVersion, vault.OwnerSetVersion)
	}
	if proposal.IsExecuted() {
		return nil, nil, time.Time{}, errors.Wrapf(ErrAlreadyExecuted, "at %s", proposal.ExecutedAt)
	}
	owner, index, err := actingOwner(ctx, h.auth, vault, msg.Owner)
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	// Owners are replaced only together with a version bump, so a fresh
	// proposal always has an entry for every current owner.
	if index >= len(proposal.Approvals) {
		return nil, nil, time.Time{}, errors.Wrapf(errors.ErrInvalidState, "no approval slot %d", index)
	}
	proposal.Approvals[index] = true
	return proposal, owner, now, nil
}

// actingOwner returns the owner a message is sent by together with its
// position in the owner list. A requested identity must be authenticated.
// Otherwise the first authenticated owner is used.
func actingOwner(ctx quorum.Context, auth x.Authenticator, vault *Vault, requested quorum.Address) (quorum.Address, int, error) {
	if requested == nil {
		requested = x.AnySigner(ctx, auth, vault.Owners)
		if requested == nil {
			return nil, -1, errors.Wrapf(ErrInvalidOwner, "no owner of vault %s authenticated", vault.Address)
		}
	} else if !auth.HasAddress(ctx, requested) {
		return nil, -1, errors.Wrapf(errors.ErrUnauthorized, "%s not authenticated", requested)
	}
	index, ok := vault.OwnerIndex(requested)
	if !ok {
		return nil, -1, errors.Wrapf(ErrInvalidOwner, "%s of vault %s", requested, vault.Address)
	}
	return requested, index, nil
}
