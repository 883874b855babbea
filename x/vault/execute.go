package vault

import (
	"strings"
	"time"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x"
	"github.com/iov-one/quorum/x/utils"
	"github.com/tendermint/go-amino"
	"github.com/tendermint/tendermint/libs/common"
)

// ExecuteHandler executes approved proposals. Anyone can execute a proposal
// once enough owners approved it.
//
// All instructions run in a single cache wrap with the vault authority
// attached to the context. If any of them fails, none of their changes is
// kept and the proposal stays pending, so that it can be executed again.
type ExecuteHandler struct {
	auth         x.Authenticator
	vaults       *VaultBucket
	proposals    *ProposalBucket
	instructions *InstructionRouter
	sink         EventSink
}

var _ quorum.Handler = ExecuteHandler{}

// Check validates the proposal and decodes all instructions without running
// them. Instructions may depend on the effects of the previous ones.
func (h ExecuteHandler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	proposal, _, _, _, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	for i, ins := range proposal.Instructions {
		msg, err := h.instructions.Decode(ins)
		if err != nil {
			return nil, errors.Wrapf(err, "instruction %d", i)
		}
		if err := msg.Validate(); err != nil {
			return nil, errors.Wrapf(err, "instruction %d", i)
		}
	}
	return &quorum.CheckResult{}, nil
}

func (h ExecuteHandler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	proposal, vault, executor, now, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	cstore, ok := db.(quorum.CacheableKVStore)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "store cannot be cache wrapped")
	}

	var res *quorum.DeliverResult
	err = utils.Isolate(cstore, func(db quorum.KVStore) error {
		// Marking the proposal first makes any nested execution of the
		// same proposal fail.
		proposal.Executor = executor
		proposal.ExecutedAt = quorum.AsUnixTime(now)
		if err := h.proposals.Update(db, proposal); err != nil {
			return err
		}
		var err error
		res, err = h.run(ctx, db, vault, proposal)
		return err
	})
	if err != nil {
		quorum.GetLogger(ctx).Info("proposal execution failed",
			"proposal", proposal.Address,
			"err", err)
		return nil, err
	}

	quorum.GetLogger(ctx).Info("proposal executed",
		"vault", vault.Address,
		"proposal", proposal.Address,
		"executor", executor)
	ev := Event{
		Kind:     EventProposalExecuted,
		Vault:    vault.Address,
		Proposal: proposal.Address,
		Actor:    executor,
		Time:     proposal.ExecutedAt,
	}
	if err := h.sink.Emit(ctx, ev); err != nil {
		return nil, errors.Wrap(err, "emit event")
	}
	res.Tags = append(ev.Tags(), res.Tags...)
	return res, nil
}

// run delivers all instructions in order and combines their results. The
// data of the result is the go-amino encoded list of every instruction
// result data.
func (h ExecuteHandler) run(ctx quorum.Context, db quorum.KVStore, vault *Vault, proposal *Proposal) (*quorum.DeliverResult, error) {
	ctx = withVaultAuthority(ctx, vault.Address)
	datas := make([][]byte, len(proposal.Instructions))
	logs := make([]string, 0, len(proposal.Instructions))
	var tags []common.KVPair
	for i, ins := range proposal.Instructions {
		res, err := h.instructions.Deliver(ctx, db, ins)
		if err != nil {
			return nil, errors.Wrapf(err, "instruction %d", i)
		}
		if res == nil {
			continue
		}
		datas[i] = res.Data
		if res.Log != "" {
			logs = append(logs, res.Log)
		}
		tags = append(tags, res.Tags...)
	}
	return &quorum.DeliverResult{
		Data: amino.MustMarshalBinaryLengthPrefixed(datas),
		Log:  strings.Join(logs, "\n"),
		Tags: tags,
	}, nil
}

func (h ExecuteHandler) validate(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*Proposal, *Vault, quorum.Address, time.Time, error) {
	var msg ExecuteMsg
	if err := quorum.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, time.Time{}, errors.Wrap(err, "load msg")
	}
	now, ok := quorum.BlockTime(ctx)
	if !ok {
		return nil, nil, nil, time.Time{}, errors.Wrap(errors.ErrHuman, "block time not set")
	}
	proposal, err := h.proposals.GetProposal(db, msg.Proposal)
	if err != nil {
		return nil, nil, nil, time.Time{}, err
	}
	vault, err := h.vaults.GetVault(db, proposal.VaultRef)
	if err != nil {
		return nil, nil, nil, time.Time{}, err
	}

	if proposal.IsExecuted() {
		return nil, nil, nil, time.Time{}, errors.Wrapf(ErrAlreadyExecuted, "at %s", proposal.ExecutedAt)
	}
	if proposal.IsStale(vault) {
		return nil, nil, nil, time.Time{}, errors.Wrapf(ErrStaleProposal,
			"proposal version %d, vault version %d", proposal.OwnerSetVersion, vault.OwnerSetVersion)
	}
	if n := proposal.ApprovalCount(); uint64(n) < uint64(vault.Threshold) {
		return nil, nil, nil, time.Time{}, errors.Wrapf(ErrNotEnoughSigners, "%d of %d", n, vault.Threshold)
	}

	if err := checkAccounts(vault, proposal.Instructions, msg.RemainingAccounts); err != nil {
		return nil, nil, nil, time.Time{}, err
	}

	executor := msg.Executor
	if executor == nil {
		signer := x.MainSigner(ctx, h.auth)
		if signer == nil {
			return nil, nil, nil, time.Time{}, errors.Wrap(errors.ErrUnauthorized, "no executor authenticated")
		}
		executor = signer.Address()
	} else if !h.auth.HasAddress(ctx, executor) {
		return nil, nil, nil, time.Time{}, errors.Wrapf(errors.ErrUnauthorized, "%s not authenticated", executor)
	}
	return proposal, vault, executor, now, nil
}

// checkAccounts ensures that every account an instruction references was
// supplied by the executor and that only the vault authority is required to
// sign.
func checkAccounts(vault *Vault, instructions []*Instruction, remaining []quorum.Address) error {
	supplied := make(map[string]struct{}, len(remaining))
	for _, a := range remaining {
		supplied[string(a)] = struct{}{}
	}
	authority := AuthorityAddress(vault.Address)
	for i, ins := range instructions {
		for _, a := range ins.Accounts {
			if _, ok := supplied[string(a.Address)]; !ok {
				return errors.Wrapf(errors.ErrNotFound, "instruction %d account %s not supplied", i, a.Address)
			}
			if a.Signer && !a.Address.Equals(authority) {
				return errors.Wrapf(errors.ErrUnauthorized, "instruction %d account %s cannot sign", i, a.Address)
			}
		}
	}
	return nil
}
