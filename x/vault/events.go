package vault

import (
	"github.com/iov-one/quorum"
	"github.com/tendermint/tendermint/libs/common"
)

// Kinds of notifications emitted by the vault handlers.
const (
	EventVaultCreated     = "vault-created"
	EventProposalCreated  = "proposal-created"
	EventProposalApproved = "proposal-approved"
	EventProposalExecuted = "proposal-executed"
)

const (
	tagVault    = "vault"
	tagProposal = "proposal"
	tagActor    = "actor"
)

// Event notifies observers about a vault state transition.
type Event struct {
	Kind     string         `json:"kind"`
	Vault    quorum.Address `json:"vault"`
	Proposal quorum.Address `json:"proposal,omitempty"`
	// Actor is the creator, proposer, approver or executor.
	Actor     quorum.Address   `json:"actor,omitempty"`
	Owners    []quorum.Address `json:"owners,omitempty"`
	Threshold uint32           `json:"threshold,omitempty"`
	Time      quorum.UnixTime  `json:"time"`
}

// Tags returns the result tags describing this event.
func (e *Event) Tags() []common.KVPair {
	tags := []common.KVPair{
		{Key: []byte(tagVault), Value: []byte(e.Vault.String())},
	}
	if e.Proposal != nil {
		tags = append(tags, common.KVPair{Key: []byte(tagProposal), Value: []byte(e.Proposal.String())})
	}
	if e.Actor != nil {
		tags = append(tags, common.KVPair{Key: []byte(tagActor), Value: []byte(e.Actor.String())})
	}
	return tags
}

// EventSink receives the notifications of successfully delivered vault
// operations. Emit is called before the state changes are committed, so a
// sink that persists events must hold them until the commit succeeds.
type EventSink interface {
	Emit(ctx quorum.Context, e Event) error
}

// NopSink drops all events.
type NopSink struct{}

var _ EventSink = NopSink{}

func (NopSink) Emit(quorum.Context, Event) error { return nil }
