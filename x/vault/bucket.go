package vault

import (
	"sort"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
)

const (
	indexNameOwner = "owner"
	indexNameVault = "vault"
)

// VaultBucket is the persistent bucket for Vault objects, keyed by the
// vault address.
type VaultBucket struct {
	orm.Bucket
}

// NewVaultBucket returns a bucket for managing vaults. Vaults are indexed
// by each of their owners.
func NewVaultBucket() *VaultBucket {
	b := orm.NewBucket("vault", orm.NewSimpleObj(nil, &Vault{})).
		WithMultiKeyIndex(indexNameOwner, ownerIndexer, false)
	return &VaultBucket{Bucket: b}
}

func ownerIndexer(obj orm.Object) ([][]byte, error) {
	v, err := asVault(obj)
	if err != nil {
		return nil, err
	}
	idxs := make([][]byte, len(v.Owners))
	for i, o := range v.Owners {
		idxs[i] = append([]byte(nil), o...)
	}
	return idxs, nil
}

// GetVault loads the vault stored under given address. If it does not
// exist then ErrNotFound is returned.
func (b *VaultBucket) GetVault(db quorum.ReadOnlyKVStore, addr quorum.Address) (*Vault, error) {
	obj, err := b.Get(db, addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load vault")
	}
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "vault %s", addr)
	}
	return asVault(obj)
}

// ByOwner returns all vaults given identity is an owner of.
func (b *VaultBucket) ByOwner(db quorum.ReadOnlyKVStore, owner quorum.Address) ([]*Vault, error) {
	objs, err := b.GetIndexed(db, indexNameOwner, owner)
	if err != nil {
		return nil, errors.Wrap(err, "owner index")
	}
	res := make([]*Vault, 0, len(objs))
	for _, obj := range objs {
		v, err := asVault(obj)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, nil
}

// Update stores the vault under its address.
func (b *VaultBucket) Update(db quorum.KVStore, v *Vault) error {
	if err := b.Save(db, orm.NewSimpleObj(v.Address, v)); err != nil {
		return errors.Wrap(err, "failed to save vault")
	}
	return nil
}

func asVault(obj orm.Object) (*Vault, error) {
	v, ok := obj.Value().(*Vault)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidModel, "invalid type: %T", obj.Value())
	}
	return v, nil
}

// ProposalBucket is the persistent bucket for Proposal objects, keyed by
// the proposal address.
type ProposalBucket struct {
	orm.Bucket
}

// NewProposalBucket returns a bucket for managing proposals. Proposals are
// indexed by the vault they belong to.
func NewProposalBucket() *ProposalBucket {
	b := orm.NewBucket("proposal", orm.NewSimpleObj(nil, &Proposal{})).
		WithIndex(indexNameVault, proposalVaultIndexer, false)
	return &ProposalBucket{Bucket: b}
}

func proposalVaultIndexer(obj orm.Object) ([]byte, error) {
	p, err := asProposal(obj)
	if err != nil {
		return nil, err
	}
	return p.VaultRef, nil
}

// GetProposal loads the proposal stored under given address. If it does
// not exist then ErrNotFound is returned.
func (b *ProposalBucket) GetProposal(db quorum.ReadOnlyKVStore, addr quorum.Address) (*Proposal, error) {
	obj, err := b.Get(db, addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load proposal")
	}
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "proposal %s", addr)
	}
	return asProposal(obj)
}

// GetByOrdinal loads the proposal of a vault by its ordinal.
func (b *ProposalBucket) GetByOrdinal(db quorum.ReadOnlyKVStore, vault quorum.Address, ordinal uint64) (*Proposal, error) {
	addr, _ := ProposalAddress(vault, ordinal)
	return b.GetProposal(db, addr)
}

// ByVault returns all proposals of given vault, ordered by their ordinal.
func (b *ProposalBucket) ByVault(db quorum.ReadOnlyKVStore, vault quorum.Address) ([]*Proposal, error) {
	objs, err := b.GetIndexed(db, indexNameVault, vault)
	if err != nil {
		return nil, errors.Wrap(err, "vault index")
	}
	res := make([]*Proposal, 0, len(objs))
	for _, obj := range objs {
		p, err := asProposal(obj)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	sortByOrdinal(res)
	return res, nil
}

// Update stores the proposal under its address.
func (b *ProposalBucket) Update(db quorum.KVStore, p *Proposal) error {
	if err := b.Save(db, orm.NewSimpleObj(p.Address, p)); err != nil {
		return errors.Wrap(err, "failed to save proposal")
	}
	return nil
}

func asProposal(obj orm.Object) (*Proposal, error) {
	p, ok := obj.Value().(*Proposal)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidModel, "invalid type: %T", obj.Value())
	}
	return p, nil
}

// sortByOrdinal sorts in place. The index returns proposals in key order,
// which is a hash and unrelated to the creation order.
func sortByOrdinal(ps []*Proposal) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Ordinal < ps[j].Ordinal })
}
