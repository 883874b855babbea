package main

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/app"
	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/store/iavl"
	"github.com/iov-one/quorum/x"
	"github.com/iov-one/quorum/x/sigs"
	"github.com/iov-one/quorum/x/utils"
	"github.com/iov-one/quorum/x/vault"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	appName     = "vaultcli"
	stateDBName = "state"
	journalFile = "journal.db"
)

// node is the local vault application. Every delivered transaction is
// committed to the state directory right away.
type node struct {
	chainID      string
	store        *iavl.CommitStore
	app          *app.Application
	journal      *journal
	instructions *vault.InstructionRouter
}

func openNode(cfg *Config, logger log.Logger) (*node, error) {
	if err := os.MkdirAll(cfg.Home, 0700); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "create home: %s", err)
	}
	cs, err := iavl.NewCommitStore(cfg.Home, stateDBName)
	if err != nil {
		return nil, err
	}
	if err := cs.LoadLatestVersion(); err != nil {
		cs.Close()
		return nil, err
	}
	j, err := openJournal(filepath.Join(cfg.Home, journalFile))
	if err != nil {
		cs.Close()
		return nil, err
	}

	handler, queries, instructions := buildHandler(j)
	a, err := app.NewApplication(appName, cfg.ChainID, cs, handler, queries, logger)
	if err != nil {
		j.Close()
		cs.Close()
		return nil, err
	}
	return &node{
		chainID:      cfg.ChainID,
		store:        cs,
		app:          a,
		journal:      j,
		instructions: instructions,
	}, nil
}

// buildHandler wires the vault extension behind signature verification.
func buildHandler(sink vault.EventSink) (quorum.Handler, quorum.QueryRouter, *vault.InstructionRouter) {
	auth := x.ChainAuth(sigs.Authenticate{}, vault.Authenticate{})

	instructions := vault.NewInstructionRouter()
	vault.RegisterInstructionRoutes(instructions, auth)

	r := app.NewRouter()
	vault.RegisterRoutes(r, auth, instructions, sink)

	queries := quorum.NewQueryRouter()
	queries.RegisterAll(vault.RegisterQuery, sigs.RegisterQuery)

	handler := app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewSavepoint().OnDeliver(),
		sigs.NewDecorator(),
		utils.NewActionTagger(),
	).WithHandler(r)
	return handler, queries, instructions
}

func (n *node) Close() {
	n.journal.Close()
	n.store.Close()
}

// deliver signs the message with given key and runs it as a single
// committed transaction. Journal events are written only after the commit.
func (n *node) deliver(key *crypto.PrivateKey, msg quorum.Msg) (*quorum.DeliverResult, error) {
	seq, err := sigs.NextNonce(n.app.ReadOnlyStore(), key.PublicKey().Address())
	if err != nil {
		return nil, errors.Wrap(err, "nonce")
	}
	tx := sigs.NewStdTx(msg)
	if err := tx.Sign(key, n.chainID, seq); err != nil {
		return nil, errors.Wrap(err, "sign")
	}
	res, _, err := n.app.DeliverTx(context.Background(), tx, time.Now())
	if err != nil {
		n.journal.Discard()
		return nil, err
	}
	if err := n.journal.Flush(); err != nil {
		return nil, err
	}
	return res, nil
}

// genesis loads the initial vaults. It only works on an empty state.
func (n *node) genesis(opts quorum.Options) (quorum.CommitID, error) {
	return n.app.InitChain(opts, &vault.Initializer{})
}

func (n *node) vault(addr quorum.Address) (*vault.Vault, error) {
	models, err := n.app.Query("/vaults", quorum.KeyQueryMod, addr)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "vault %s", addr)
	}
	var v vault.Vault
	if err := quorum.Unmarshal(models[0].Value, &v); err != nil {
		return nil, errors.Wrap(err, "decode vault")
	}
	return &v, nil
}

func (n *node) ownedVaults(owner quorum.Address) ([]*vault.Vault, error) {
	models, err := n.app.Query("/vaults/owner", quorum.KeyQueryMod, owner)
	if err != nil {
		return nil, err
	}
	vaults := make([]*vault.Vault, len(models))
	for i, m := range models {
		var v vault.Vault
		if err := quorum.Unmarshal(m.Value, &v); err != nil {
			return nil, errors.Wrap(err, "decode vault")
		}
		vaults[i] = &v
	}
	return vaults, nil
}

func (n *node) proposal(addr quorum.Address) (*vault.Proposal, error) {
	models, err := n.app.Query("/proposals", quorum.KeyQueryMod, addr)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "proposal %s", addr)
	}
	var p vault.Proposal
	if err := quorum.Unmarshal(models[0].Value, &p); err != nil {
		return nil, errors.Wrap(err, "decode proposal")
	}
	return &p, nil
}

// proposals returns all proposals of a vault ordered by their ordinal.
func (n *node) proposals(vaultAddr quorum.Address) ([]*vault.Proposal, error) {
	models, err := n.app.Query("/proposals/vault", quorum.KeyQueryMod, vaultAddr)
	if err != nil {
		return nil, err
	}
	ps := make([]*vault.Proposal, len(models))
	for i, m := range models {
		var p vault.Proposal
		if err := quorum.Unmarshal(m.Value, &p); err != nil {
			return nil, errors.Wrap(err, "decode proposal")
		}
		ps[i] = &p
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].Ordinal < ps[j].Ordinal })
	return ps, nil
}
