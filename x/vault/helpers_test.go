package vault

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/app"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/store"
	"github.com/iov-one/quorum/x"
	"github.com/stretchr/testify/require"
)

// recordingSink keeps all emitted events in memory.
type recordingSink struct {
	events []Event
	err    error
}

func (s *recordingSink) Emit(ctx quorum.Context, e Event) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) kinds() []string {
	kinds := make([]string, len(s.events))
	for i, e := range s.events {
		kinds[i] = e.Kind
	}
	return kinds
}

// env is a vault application with an in memory store. Every delivered
// message is one atomic step, the same way the application runs it.
type env struct {
	t            testing.TB
	db           quorum.CacheableKVStore
	auth         *quorumtest.CtxAuth
	router       *app.Router
	instructions *InstructionRouter
	sink         *recordingSink
	now          time.Time
}

func newEnv(t testing.TB) *env {
	auth := &quorumtest.CtxAuth{Key: "auth"}
	chain := x.ChainAuth(auth, Authenticate{})

	instructions := NewInstructionRouter()
	RegisterInstructionRoutes(instructions, chain)

	sink := &recordingSink{}
	router := app.NewRouter()
	RegisterRoutes(router, chain, instructions, sink)

	return &env{
		t:            t,
		db:           store.MemStore(),
		auth:         auth,
		router:       router,
		instructions: instructions,
		sink:         sink,
		now:          time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
	}
}

func (e *env) ctx(signers ...quorum.Condition) quorum.Context {
	ctx := quorum.WithBlockTime(context.Background(), e.now)
	return e.auth.SetConditions(ctx, signers...)
}

func (e *env) deliver(msg quorum.Msg, signers ...quorum.Condition) (*quorum.DeliverResult, error) {
	cache := e.db.CacheWrap()
	res, err := e.router.Deliver(e.ctx(signers...), cache, &quorum.MsgTx{Msg: msg})
	if err != nil {
		cache.Discard()
		return nil, err
	}
	require.NoError(e.t, cache.Write())
	return res, nil
}

func (e *env) check(msg quorum.Msg, signers ...quorum.Condition) error {
	cache := e.db.CacheWrap()
	defer cache.Discard()
	_, err := e.router.Check(e.ctx(signers...), cache, &quorum.MsgTx{Msg: msg})
	return err
}

// createVault creates a vault owned by given conditions.
func (e *env) createVault(owners []quorum.Condition, threshold uint32) quorum.Address {
	e.t.Helper()
	res, err := e.deliver(&CreateVaultMsg{
		IdentityKey: quorumtest.NewCondition(),
		Owners:      addresses(owners),
		Threshold:   threshold,
	})
	require.NoError(e.t, err)
	return res.Data
}

func (e *env) propose(vault quorum.Address, proposer quorum.Condition, ins ...*Instruction) quorum.Address {
	e.t.Helper()
	res, err := e.deliver(&CreateProposalMsg{Vault: vault, Instructions: ins}, proposer)
	require.NoError(e.t, err)
	return res.Data
}

func (e *env) approve(proposal quorum.Address, owner quorum.Condition) error {
	_, err := e.deliver(&ApproveMsg{Proposal: proposal}, owner)
	return err
}

func (e *env) execute(proposal quorum.Address, executor quorum.Condition, accounts ...quorum.Address) (*quorum.DeliverResult, error) {
	return e.deliver(&ExecuteMsg{Proposal: proposal, RemainingAccounts: accounts}, executor)
}

func (e *env) vault(addr quorum.Address) *Vault {
	e.t.Helper()
	v, err := NewVaultBucket().GetVault(e.db, addr)
	require.NoError(e.t, err)
	return v
}

func (e *env) proposal(addr quorum.Address) *Proposal {
	e.t.Helper()
	p, err := NewProposalBucket().GetProposal(e.db, addr)
	require.NoError(e.t, err)
	return p
}

// handle registers a mock handler on the instruction router under given
// path and returns it.
func (e *env) handle(path string, h *quorumtest.Handler) *quorumtest.Handler {
	e.instructions.Handle(&quorumtest.Msg{RoutePath: path}, h)
	return h
}

func conditions(n int) []quorum.Condition {
	conds := make([]quorum.Condition, n)
	for i := range conds {
		conds[i] = quorumtest.NewCondition()
	}
	return conds
}

func addresses(conds []quorum.Condition) []quorum.Address {
	addrs := make([]quorum.Address, len(conds))
	for i, c := range conds {
		addrs[i] = c.Address()
	}
	return addrs
}

// instruction returns an instruction dispatched to the mock handler
// registered under given path.
func instruction(t testing.TB, path string, accounts ...*AccountMeta) *Instruction {
	t.Helper()
	ins, err := NewInstruction(&quorumtest.Msg{RoutePath: path, Payload: []byte(path)}, accounts...)
	require.NoError(t, err)
	return ins
}

func mustInstruction(t testing.TB, msg quorum.Msg) *Instruction {
	t.Helper()
	ins, err := NewInstruction(msg)
	require.NoError(t, err)
	return ins
}
