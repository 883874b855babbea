package vault

import (
	"fmt"
	"reflect"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/app"
	"github.com/iov-one/quorum/errors"
)

// InstructionRouter dispatches the instructions of an executed proposal.
// Every route is bound to the message type its instruction data is decoded
// into.
type InstructionRouter struct {
	routes *app.Router
	msgs   map[string]reflect.Type
}

// NewInstructionRouter returns a router without any routes.
func NewInstructionRouter() *InstructionRouter {
	return &InstructionRouter{
		routes: app.NewRouter(),
		msgs:   make(map[string]reflect.Type),
	}
}

// Handle registers h for instructions targeting the path of given message.
// The message must be a pointer. This function panics if the path is
// already registered.
func (r *InstructionRouter) Handle(msg quorum.Msg, h quorum.Handler) {
	t := reflect.TypeOf(msg)
	if t.Kind() != reflect.Ptr {
		panic(fmt.Sprintf("instruction message must be a pointer, got %T", msg))
	}
	path := msg.Path()
	r.routes.Handle(path, h)
	r.msgs[path] = t.Elem()
}

// Has returns true if instructions with given target can be executed.
func (r *InstructionRouter) Has(target string) bool {
	return r.routes.Has(target)
}

// New returns a zero value message of the type registered for given
// target.
func (r *InstructionRouter) New(target string) (quorum.Msg, error) {
	t, ok := r.msgs[target]
	if !ok {
		return nil, errors.Wrapf(app.ErrNoSuchPath, "instruction target %q", target)
	}
	return reflect.New(t).Interface().(quorum.Msg), nil
}

// Decode returns the message carried by given instruction.
func (r *InstructionRouter) Decode(ins *Instruction) (quorum.Msg, error) {
	msg, err := r.New(ins.Target)
	if err != nil {
		return nil, err
	}
	if err := quorum.Unmarshal(ins.Data, msg); err != nil {
		return nil, errors.Wrapf(err, "instruction %q data", ins.Target)
	}
	return msg, nil
}

// Check runs the check of the handler given instruction targets.
func (r *InstructionRouter) Check(ctx quorum.Context, db quorum.KVStore, ins *Instruction) (*quorum.CheckResult, error) {
	tx, err := r.tx(ins)
	if err != nil {
		return nil, err
	}
	return r.routes.Check(ctx, db, tx)
}

// Deliver runs the handler given instruction targets.
func (r *InstructionRouter) Deliver(ctx quorum.Context, db quorum.KVStore, ins *Instruction) (*quorum.DeliverResult, error) {
	tx, err := r.tx(ins)
	if err != nil {
		return nil, err
	}
	return r.routes.Deliver(ctx, db, tx)
}

func (r *InstructionRouter) tx(ins *Instruction) (*InstructionTx, error) {
	msg, err := r.Decode(ins)
	if err != nil {
		return nil, err
	}
	return &InstructionTx{msg: msg, accounts: ins.Accounts}, nil
}

// InstructionTx is the transaction an instruction handler receives.
type InstructionTx struct {
	msg      quorum.Msg
	accounts []*AccountMeta
}

var _ quorum.Tx = (*InstructionTx)(nil)

func (tx *InstructionTx) GetMsg() (quorum.Msg, error) {
	return tx.msg, nil
}

// Accounts returns the accounts the instruction declared.
func (tx *InstructionTx) Accounts() []*AccountMeta {
	return tx.accounts
}

// NewInstruction serializes given message into an instruction targeting its
// path.
func NewInstruction(msg quorum.Msg, accounts ...*AccountMeta) (*Instruction, error) {
	raw, err := quorum.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return &Instruction{
		Target:   msg.Path(),
		Accounts: accounts,
		Data:     raw,
	}, nil
}
