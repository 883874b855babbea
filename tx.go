package quorum

import (
	"reflect"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum/errors"
)

// Msg is message for the vault to take an action
// (Make a state transition). It is just the request, and
// must be validated by the Handlers. All authentication
// information is in the context.
type Msg interface {
	proto.Message

	// Return the message path.
	// This is used by the Router to locate the proper Handler.
	// Msg should be created alongside the Handler that corresponds to them.
	//
	// Must be of the form extension/action, ie vault/approve
	Path() string

	// Validate performs a sanity check of the message content. It does
	// not access the state.
	Validate() error
}

// Tx represent the data sent from the user to the vault.
// It includes the actual message. Authentication is provided by the
// transport and is attached to the context before the Tx is handled.
type Tx interface {
	// GetMsg returns the action we wish to communicate
	GetMsg() (Msg, error)
}

// GetPath returns the path of the message, or (missing) if no message
func GetPath(tx Tx) string {
	msg, err := tx.GetMsg()
	if err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// LoadMsg extracts the message represented by given transaction into given
// destination. Before returning message validation method is called.
func LoadMsg(tx Tx, destination Msg) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get transaction message")
	}
	if msg == nil {
		return errors.Wrap(errors.ErrInvalidMsg, "no message")
	}

	msgVal := reflect.ValueOf(msg)
	destVal := reflect.ValueOf(destination)
	if msgVal.Type() != destVal.Type() {
		return errors.Wrapf(errors.ErrInvalidType, "want %T message, got %T", destination, msg)
	}
	reflect.Indirect(destVal).Set(reflect.Indirect(msgVal))

	if err := destination.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}
	return nil
}

// MsgTx is the simplest Tx implementation, carrying a single message.
type MsgTx struct {
	Msg Msg
}

var _ Tx = (*MsgTx)(nil)

// GetMsg returns the wrapped message.
func (tx *MsgTx) GetMsg() (Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrInvalidMsg, "no message")
	}
	return tx.Msg, nil
}

// Marshal serializes given protobuf message.
func Marshal(m proto.Message) ([]byte, error) {
	raw, err := proto.Marshal(m)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "cannot marshal %T: %s", m, err)
	}
	return raw, nil
}

// Unmarshal loads serialized protobuf message into given destination.
func Unmarshal(raw []byte, dest proto.Message) error {
	if err := proto.Unmarshal(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "cannot unmarshal %T: %s", dest, err)
	}
	return nil
}
