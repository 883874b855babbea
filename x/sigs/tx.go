package sigs

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/errors"
)

// SignedTx represents a transaction that contains signatures,
// which can be verified by the sigs.Decorator
type SignedTx interface {
	quorum.Tx

	// GetSignBytes returns the canonical byte representation of the Msg.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns the signature of signers who signed the Msg.
	GetSignatures() []*StdSignature
}

// StdSignature is a signature of a transaction together with the public key
// that produced it and the signer sequence it was made for.
type StdSignature struct {
	Sequence  int64             `protobuf:"varint,1,opt,name=sequence,proto3" json:"sequence,omitempty"`
	Pubkey    *crypto.PublicKey `protobuf:"bytes,2,opt,name=pubkey,proto3" json:"pubkey,omitempty"`
	Signature *crypto.Signature `protobuf:"bytes,3,opt,name=signature,proto3" json:"signature,omitempty"`
}

func (m *StdSignature) Reset()         { *m = StdSignature{} }
func (m *StdSignature) String() string { return proto.CompactTextString(m) }
func (*StdSignature) ProtoMessage()    {}

// Validate ensures the StdSignature meets basic standards
func (s *StdSignature) Validate() error {
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if s.Pubkey == nil {
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	}
	if s.Signature == nil {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return nil
}

// StdTx is a transaction carrying a single message signed by any number of
// keys. The signed bytes are the message path followed by the serialized
// message, so that equal payloads of different messages never share a
// signature.
type StdTx struct {
	Msg        quorum.Msg
	Signatures []*StdSignature
}

var _ SignedTx = (*StdTx)(nil)

// NewStdTx returns an unsigned transaction for given message.
func NewStdTx(msg quorum.Msg) *StdTx {
	return &StdTx{Msg: msg}
}

func (tx *StdTx) GetMsg() (quorum.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrInvalidMsg, "no message")
	}
	return tx.Msg, nil
}

func (tx *StdTx) GetSignatures() []*StdSignature {
	return tx.Signatures
}

func (tx *StdTx) GetSignBytes() ([]byte, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	bz, err := quorum.Marshal(msg)
	if err != nil {
		return nil, err
	}
	path := msg.Path()
	out := make([]byte, 0, len(path)+1+len(bz))
	out = append(out, path...)
	out = append(out, 0)
	return append(out, bz...), nil
}

// Sign appends a signature of given signer, made for the given sequence.
func (tx *StdTx) Sign(signer crypto.Signer, chainID string, seq int64) error {
	sig, err := SignTx(signer, tx, chainID, seq)
	if err != nil {
		return err
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}
