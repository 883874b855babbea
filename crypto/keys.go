package crypto

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// ExtensionName is used for the Conditions we get from signatures
const ExtensionName = "sigs"

// PubKey represents a crypto public key we use
type PubKey interface {
	Verify(message []byte, sig *Signature) bool
	Condition() quorum.Condition
}

// Signer is the functionality we use from a private key
// No serializing to support hardware devices as well.
type Signer interface {
	Sign(message []byte) (*Signature, error)
	PublicKey() *PublicKey
}

// PublicKey is the public half of an ed25519 key pair.
type PublicKey struct {
	Ed25519 []byte `protobuf:"bytes,1,opt,name=ed25519,proto3" json:"ed25519,omitempty"`
}

func (m *PublicKey) Reset()         { *m = PublicKey{} }
func (m *PublicKey) String() string { return proto.CompactTextString(m) }
func (*PublicKey) ProtoMessage()    {}

// GetEd25519 returns the raw key bytes. It is safe to call on a nil key.
func (m *PublicKey) GetEd25519() []byte {
	if m == nil {
		return nil
	}
	return m.Ed25519
}

// Address is the address of the key condition, the identity used in vault
// owner sets.
func (m *PublicKey) Address() quorum.Address {
	c := m.Condition()
	if c == nil {
		return nil
	}
	return c.Address()
}

// Validate returns an error if the key has the wrong size.
func (m *PublicKey) Validate() error {
	if n := len(m.GetEd25519()); n != ed25519PublicKeySize {
		return errors.Wrapf(errors.ErrInvalidInput, "ed25519 public key must be %d bytes, got %d", ed25519PublicKeySize, n)
	}
	return nil
}

// PrivateKey is the secret half of an ed25519 key pair.
type PrivateKey struct {
	Ed25519 []byte `protobuf:"bytes,1,opt,name=ed25519,proto3" json:"ed25519,omitempty"`
}

func (m *PrivateKey) Reset()         { *m = PrivateKey{} }
func (m *PrivateKey) String() string { return "PrivateKey{***}" }
func (*PrivateKey) ProtoMessage()    {}

func (m *PrivateKey) GetEd25519() []byte {
	if m == nil {
		return nil
	}
	return m.Ed25519
}

// Signature is an ed25519 signature.
type Signature struct {
	Ed25519 []byte `protobuf:"bytes,1,opt,name=ed25519,proto3" json:"ed25519,omitempty"`
}

func (m *Signature) Reset()         { *m = Signature{} }
func (m *Signature) String() string { return proto.CompactTextString(m) }
func (*Signature) ProtoMessage()    {}

func (m *Signature) GetEd25519() []byte {
	if m == nil {
		return nil
	}
	return m.Ed25519
}
