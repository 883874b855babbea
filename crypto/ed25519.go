package crypto

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"golang.org/x/crypto/ed25519"
)

const ed25519PublicKeySize = ed25519.PublicKeySize

var _ PubKey = (*PublicKey)(nil)

// Verify verifies the signature was created with this message and public key
func (p *PublicKey) Verify(message []byte, sig *Signature) bool {
	key := p.GetEd25519()
	if len(key) != ed25519.PublicKeySize {
		return false
	}
	raw := sig.GetEd25519()
	if len(raw) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(key), message, raw)
}

// Condition encodes the public key into a quorum condition
func (p *PublicKey) Condition() quorum.Condition {
	key := p.GetEd25519()
	if len(key) == 0 {
		return nil
	}
	return quorum.NewCondition(ExtensionName, "ed25519", key)
}

var _ Signer = (*PrivateKey)(nil)

// Sign returns a matching signature for this private key
func (p *PrivateKey) Sign(message []byte) (*Signature, error) {
	key := p.GetEd25519()
	if len(key) != ed25519.PrivateKeySize {
		return nil, errors.Wrap(errors.ErrInvalidState, "missing ed25519 private key")
	}
	bz := ed25519.Sign(ed25519.PrivateKey(key), message)
	return &Signature{Ed25519: bz}, nil
}

// PublicKey returns the corresponding PublicKey
func (p *PrivateKey) PublicKey() *PublicKey {
	key := p.GetEd25519()
	if len(key) != ed25519.PrivateKeySize {
		return &PublicKey{}
	}
	pub := ed25519.PrivateKey(key).Public().(ed25519.PublicKey)
	return &PublicKey{Ed25519: pub}
}

// GenPrivKeyEd25519 returns a random new private key
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{Ed25519: priv}
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
//
// It panics if the seed is not exactly 32 bytes.
func PrivKeyEd25519FromSeed(seed []byte) *PrivateKey {
	return &PrivateKey{Ed25519: ed25519.NewKeyFromSeed(seed)}
}
