package sigs

import (
	"crypto/sha512"
	"encoding/binary"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/errors"
)

// SignCodeV1 prefixes every signed message.
var SignCodeV1 = []byte{0, 0xCA, 0xFE, 0}

// VerifyTxSignatures verifies every signature of tx and increments the
// sequence of each signer. It returns the conditions of all signers.
func VerifyTxSignatures(db quorum.KVStore, tx SignedTx, chainID string) ([]quorum.Condition, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	var signers []quorum.Condition
	for i, sig := range tx.GetSignatures() {
		signer, err := VerifySignature(db, sig, payload, chainID)
		if err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
		signers = append(signers, signer)
	}
	return signers, nil
}

// VerifySignature checks sig over payload for the sequence the signer is
// expected to use next, and stores the incremented sequence.
func VerifySignature(db quorum.KVStore, sig *StdSignature, payload []byte, chainID string) (quorum.Condition, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	if err := sig.Pubkey.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid public key")
	}

	digest, err := BuildSignBytes(payload, chainID, sig.Sequence)
	if err != nil {
		return nil, err
	}
	if !sig.Pubkey.Verify(digest, sig.Signature) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}

	bucket := NewBucket()
	obj, err := bucket.GetOrCreate(db, sig.Pubkey)
	if err != nil {
		return nil, err
	}
	user := AsUser(obj)
	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return nil, err
	}
	if err := bucket.Save(db, obj); err != nil {
		return nil, err
	}
	return sig.Pubkey.Condition(), nil
}

// BuildSignBytes returns the sha512 digest of
//
//	SignCodeV1 | len(chainID) as uint8 | chainID | seq as big endian int64 | payload
//
// which is what signers sign.
func BuildSignBytes(payload []byte, chainID string, seq int64) ([]byte, error) {
	if seq < 0 {
		return nil, errors.Wrap(ErrInvalidSequence, "negative")
	}
	if !quorum.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "chain id %q", chainID)
	}

	msg := make([]byte, 0, len(SignCodeV1)+1+len(chainID)+8+len(payload))
	msg = append(msg, SignCodeV1...)
	msg = append(msg, byte(len(chainID)))
	msg = append(msg, chainID...)
	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], uint64(seq))
	msg = append(msg, nonce[:]...)
	msg = append(msg, payload...)

	digest := sha512.Sum512(msg)
	return digest[:], nil
}

func BuildSignBytesTx(tx SignedTx, chainID string, seq int64) ([]byte, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	return BuildSignBytes(payload, chainID, seq)
}

// SignTx returns the signature of tx by signer for the given sequence.
func SignTx(signer crypto.Signer, tx SignedTx, chainID string, seq int64) (*StdSignature, error) {
	digest, err := BuildSignBytesTx(tx, chainID, seq)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(digest)
	if err != nil {
		return nil, err
	}
	return &StdSignature{
		Sequence:  seq,
		Pubkey:    signer.PublicKey(),
		Signature: sig,
	}, nil
}

// NextNonce returns the sequence the signer must use for its next
// signature. A signer that never signed starts at zero.
func NextNonce(db quorum.ReadOnlyKVStore, signer quorum.Address) (int64, error) {
	obj, err := NewBucket().Get(db, signer)
	if err != nil {
		return 0, errors.Wrap(err, "load signer")
	}
	if user := AsUser(obj); user != nil {
		return user.Sequence, nil
	}
	return 0, nil
}
