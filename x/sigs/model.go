package sigs

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
)

const BucketName = "sigs"

// UserData is stored per signer. Sequence is the value the next signature
// of this key must carry.
type UserData struct {
	Pubkey   *crypto.PublicKey `protobuf:"bytes,1,opt,name=pubkey,proto3" json:"pubkey,omitempty"`
	Sequence int64             `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence,omitempty"`
}

func (m *UserData) Reset()         { *m = UserData{} }
func (m *UserData) String() string { return proto.CompactTextString(m) }
func (*UserData) ProtoMessage()    {}

var _ orm.Persistent = (*UserData)(nil)

func (u *UserData) Validate() error {
	if u.Pubkey == nil {
		return errors.Field("Pubkey", errors.ErrEmpty, "required")
	}
	if err := u.Pubkey.Validate(); err != nil {
		return errors.Field("Pubkey", err, "invalid")
	}
	if u.Sequence < 0 {
		return errors.Field("Sequence", ErrInvalidSequence, "negative")
	}
	return nil
}

// Clients decode the sequence as a float64, so it must stay within the
// exactly representable integers.
const maxSequenceValue = (1 << 53) - 1

// CheckAndIncrementSequence consumes the expected sequence. Any other value
// is rejected.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "want %d, got %d", u.Sequence, expected)
	}
	next := u.Sequence + 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// AsUser returns the UserData held by obj or nil.
func AsUser(obj orm.Object) *UserData {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*UserData)
}

// NewUser returns a fresh account for pubkey, stored under its address.
func NewUser(pubkey *crypto.PublicKey) orm.Object {
	var key quorum.Address
	if pubkey != nil {
		key = pubkey.Address()
	}
	return orm.NewSimpleObj(key, &UserData{Pubkey: pubkey})
}

// Bucket stores UserData by signer address.
type Bucket struct {
	orm.Bucket
}

func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName, NewUser(nil)),
	}
}

// GetOrCreate loads the account of pubkey. An unknown key gets a new
// account with sequence zero, which is saved only by the caller.
func (b Bucket) GetOrCreate(db quorum.KVStore, pubkey *crypto.PublicKey) (orm.Object, error) {
	obj, err := b.Get(db, pubkey.Address())
	if err == nil && obj == nil {
		obj = NewUser(pubkey)
	}
	return obj, err
}
