package orm

import (
	"bytes"
	"sort"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum/errors"
)

// MultiRef is a sorted set of primary keys. A non unique index stores one
// under every indexed value.
type MultiRef struct {
	Refs [][]byte `protobuf:"bytes,1,rep,name=refs,proto3" json:"refs,omitempty"`
}

func (m *MultiRef) Reset()         { *m = MultiRef{} }
func (m *MultiRef) String() string { return proto.CompactTextString(m) }
func (*MultiRef) ProtoMessage()    {}

var _ Persistent = (*MultiRef)(nil)

func NewMultiRef(refs ...[]byte) (*MultiRef, error) {
	m := new(MultiRef)
	for _, r := range refs {
		if err := m.Add(r); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Add inserts ref keeping the set sorted. Adding a present ref fails with
// ErrDuplicate.
func (m *MultiRef) Add(ref []byte) error {
	i, found := m.search(ref)
	if found {
		return errors.Wrap(errors.ErrDuplicate, "reference already in set")
	}
	m.Refs = append(m.Refs, nil)
	copy(m.Refs[i+1:], m.Refs[i:])
	m.Refs[i] = ref
	return nil
}

// Remove fails with ErrNotFound when ref is not in the set.
func (m *MultiRef) Remove(ref []byte) error {
	i, found := m.search(ref)
	if !found {
		return errors.Wrap(errors.ErrNotFound, "reference not in set")
	}
	m.Refs = append(m.Refs[:i], m.Refs[i+1:]...)
	return nil
}

// search returns the position of ref, or where it would be inserted.
func (m *MultiRef) search(ref []byte) (int, bool) {
	i := sort.Search(len(m.Refs), func(i int) bool {
		return bytes.Compare(m.Refs[i], ref) >= 0
	})
	return i, i < len(m.Refs) && bytes.Equal(m.Refs[i], ref)
}

func (m *MultiRef) Validate() error {
	if len(m.Refs) == 0 {
		return errors.Wrap(errors.ErrEmpty, "no references")
	}
	return nil
}
