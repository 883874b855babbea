package orm

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum/errors"
)

// member is a model used only in tests. It belongs to a set of groups.
type member struct {
	Name   string   `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Groups []string `protobuf:"bytes,2,rep,name=groups,proto3" json:"groups,omitempty"`
}

func (m *member) Reset()         { *m = member{} }
func (m *member) String() string { return proto.CompactTextString(m) }
func (*member) ProtoMessage()    {}

func (m *member) Validate() error {
	if m.Name == "" {
		return errors.Wrap(errors.ErrEmpty, "name")
	}
	return nil
}

func newMember(key, name string, groups ...string) Object {
	return NewSimpleObj([]byte(key), &member{Name: name, Groups: groups})
}

func byName(obj Object) ([]byte, error) {
	m, ok := obj.Value().(*member)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidModel, "%T", obj.Value())
	}
	return []byte(m.Name), nil
}

func byGroup(obj Object) ([][]byte, error) {
	m, ok := obj.Value().(*member)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidModel, "%T", obj.Value())
	}
	keys := make([][]byte, len(m.Groups))
	for i, g := range m.Groups {
		keys[i] = []byte(g)
	}
	return keys, nil
}
