package orm

import (
	"github.com/gogo/protobuf/proto"
)

// Persistent is a protobuf message that can be stored in a bucket.
type Persistent interface {
	proto.Message
	// Validate returns an error when the value must not be saved.
	Validate() error
}

// Object is a value together with its primary key. The bucket prefixes the
// key when storing it.
type Object interface {
	Keyed
	Cloneable
	Validate() error
	Value() Persistent
}

type Reader interface {
	Get(db ReadOnlyKVStore, key []byte) (Object, error)
}

type Keyed interface {
	Key() []byte
	SetKey([]byte)
}

// Cloneable returns an empty object of the same type to load into.
type Cloneable interface {
	Clone() Object
}
