package orm

import (
	"reflect"

	"github.com/iov-one/quorum/errors"
)

// SimpleObj pairs a primary key with its value. Buckets use an instance
// with a nil key as the prototype of the objects they load.
type SimpleObj struct {
	key   []byte
	value Persistent
}

var _ Object = (*SimpleObj)(nil)

func NewSimpleObj(key []byte, value Persistent) *SimpleObj {
	return &SimpleObj{key: key, value: value}
}

func (o SimpleObj) Key() []byte {
	return o.key
}

func (o *SimpleObj) SetKey(key []byte) {
	o.key = key
}

func (o SimpleObj) Value() Persistent {
	return o.value
}

// Validate requires a key and a value and then validates the value.
func (o SimpleObj) Validate() error {
	switch {
	case len(o.key) == 0:
		return errors.Field("Key", errors.ErrEmpty, "missing key")
	case o.value == nil:
		return errors.Field("Value", errors.ErrEmpty, "missing value")
	}
	return o.value.Validate()
}

// Clone returns an object with a copy of the key and a new zero value of
// the same type.
func (o *SimpleObj) Clone() Object {
	value := reflect.New(reflect.TypeOf(o.value).Elem()).Interface().(Persistent)
	var key []byte
	if len(o.key) > 0 {
		key = append(key, o.key...)
	}
	return &SimpleObj{key: key, value: value}
}
