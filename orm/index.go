package orm

import (
	"bytes"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Index is a secondary index over the objects of a bucket.
type Index interface {
	quorum.QueryHandler

	Name() string

	// Update moves the references of one object from the values of its
	// previous version to the values of the new one. A nil prev is an
	// insert, a nil next is a delete. Both versions must share the key.
	Update(db quorum.KVStore, prev Object, next Object) error

	// Keys returns the primary keys of all objects indexed under value.
	Keys(db quorum.ReadOnlyKVStore, value []byte) ([][]byte, error)
}

// Indexer returns the value an object is indexed under. A nil value leaves
// the object out of the index.
type Indexer func(Object) ([]byte, error)

// MultiKeyIndexer returns all values an object is indexed under.
type MultiKeyIndexer func(Object) ([][]byte, error)

const indexPrefix = "_i."

// refIndex keeps, under every indexed value, the primary keys of the
// objects carrying it. A unique index stores the single raw key, a non
// unique index a MultiRef.
type refIndex struct {
	name   string
	prefix []byte
	unique bool
	values MultiKeyIndexer
	dbKey  func([]byte) []byte
}

var _ Index = refIndex{}

// NewMultiKeyIndex returns an index over the values computed by indexer.
// dbKey turns a primary key into the key the object is stored under.
func NewMultiKeyIndex(name string, indexer MultiKeyIndexer, unique bool, dbKey func([]byte) []byte) Index {
	return refIndex{
		name:   name,
		prefix: []byte(indexPrefix + name + ":"),
		unique: unique,
		values: indexer,
		dbKey:  dbKey,
	}
}

func singleValue(indexer Indexer) MultiKeyIndexer {
	return func(obj Object) ([][]byte, error) {
		v, err := indexer(obj)
		if err != nil || v == nil {
			return nil, err
		}
		return [][]byte{v}, nil
	}
}

func (i refIndex) Name() string {
	return i.name
}

func (i refIndex) key(value []byte) []byte {
	k := make([]byte, 0, len(i.prefix)+len(value))
	return append(append(k, i.prefix...), value...)
}

func (i refIndex) Update(db quorum.KVStore, prev Object, next Object) error {
	var pk []byte
	switch {
	case prev == nil && next == nil:
		return errors.Wrap(errors.ErrHuman, "index update without an object")
	case prev == nil:
		pk = next.Key()
	case next == nil:
		pk = prev.Key()
	case !bytes.Equal(prev.Key(), next.Key()):
		return errors.Wrap(errors.ErrInvalidState, "primary key cannot change")
	default:
		pk = next.Key()
	}

	before, err := i.indexed(prev)
	if err != nil {
		return err
	}
	after, err := i.indexed(next)
	if err != nil {
		return err
	}
	for _, v := range subtract(after, before) {
		if err := i.insert(db, v, pk); err != nil {
			return err
		}
	}
	for _, v := range subtract(before, after) {
		if err := i.remove(db, v, pk); err != nil {
			return err
		}
	}
	return nil
}

// indexed returns the non empty values obj is indexed under.
func (i refIndex) indexed(obj Object) ([][]byte, error) {
	if obj == nil {
		return nil, nil
	}
	values, err := i.values(obj)
	if err != nil {
		return nil, err
	}
	res := values[:0:0]
	for _, v := range values {
		if len(v) > 0 {
			res = append(res, v)
		}
	}
	return res, nil
}

func (i refIndex) Keys(db quorum.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	raw, err := db.Get(i.key(value))
	if err != nil || raw == nil {
		return nil, err
	}
	if i.unique {
		return [][]byte{raw}, nil
	}
	var refs MultiRef
	if err := quorum.Unmarshal(raw, &refs); err != nil {
		return nil, err
	}
	return refs.Refs, nil
}

func (i refIndex) save(db quorum.KVStore, value []byte, refs [][]byte) error {
	key := i.key(value)
	switch {
	case len(refs) == 0:
		return db.Delete(key)
	case i.unique:
		return db.Set(key, refs[0])
	}
	raw, err := quorum.Marshal(&MultiRef{Refs: refs})
	if err != nil {
		return err
	}
	return db.Set(key, raw)
}

func (i refIndex) insert(db quorum.KVStore, value, pk []byte) error {
	refs, err := i.Keys(db, value)
	if err != nil {
		return err
	}
	if i.unique && len(refs) > 0 {
		return errors.Wrapf(errors.ErrDuplicate, "index %s", i.name)
	}
	set := MultiRef{Refs: refs}
	if err := set.Add(pk); err != nil {
		return err
	}
	return i.save(db, value, set.Refs)
}

func (i refIndex) remove(db quorum.KVStore, value, pk []byte) error {
	refs, err := i.Keys(db, value)
	if err != nil {
		return err
	}
	set := MultiRef{Refs: refs}
	if err := set.Remove(pk); err != nil {
		return errors.Wrapf(err, "index %s", i.name)
	}
	return i.save(db, value, set.Refs)
}

// Query with KeyQueryMod returns the objects indexed under data.
func (i refIndex) Query(db quorum.ReadOnlyKVStore, mod string, data []byte) ([]quorum.Model, error) {
	if mod != quorum.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrHuman, "unsupported query mod %q", mod)
	}
	refs, err := i.Keys(db, data)
	if err != nil {
		return nil, err
	}
	var res []quorum.Model
	for _, ref := range refs {
		key := i.dbKey(ref)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		res = append(res, quorum.Pair(key, value))
	}
	return res, nil
}

// subtract returns the elements of a missing from b.
func subtract(a, b [][]byte) [][]byte {
	var res [][]byte
	for _, x := range a {
		if !contains(b, x) {
			res = append(res, x)
		}
	}
	return res
}

func contains(set [][]byte, x []byte) bool {
	for _, y := range set {
		if bytes.Equal(x, y) {
			return true
		}
	}
	return false
}
