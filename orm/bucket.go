/*
Package orm stores typed objects in prefixed sections of a KVStore.

A Bucket holds objects of a single type under a name prefix, keyed by a
primary key. Secondary indexes, unique or not, are kept up to date on every
Save and Delete and can be queried by value. Buckets and their indexes can
be exposed through a quorum.QueryRouter.
*/
package orm

import (
	"fmt"
	"regexp"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Bucket is a prefixed subspace of the state holding objects shaped like
// its prototype. Embed it in a type safe wrapper.
type Bucket struct {
	name    string
	prefix  []byte
	proto   Cloneable
	indexes map[string]Index
}

var _ quorum.QueryHandler = Bucket{}

// NewBucket panics when name is not 3 to 10 lowercase letters or
// underscores.
func NewBucket(name string, proto Cloneable) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("invalid bucket name %q", name))
	}
	return Bucket{
		name:   name,
		prefix: []byte(name + ":"),
		proto:  proto,
	}
}

func (b Bucket) Name() string {
	return b.name
}

// Register exposes the bucket under "/<name>" and every index under
// "/<name>/<index>". An empty name defaults to the bucket name.
func (b Bucket) Register(name string, r quorum.QueryRouter) {
	if name == "" {
		name = b.name
	}
	root := "/" + name
	r.Register(root, b)
	for indexName, idx := range b.indexes {
		r.Register(root+"/"+indexName, idx)
	}
}

// Query supports KeyQueryMod, returning at most one model, and
// PrefixQueryMod.
func (b Bucket) Query(db quorum.ReadOnlyKVStore, mod string, data []byte) ([]quorum.Model, error) {
	switch mod {
	case quorum.KeyQueryMod:
		key := b.DBKey(data)
		value, err := db.Get(key)
		if err != nil || value == nil {
			return nil, err
		}
		return []quorum.Model{quorum.Pair(key, value)}, nil
	case quorum.PrefixQueryMod:
		return queryPrefix(db, b.DBKey(data))
	default:
		return nil, errors.Wrapf(errors.ErrHuman, "unsupported query mod %q", mod)
	}
}

// DBKey returns a new slice holding the bucket prefix followed by key.
func (b Bucket) DBKey(key []byte) []byte {
	k := make([]byte, 0, len(b.prefix)+len(key))
	return append(append(k, b.prefix...), key...)
}

// Get returns nil without an error when nothing is stored under key.
func (b Bucket) Get(db quorum.ReadOnlyKVStore, key []byte) (Object, error) {
	raw, err := db.Get(b.DBKey(key))
	if err != nil || raw == nil {
		return nil, err
	}
	return b.Parse(key, raw)
}

func (b Bucket) Has(db quorum.ReadOnlyKVStore, key []byte) (bool, error) {
	if len(key) == 0 {
		return false, errors.Wrap(errors.ErrInvalidInput, "empty key")
	}
	return db.Has(b.DBKey(key))
}

// Parse decodes a stored value into a new object with the given key.
func (b Bucket) Parse(key, value []byte) (Object, error) {
	obj := b.proto.Clone()
	if err := quorum.Unmarshal(value, obj.Value()); err != nil {
		return nil, err
	}
	obj.SetKey(key)
	return obj, nil
}

// Save validates obj, updates the indexes and writes it.
func (b Bucket) Save(db quorum.KVStore, obj Object) error {
	if err := obj.Validate(); err != nil {
		return err
	}
	raw, err := quorum.Marshal(obj.Value())
	if err != nil {
		return err
	}
	if err := b.updateIndexes(db, obj.Key(), obj); err != nil {
		return err
	}
	return db.Set(b.DBKey(obj.Key()), raw)
}

func (b Bucket) Delete(db quorum.KVStore, key []byte) error {
	if err := b.updateIndexes(db, key, nil); err != nil {
		return err
	}
	return db.Delete(b.DBKey(key))
}

func (b Bucket) updateIndexes(db quorum.KVStore, key []byte, next Object) error {
	if len(b.indexes) == 0 {
		return nil
	}
	prev, err := b.Get(db, key)
	if err != nil {
		return err
	}
	if prev == nil && next == nil {
		return nil
	}
	for _, idx := range b.indexes {
		if err := idx.Update(db, prev, next); err != nil {
			return err
		}
	}
	return nil
}

// WithIndex returns a copy of the bucket with an index over one value per
// object. It panics when the name is taken.
func (b Bucket) WithIndex(name string, indexer Indexer, unique bool) Bucket {
	return b.WithMultiKeyIndex(name, singleValue(indexer), unique)
}

// WithMultiKeyIndex returns a copy of the bucket with an index that may
// reference an object under many values.
func (b Bucket) WithMultiKeyIndex(name string, indexer MultiKeyIndexer, unique bool) Bucket {
	if _, ok := b.indexes[name]; ok {
		panic(fmt.Sprintf("index %q registered twice", name))
	}
	indexes := make(map[string]Index, len(b.indexes)+1)
	for n, idx := range b.indexes {
		indexes[n] = idx
	}
	indexes[name] = NewMultiKeyIndex(b.name+"_"+name, indexer, unique, b.DBKey)
	b.indexes = indexes
	return b
}

// GetIndexed returns the objects the named index holds under value.
func (b Bucket) GetIndexed(db quorum.ReadOnlyKVStore, name string, value []byte) ([]Object, error) {
	idx, ok := b.indexes[name]
	if !ok {
		return nil, errors.Wrap(ErrInvalidIndex, name)
	}
	refs, err := idx.Keys(db, value)
	if err != nil {
		return nil, err
	}
	var objs []Object
	for _, key := range refs {
		obj, err := b.Get(db, key)
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}
	return objs, nil
}
