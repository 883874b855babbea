package store

import (
	"github.com/iov-one/quorum/errors"
)

// SliceIterator iterates over a preloaded list of models.
type SliceIterator struct {
	models []Model
	pos    int
}

var _ Iterator = (*SliceIterator)(nil)

// NewSliceIterator returns an iterator over models in the given order.
func NewSliceIterator(models []Model) *SliceIterator {
	return &SliceIterator{models: models}
}

func (s *SliceIterator) Valid() bool {
	return s.pos < len(s.models)
}

// Next returns an error when the iterator is already exhausted.
func (s *SliceIterator) Next() error {
	if !s.Valid() {
		return errors.Wrap(errors.ErrDatabase, "iterator exhausted")
	}
	s.pos++
	return nil
}

func (s *SliceIterator) Key() []byte {
	return s.at().Key
}

func (s *SliceIterator) Value() []byte {
	return s.at().Value
}

func (s *SliceIterator) at() Model {
	if !s.Valid() {
		panic("iterator exhausted")
	}
	return s.models[s.pos]
}

func (s *SliceIterator) Close() {
	s.models = nil
}

// EmptyKVStore holds nothing and ignores writes. It is the bottom layer of
// MemStore.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

func (EmptyKVStore) Get(key []byte) ([]byte, error) { return nil, nil }
func (EmptyKVStore) Has(key []byte) (bool, error)   { return false, nil }
func (EmptyKVStore) Set(key, value []byte) error    { return nil }
func (EmptyKVStore) Delete(key []byte) error        { return nil }

func (EmptyKVStore) Iterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

func (EmptyKVStore) ReverseIterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

func (e EmptyKVStore) NewBatch() Batch {
	return NewNonAtomicBatch(e)
}

// op is a single recorded write. A nil value means delete.
type op struct {
	key   []byte
	value []byte
}

// NonAtomicBatch records writes and replays them in order on Write. A
// failure in the middle leaves the earlier writes applied, so use it only
// over in-memory stores or stores that are committed separately.
type NonAtomicBatch struct {
	out SetDeleter
	ops []op
}

var _ Batch = (*NonAtomicBatch)(nil)

func NewNonAtomicBatch(out SetDeleter) *NonAtomicBatch {
	return &NonAtomicBatch{out: out}
}

func (b *NonAtomicBatch) Set(key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	b.ops = append(b.ops, op{key: key, value: value})
	return nil
}

func (b *NonAtomicBatch) Delete(key []byte) error {
	b.ops = append(b.ops, op{key: key})
	return nil
}

// Write replays all recorded operations and empties the batch.
func (b *NonAtomicBatch) Write() error {
	for _, o := range b.ops {
		var err error
		if o.value == nil {
			err = b.out.Delete(o.key)
		} else {
			err = b.out.Set(o.key, o.value)
		}
		if err != nil {
			return err
		}
	}
	b.ops = nil
	return nil
}

// Len returns the number of recorded operations.
func (b *NonAtomicBatch) Len() int {
	return len(b.ops)
}

func (b *NonAtomicBatch) reset() {
	b.ops = nil
}
