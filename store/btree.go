package store

import (
	"bytes"

	"github.com/google/btree"
)

// freeListSize bounds the number of btree nodes kept for reuse by nested
// caches sharing one free list.
const freeListSize = btree.DefaultFreeListSize

// BTreeCacheable gives any KVStore a btree backed CacheWrap.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

// CacheWrap returns a cache whose Write flushes into the wrapped store.
func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore, b.NewBatch(), nil)
}

// MemStore returns an empty in-memory store. Nothing is persisted.
func MemStore() CacheableKVStore {
	var e EmptyKVStore
	return NewBTreeCacheWrap(e, e.NewBatch(), nil)
}

// BTreeCacheWrap keeps pending changes in a btree on top of a read only
// parent. Reads consult the pending changes first. All changes are recorded
// in the batch as well and reach the parent only on Write.
type BTreeCacheWrap struct {
	pending *btree.BTree
	free    *btree.FreeList
	parent  ReadOnlyKVStore
	batch   Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap creates a cache over parent. Writes are flushed through
// batch. A nil free list allocates a new one.
func NewBTreeCacheWrap(parent ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(freeListSize)
	}
	return BTreeCacheWrap{
		pending: btree.NewWithFreeList(2, free),
		free:    free,
		parent:  parent,
		batch:   batch,
	}
}

// CacheWrap stacks another cache on this one, sharing the free list.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch(), b.free)
}

// NewBatch returns a batch applying its operations to this cache.
func (b BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(b)
}

// Write flushes all pending changes to the parent and empties the cache.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard drops all pending changes. The parent is left untouched.
func (b BTreeCacheWrap) Discard() {
	for b.pending.DeleteMin() != nil {
	}
	if r, ok := b.batch.(resetter); ok {
		r.reset()
	}
}

type resetter interface {
	reset()
}

func (b BTreeCacheWrap) Set(key, value []byte) error {
	b.pending.ReplaceOrInsert(&entry{key: key, value: value})
	return b.batch.Set(key, value)
}

func (b BTreeCacheWrap) Delete(key []byte) error {
	b.pending.ReplaceOrInsert(&entry{key: key, deleted: true})
	return b.batch.Delete(key)
}

func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	if e := b.lookup(key); e != nil {
		if e.deleted {
			return nil, nil
		}
		return e.value, nil
	}
	return b.parent.Get(key)
}

func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	if e := b.lookup(key); e != nil {
		return !e.deleted, nil
	}
	return b.parent.Has(key)
}

func (b BTreeCacheWrap) lookup(key []byte) *entry {
	if it := b.pending.Get(&entry{key: key}); it != nil {
		return it.(*entry)
	}
	return nil
}

// Iterator returns keys in [start, end) in ascending order, merging the
// pending changes with the parent content.
func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parent, err := b.parent.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergeIter(ascending(b.pending, start, end), parent, false)
}

// ReverseIterator returns keys in [start, end) in descending order.
func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parent, err := b.parent.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergeIter(descending(b.pending, start, end), parent, true)
}

// entry is a pending change. A deleted entry hides the key of the parent.
type entry struct {
	key     []byte
	value   []byte
	deleted bool
}

var _ btree.Item = (*entry)(nil)

func (e *entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(*entry).key) < 0
}
