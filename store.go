package quorum

// ReadOnlyKVStore reads from the state. A missing key yields a nil value and
// no error.
type ReadOnlyKVStore interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)

	// Iterator walks the keys in [start, end) in ascending order. A nil
	// bound is open. The range must not be written to while the iterator
	// is open.
	Iterator(start, end []byte) (Iterator, error)

	// ReverseIterator walks the keys in [start, end) in descending order.
	ReverseIterator(start, end []byte) (Iterator, error)
}

// SetDeleter writes to the state.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KVStore is the store every handler works on.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter
	NewBatch() Batch
}

// Batch collects writes until Write applies them.
type Batch interface {
	SetDeleter
	Write() error
}

// Iterator is a cursor over a key range. Always Close it.
//
//	it, err := db.Iterator(start, end)
//	if err != nil {
//		return err
//	}
//	defer it.Close()
//	for ; it.Valid(); err = it.Next() {
//		...
//	}
type Iterator interface {
	// Valid is false once the range is exhausted and stays false.
	Valid() bool
	Next() error
	// Key and Value panic when the iterator is not valid. The returned
	// slices must not be modified.
	Key() []byte
	Value() []byte
	Close()
}

// CacheableKVStore can stack a scratch pad on top of itself.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap holds uncommitted writes visible to its own reads. Write
// applies them to the parent store, Discard drops them. A cache can be
// wrapped again, which is how a failing instruction is rolled back while the
// rest of the transaction survives.
type KVCacheWrap interface {
	CacheableKVStore
	Write() error
	Discard()
}

// CommitKVStore persists versioned state.
type CommitKVStore interface {
	// Get reads from the last committed version.
	Get(key []byte) ([]byte, error)

	// CacheWrap returns a cache whose Write stages changes for the next
	// Commit.
	CacheWrap() KVCacheWrap

	Commit() (CommitID, error)

	// LoadLatestVersion loads the newest complete version from disk.
	LoadLatestVersion() error

	LatestVersion() (CommitID, error)
}

// CommitID identifies a committed version by its number and root hash.
type CommitID struct {
	Version int64
	Hash    []byte
}

// Model is a raw key value pair read from a store.
type Model struct {
	Key   []byte
	Value []byte
}
