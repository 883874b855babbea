//nolint
package store

import "github.com/iov-one/quorum"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = quorum.ReadOnlyKVStore
type SetDeleter = quorum.SetDeleter
type KVStore = quorum.KVStore
type Batch = quorum.Batch
type Iterator = quorum.Iterator
type CacheableKVStore = quorum.CacheableKVStore
type KVCacheWrap = quorum.KVCacheWrap
type CommitKVStore = quorum.CommitKVStore
type CommitID = quorum.CommitID
type Model = quorum.Model

// Pair constructs a model from a key-value pair
var Pair = quorum.Pair
