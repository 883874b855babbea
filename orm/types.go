//nolint
package orm

import "github.com/iov-one/quorum"

type ReadOnlyKVStore = quorum.ReadOnlyKVStore
type KVStore = quorum.KVStore
