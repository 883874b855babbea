package orm

import (
	"github.com/iov-one/quorum"
)

func queryPrefix(db quorum.ReadOnlyKVStore, prefix []byte) ([]quorum.Model, error) {
	itr, err := db.Iterator(prefixRange(prefix))
	if err != nil {
		return nil, err
	}
	return ConsumeIterator(itr)
}

// ConsumeIterator reads all remaining models and closes the iterator.
func ConsumeIterator(itr quorum.Iterator) ([]quorum.Model, error) {
	defer itr.Close()

	var res []quorum.Model
	for itr.Valid() {
		res = append(res, quorum.Pair(itr.Key(), itr.Value()))
		if err := itr.Next(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// prefixRange returns the [start, end) range holding every key that starts
// with prefix. The end is nil when no key is greater than all of them.
func prefixRange(prefix []byte) ([]byte, []byte) {
	if len(prefix) == 0 {
		return nil, nil
	}
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return prefix, end[:i+1]
		}
	}
	return prefix, nil
}
