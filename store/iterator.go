package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/quorum/errors"
)

// ascending returns the pending entries with a key in [start, end). The
// entries are copied out so that the cache can be modified while iterating.
func ascending(bt *btree.BTree, start, end []byte) []*entry {
	var res []*entry
	add := func(it btree.Item) bool {
		res = append(res, it.(*entry))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(add)
	case start == nil:
		bt.AscendLessThan(&entry{key: end}, add)
	case end == nil:
		bt.AscendGreaterOrEqual(&entry{key: start}, add)
	default:
		bt.AscendRange(&entry{key: start}, &entry{key: end}, add)
	}
	return res
}

// descending returns the pending entries with a key in [start, end),
// highest key first.
func descending(bt *btree.BTree, start, end []byte) []*entry {
	var res []*entry
	add := func(it btree.Item) bool {
		e := it.(*entry)
		if end != nil && bytes.Compare(e.key, end) >= 0 {
			return true
		}
		if start != nil && bytes.Compare(e.key, start) < 0 {
			return false
		}
		res = append(res, e)
		return true
	}
	if end == nil {
		bt.Descend(add)
	} else {
		bt.DescendLessOrEqual(&entry{key: end}, add)
	}
	return res
}

// side tells which of the merged sources holds the current key.
type side int

const (
	exhausted side = iota
	fromCache
	fromParent
	fromBoth
)

// mergeIter walks the pending entries of a cache and the iterator of its
// parent in lockstep. When both hold a key the cache wins. Deleted entries
// are skipped together with the parent key they hide.
type mergeIter struct {
	cache   []*entry
	pos     int
	parent  Iterator
	reverse bool
}

var _ Iterator = (*mergeIter)(nil)

func newMergeIter(cache []*entry, parent Iterator, reverse bool) (*mergeIter, error) {
	it := &mergeIter{cache: cache, parent: parent, reverse: reverse}
	if err := it.skipDeleted(); err != nil {
		it.Close()
		return nil, err
	}
	return it, nil
}

func (it *mergeIter) Valid() bool {
	return it.current() != exhausted
}

func (it *mergeIter) Next() error {
	switch it.current() {
	case fromCache:
		it.pos++
	case fromParent:
		if err := it.parent.Next(); err != nil {
			return err
		}
	case fromBoth:
		it.pos++
		if err := it.parent.Next(); err != nil {
			return err
		}
	default:
		return errors.Wrap(errors.ErrDatabase, "iterator exhausted")
	}
	return it.skipDeleted()
}

func (it *mergeIter) Key() []byte {
	switch it.current() {
	case fromCache, fromBoth:
		return it.cache[it.pos].key
	case fromParent:
		return it.parent.Key()
	}
	panic("iterator exhausted")
}

func (it *mergeIter) Value() []byte {
	switch it.current() {
	case fromCache, fromBoth:
		return it.cache[it.pos].value
	case fromParent:
		return it.parent.Value()
	}
	panic("iterator exhausted")
}

func (it *mergeIter) Close() {
	if it.parent != nil {
		it.parent.Close()
	}
	it.cache = nil
}

func (it *mergeIter) skipDeleted() error {
	for {
		s := it.current()
		if s != fromCache && s != fromBoth {
			return nil
		}
		if !it.cache[it.pos].deleted {
			return nil
		}
		it.pos++
		if s == fromBoth {
			if err := it.parent.Next(); err != nil {
				return err
			}
		}
	}
}

// current returns the source holding the next key in iteration order.
func (it *mergeIter) current() side {
	inCache := it.pos < len(it.cache)
	inParent := it.parent != nil && it.parent.Valid()
	switch {
	case !inCache && !inParent:
		return exhausted
	case !inParent:
		return fromCache
	case !inCache:
		return fromParent
	}
	cmp := bytes.Compare(it.cache[it.pos].key, it.parent.Key())
	if it.reverse {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return fromCache
	case cmp > 0:
		return fromParent
	default:
		return fromBoth
	}
}
