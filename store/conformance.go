package store

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StoreFactory returns a new empty store together with a function that
// releases it.
type StoreFactory func() (CacheableKVStore, func())

// RunConformance runs the checks every CacheableKVStore implementation must
// pass. It is shared by the in-memory and the iavl backed stores.
func RunConformance(t *testing.T, newStore StoreFactory) {
	t.Run("read own writes", func(t *testing.T) { readOwnWrites(t, newStore) })
	t.Run("cache isolation", func(t *testing.T) { cacheIsolation(t, newStore) })
	t.Run("ranges", func(t *testing.T) { ranges(t, newStore) })
	t.Run("random operations", func(t *testing.T) { randomOperations(t, newStore) })
}

// AssertValue fails the test unless kv holds want under key. A nil want
// expects the key to be absent.
func AssertValue(t testing.TB, kv ReadOnlyKVStore, key, want []byte) {
	t.Helper()
	got, err := kv.Get(key)
	require.NoError(t, err)
	has, err := kv.Has(key)
	require.NoError(t, err)
	if want == nil {
		assert.Nil(t, got, "key %q", key)
		assert.False(t, has, "key %q", key)
		return
	}
	assert.Equal(t, want, got, "key %q", key)
	assert.True(t, has, "key %q", key)
}

func readOwnWrites(t *testing.T, newStore StoreFactory) {
	kv, release := newStore()
	defer release()

	k := []byte("vault")
	AssertValue(t, kv, k, nil)
	require.NoError(t, kv.Set(k, []byte("one")))
	AssertValue(t, kv, k, []byte("one"))
	require.NoError(t, kv.Set(k, []byte("two")))
	AssertValue(t, kv, k, []byte("two"))
	require.NoError(t, kv.Delete(k))
	AssertValue(t, kv, k, nil)
	require.NoError(t, kv.Delete([]byte("missing")))
}

func cacheIsolation(t *testing.T, newStore StoreFactory) {
	kv, release := newStore()
	defer release()

	require.NoError(t, kv.Set([]byte("kept"), []byte("1")))
	require.NoError(t, kv.Set([]byte("removed"), []byte("2")))

	cache := kv.CacheWrap()
	require.NoError(t, cache.Set([]byte("kept"), []byte("3")))
	require.NoError(t, cache.Delete([]byte("removed")))
	require.NoError(t, cache.Set([]byte("added"), []byte("4")))

	AssertValue(t, cache, []byte("kept"), []byte("3"))
	AssertValue(t, cache, []byte("removed"), nil)
	AssertValue(t, kv, []byte("kept"), []byte("1"))
	AssertValue(t, kv, []byte("removed"), []byte("2"))
	AssertValue(t, kv, []byte("added"), nil)

	// a discarded nested cache leaves its parent cache untouched
	nested := cache.CacheWrap()
	require.NoError(t, nested.Set([]byte("added"), []byte("5")))
	nested.Discard()
	AssertValue(t, cache, []byte("added"), []byte("4"))

	require.NoError(t, cache.Write())
	AssertValue(t, kv, []byte("kept"), []byte("3"))
	AssertValue(t, kv, []byte("removed"), nil)
	AssertValue(t, kv, []byte("added"), []byte("4"))

	// a cache is empty after it was written
	require.NoError(t, kv.Set([]byte("kept"), []byte("6")))
	AssertValue(t, cache, []byte("kept"), []byte("6"))
}

func ranges(t *testing.T, newStore StoreFactory) {
	kv, release := newStore()
	defer release()
	for _, k := range []string{"a", "b", "c", "d"} {
		require.NoError(t, kv.Set([]byte(k), []byte(k)))
	}
	cache := kv.CacheWrap()
	defer cache.Discard()
	require.NoError(t, cache.Set([]byte("b"), []byte("B")))
	require.NoError(t, cache.Delete([]byte("c")))
	require.NoError(t, cache.Set([]byte("e"), []byte("e")))

	cases := map[string]struct {
		kv         ReadOnlyKVStore
		start, end string
		reverse    bool
		want       []string
	}{
		"whole parent": {
			kv:   kv,
			want: []string{"a=a", "b=b", "c=c", "d=d"},
		},
		"whole cache": {
			kv:   cache,
			want: []string{"a=a", "b=B", "d=d", "e=e"},
		},
		"whole cache reversed": {
			kv:      cache,
			reverse: true,
			want:    []string{"e=e", "d=d", "b=B", "a=a"},
		},
		"end is exclusive": {
			kv:    cache,
			start: "b",
			end:   "e",
			want:  []string{"b=B", "d=d"},
		},
		"end is exclusive in reverse": {
			kv:      cache,
			start:   "b",
			end:     "e",
			reverse: true,
			want:    []string{"d=d", "b=B"},
		},
		"open end": {
			kv:    cache,
			start: "c",
			want:  []string{"d=d", "e=e"},
		},
		"open start in reverse": {
			kv:      cache,
			end:     "c",
			reverse: true,
			want:    []string{"b=B", "a=a"},
		},
		"only deleted keys": {
			kv:    cache,
			start: "c",
			end:   "d",
			want:  nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.want, collect(t, tc.kv, bound(tc.start), bound(tc.end), tc.reverse))
		})
	}
}

func bound(s string) []byte {
	if s == "" {
		return nil
	}
	return []byte(s)
}

func collect(t testing.TB, kv ReadOnlyKVStore, start, end []byte, reverse bool) []string {
	t.Helper()
	var (
		it  Iterator
		err error
	)
	if reverse {
		it, err = kv.ReverseIterator(start, end)
	} else {
		it, err = kv.Iterator(start, end)
	}
	require.NoError(t, err)
	defer it.Close()

	var res []string
	for ; it.Valid(); require.NoError(t, it.Next()) {
		res = append(res, fmt.Sprintf("%s=%s", it.Key(), it.Value()))
	}
	return res
}

// randomOperations applies the same random writes to a cache and to a map
// and compares both views.
func randomOperations(t *testing.T, newStore StoreFactory) {
	kv, release := newStore()
	defer release()

	r := rand.New(rand.NewSource(42))
	keys := make([][]byte, 40)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("key-%03d", r.Intn(1000)))
	}
	value := func() []byte { return []byte(fmt.Sprintf("v%d", r.Int63())) }

	want := make(map[string][]byte)
	for _, k := range keys[:20] {
		v := value()
		require.NoError(t, kv.Set(k, v))
		want[string(k)] = v
	}
	parent := copyMap(want)

	cache := kv.CacheWrap()
	for i := 0; i < 300; i++ {
		k := keys[r.Intn(len(keys))]
		if r.Intn(3) == 0 {
			require.NoError(t, cache.Delete(k))
			delete(want, string(k))
		} else {
			v := value()
			require.NoError(t, cache.Set(k, v))
			want[string(k)] = v
		}
	}

	assertContent(t, kv, parent)
	assertContent(t, cache, want)
	require.NoError(t, cache.Write())
	assertContent(t, kv, want)
}

func assertContent(t testing.TB, kv ReadOnlyKVStore, want map[string][]byte) {
	t.Helper()
	var expected []string
	for k, v := range want {
		expected = append(expected, fmt.Sprintf("%s=%s", k, v))
		AssertValue(t, kv, []byte(k), v)
	}
	sort.Strings(expected)
	assert.Equal(t, expected, collect(t, kv, nil, nil, false))

	reversed := make([]string, len(expected))
	for i, s := range expected {
		reversed[len(expected)-1-i] = s
	}
	if len(reversed) == 0 {
		reversed = nil
	}
	assert.Equal(t, reversed, collect(t, kv, nil, nil, true))
}

func copyMap(m map[string][]byte) map[string][]byte {
	res := make(map[string][]byte, len(m))
	for k, v := range m {
		res[k] = v
	}
	return res
}
