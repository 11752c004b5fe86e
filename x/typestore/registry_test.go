package typestore

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) TypeStore {
	t.Helper()
	ts, err := New(Config{})
	require.NoError(t, err)
	return ts
}

func kindNames(ts TypeStore) []string {
	var names []string
	ts.ForEachKind(func(k *Kind) {
		names = append(names, k.Name())
	})
	return names
}

func TestRegistry_SortInvariant(t *testing.T) {
	t.Parallel()

	ts := newTestStore(t)
	rng := rand.New(rand.NewSource(7))

	var live []string
	for i := 0; i < 200; i++ {
		name := fmt.Sprintf("kind-%03d", rng.Intn(300))
		if pos := ts.FindPosition(name); pos >= 0 {
			require.NoError(t, ts.Deregister(name))
			for j, n := range live {
				if n == name {
					live = append(live[:j], live[j+1:]...)
					break
				}
			}
		} else {
			_, err := ts.Register(name, nil)
			require.NoError(t, err)
			live = append(live, name)
		}

		names := kindNames(ts)
		assert.True(t, sort.StringsAreSorted(names), "registry out of order: %v", names)
		assert.Len(t, names, len(live))
	}
}

func TestRegistry_FindPositionEncoding(t *testing.T) {
	t.Parallel()

	ts := newTestStore(t)

	// Empty registry and insert-before-first share the -1 encoding.
	assert.Equal(t, -1, ts.FindPosition("anything"))

	for _, name := range []string{"delta", "bravo", "foxtrot", "alpha"} {
		_, err := ts.Register(name, nil)
		require.NoError(t, err)
	}
	// Sorted: alpha bravo delta foxtrot
	assert.Equal(t, 0, ts.FindPosition("alpha"))
	assert.Equal(t, 2, ts.FindPosition("delta"))
	assert.Equal(t, 3, ts.FindPosition("foxtrot"))

	assert.Equal(t, -1, ts.FindPosition("aardvark")) // before alpha
	assert.Equal(t, -3, ts.FindPosition("charlie"))  // between bravo and delta
	assert.Equal(t, -5, ts.FindPosition("zulu"))     // past the end

	// Decoding the miss gives the index that preserves the order.
	pos, err := ts.RegisterAt(2, "charlie", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)
	assert.Equal(t,
		[]string{"alpha", "bravo", "charlie", "delta", "foxtrot"},
		kindNames(ts))
}

func TestRegistry_DuplicateKind(t *testing.T) {
	t.Parallel()

	ts := newTestStore(t)
	cbA := &Callbacks{}

	_, err := ts.Register("test", cbA)
	require.NoError(t, err)

	_, err = ts.Register("test", cbA)
	require.ErrorIs(t, err, ErrDuplicateKind)
	assert.Equal(t, 1, ts.Len())
}

func TestRegistry_RegisterInvalidArguments(t *testing.T) {
	t.Parallel()

	ts := newTestStore(t)

	_, err := ts.Register("", nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ts.RegisterAt(-1, "a", nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ts.RegisterAt(1, "a", nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	assert.Equal(t, 0, ts.Len())
}

func TestRegistry_DeregisterReleasesAllValues(t *testing.T) {
	t.Parallel()

	ts := newTestStore(t)

	freed := 0
	cbs := &Callbacks{Free: func(any) { freed++ }}

	for i := 0; i < 5; i++ {
		require.NoError(t, ts.Store("sensor", fmt.Sprintf("s%d", i), i, cbs))
	}
	require.NoError(t, ts.Deregister("sensor"))
	assert.Equal(t, 5, freed)

	_, found := ts.LookupKind("sensor")
	assert.False(t, found)

	err := ts.Deregister("sensor")
	require.ErrorIs(t, err, ErrKindNotFound)
}

func TestRegistry_KindAt(t *testing.T) {
	t.Parallel()

	ts := newTestStore(t)
	for _, name := range []string{"b", "a", "c"} {
		_, err := ts.Register(name, nil)
		require.NoError(t, err)
	}

	k, ok := ts.KindAt(1)
	require.True(t, ok)
	assert.Equal(t, "b", k.Name())

	_, ok = ts.KindAt(3)
	assert.False(t, ok)
	_, ok = ts.KindAt(-1)
	assert.False(t, ok)
}

func TestRegistry_FprintDeterministicOrder(t *testing.T) {
	t.Parallel()

	ts := newTestStore(t)
	printCb := &Callbacks{
		Print: func(w io.Writer, payload any) { fmt.Fprintf(w, "<%v>", payload) },
	}
	plain := &Callbacks{}

	require.NoError(t, ts.Store("names", "john", "J", printCb))
	require.NoError(t, ts.Store("names", "adam", "A", printCb))
	require.NoError(t, ts.Store("beacons", "x", 9, plain))

	var buf bytes.Buffer
	ts.Fprint(&buf)

	assert.Equal(t,
		"kind beacons (1 values)\n"+
			"  x: 9\n"+
			"kind names (2 values)\n"+
			"  adam: <A>\n"+
			"  john: <J>\n",
		buf.String())
}

func TestRegistry_DestroyIsIdempotent(t *testing.T) {
	t.Parallel()

	ts := newTestStore(t)
	freed := 0
	cbs := &Callbacks{Free: func(any) { freed++ }}

	require.NoError(t, ts.Store("a", "v1", 1, cbs))
	require.NoError(t, ts.Store("b", "v2", 2, cbs))

	ts.Destroy()
	assert.Equal(t, 2, freed)
	assert.Equal(t, 0, ts.Len())

	// Second teardown of an already-empty store is a no-op.
	ts.Destroy()
	assert.Equal(t, 2, freed)

	// The store is reusable after teardown.
	require.NoError(t, ts.Store("a", "v1", 1, cbs))
	assert.Equal(t, 1, ts.Len())
}

func TestRegistry_MetricsWiring(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	ts, err := New(Config{Metrics: m})
	require.NoError(t, err)

	require.NoError(t, ts.Store("k", "v", 1, nil))
	_, ok := ts.Get("k", "v")
	require.True(t, ok)
	_, ok = ts.Get("k", "other")
	require.False(t, ok)
	require.ErrorIs(t, ts.Deregister("gone"), ErrKindNotFound)
	require.NotNil(t, m.Handler())
}
