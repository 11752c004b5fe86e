package avltree

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_InsertAndLookup(t *testing.T) {
	t.Parallel()

	tr := New()
	require.NoError(t, tr.Insert("john", 1, nil))
	require.NoError(t, tr.Insert("adam", 2, nil))
	require.NoError(t, tr.Insert("perry", 3, nil))

	got, ok := tr.Lookup("adam")
	require.True(t, ok)
	assert.Equal(t, 2, got)

	_, ok = tr.Lookup("missing")
	assert.False(t, ok)
	assert.Equal(t, 3, tr.Len())
}

func TestTree_DuplicateInsert(t *testing.T) {
	t.Parallel()

	tr := New()
	require.NoError(t, tr.Insert("a", "first", nil))
	err := tr.Insert("a", "second", nil)
	require.ErrorIs(t, err, ErrDuplicateName)

	got, ok := tr.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "first", got)
	assert.Equal(t, 1, tr.Len())
}

func TestTree_WalkOrder(t *testing.T) {
	t.Parallel()

	tr := New()
	for _, name := range []string{"john", "adam", "perry", "zoe", "bert"} {
		require.NoError(t, tr.Insert(name, name, nil))
	}

	var order []string
	tr.Walk(func(name string, _ any) {
		order = append(order, name)
	})
	assert.Equal(t, []string{"adam", "bert", "john", "perry", "zoe"}, order)
}

func TestTree_BalanceUnderSequentialInsert(t *testing.T) {
	t.Parallel()

	// Ascending inserts degenerate an unbalanced BST into a list; the AVL
	// rotations must keep every node within the height bound.
	tr := New()
	for i := 0; i < 128; i++ {
		require.NoError(t, tr.Insert(fmt.Sprintf("key-%03d", i), i, nil))
	}

	assertBalanced(t, tr.root)
	assert.Equal(t, 128, tr.Len())
}

func assertBalanced(t *testing.T, n *node) int {
	t.Helper()
	if n == nil {
		return 0
	}
	lh := assertBalanced(t, n.left)
	rh := assertBalanced(t, n.right)
	diff := lh - rh
	require.LessOrEqual(t, diff, 1, "node %q out of balance", n.name)
	require.GreaterOrEqual(t, diff, -1, "node %q out of balance", n.name)
	require.Equal(t, 1+max(lh, rh), n.height, "node %q has stale height", n.name)
	return n.height
}

func TestTree_DestroyReleasesPayloads(t *testing.T) {
	t.Parallel()

	freed := 0
	free := func(any) { freed++ }

	tr := New()
	require.NoError(t, tr.Insert("a", 1, free))
	require.NoError(t, tr.Insert("b", 2, free))
	require.NoError(t, tr.Insert("c", 3, nil)) // no release routine

	tr.Destroy()
	assert.Equal(t, 2, freed)
	assert.Equal(t, 0, tr.Len())

	_, ok := tr.Lookup("a")
	assert.False(t, ok)

	// Destroying an empty tree is a no-op.
	tr.Destroy()
	assert.Equal(t, 2, freed)
}
