package elemcache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitledger/chaindb/store/link"
)

func TestCachePutGetEvict(t *testing.T) {
	c, err := New[string](2)
	require.NoError(t, err)

	c.Put(link.Link(1), "a")
	c.Put(link.Link(2), "b")

	v, ok := c.Get(link.Link(1))
	require.True(t, ok)
	require.Equal(t, "a", v)

	c.Put(link.Link(3), "c") // evicts link 2, the LRU entry after touching 1
	_, ok = c.Get(link.Link(2))
	require.False(t, ok, "expected link 2 evicted")

	v, ok = c.Get(link.Link(3))
	require.True(t, ok)
	require.Equal(t, "c", v)
	require.Equal(t, 2, c.Len())
}

func TestCacheRemove(t *testing.T) {
	c, err := New[int](4)
	require.NoError(t, err)

	c.Put(link.Link(1), 100)
	c.Remove(link.Link(1))

	_, ok := c.Get(link.Link(1))
	require.False(t, ok, "expected removed entry to miss")
}
