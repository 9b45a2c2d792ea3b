package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCacheRoundTrips(t *testing.T) {
	c, err := NewLRU(2)
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", []byte("1"))
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("1"), v)
}

func TestNewDispatchesOnCachePath(t *testing.T) {
	c, err := New("", 4)
	require.NoError(t, err)
	defer c.Close()
	_, isLRU := c.(*lruCache)
	assert.True(t, isLRU)

	_, err = New("not-a-scheme", 4)
	assert.Error(t, err)
}
