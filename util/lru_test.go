package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wkalt/lod/util"
)

func TestLRU(t *testing.T) {
	t.Run("put and get", func(t *testing.T) {
		lru := util.NewLRU[string, int](10)
		lru.Put("a", 1)
		value, ok := lru.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 1, value)
		_, ok = lru.Get("b")
		assert.False(t, ok)
	})
	t.Run("eviction order", func(t *testing.T) {
		lru := util.NewLRU[string, int](2)
		lru.Put("a", 1)
		lru.Put("b", 2)
		lru.Get("a")
		lru.Put("c", 3) // evicts b, the least recently used
		_, ok := lru.Get("b")
		assert.False(t, ok)
		_, ok = lru.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 2, lru.Len())
	})
	t.Run("update moves to front", func(t *testing.T) {
		lru := util.NewLRU[string, int](2)
		lru.Put("a", 1)
		lru.Put("b", 2)
		lru.Put("a", 10)
		lru.Put("c", 3) // evicts b
		value, ok := lru.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 10, value)
		_, ok = lru.Get("b")
		assert.False(t, ok)
	})
	t.Run("reset", func(t *testing.T) {
		lru := util.NewLRU[string, int](2)
		lru.Put("a", 1)
		lru.Reset()
		assert.Equal(t, 0, lru.Len())
		_, ok := lru.Get("a")
		assert.False(t, ok)
	})
}
