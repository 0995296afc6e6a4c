package kv

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_GetSetDelete(t *testing.T) {
	s := New[string, int]()

	s.Set("foo", 42)
	val, ok := s.Get("foo")
	assert.True(t, ok)
	assert.Equal(t, 42, val)

	_, ok = s.Get("bar")
	assert.False(t, ok)

	s.Delete("foo")
	assert.Zero(t, s.Len())
}

func TestStore_GetOrSet(t *testing.T) {
	s := New[string, *int]()

	calls := 0
	create := func() *int {
		calls++
		v := calls
		return &v
	}

	a := s.GetOrSet("k", create)
	b := s.GetOrSet("k", create)

	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)
}

func TestStore_UpdateConcurrent(t *testing.T) {
	s := New[string, int]()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update("count", func(cur int, _ bool) int { return cur + 1 })
		}()
	}
	wg.Wait()

	val, _ := s.Get("count")
	assert.Equal(t, 50, val)
}

func TestStore_KeysAndClear(t *testing.T) {
	s := New[string, bool]()
	s.Set("a", true)
	s.Set("b", false)

	assert.ElementsMatch(t, []string{"a", "b"}, s.Keys())

	s.Clear()
	assert.Empty(t, s.Keys())
}
