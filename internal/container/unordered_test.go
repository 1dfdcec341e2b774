package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnordered(t *testing.T) {
	u := NewUnordered[int](2)
	for i := 0; i < 5; i++ {
		u.Add(i * 10)
	}
	require.Equal(t, 5, u.Len())
	assert.Equal(t, 20, u.At(2))

	t.Run("RemoveAt swaps last into place", func(t *testing.T) {
		v := u.RemoveAt(1)
		assert.Equal(t, 10, v)
		assert.Equal(t, 4, u.Len())
		assert.Equal(t, []int{0, 40, 20, 30}, u.Items())
	})

	t.Run("RemoveAt last", func(t *testing.T) {
		v := u.RemoveAt(u.Len() - 1)
		assert.Equal(t, 30, v)
		assert.Equal(t, []int{0, 40, 20}, u.Items())
	})

	t.Run("Clear keeps capacity", func(t *testing.T) {
		before := cap(u.Items())
		u.Clear()
		assert.Equal(t, 0, u.Len())
		assert.Equal(t, before, cap(u.Items()))

		u.Add(7)
		assert.Equal(t, []int{7}, u.Items())
	})
}

func TestUnordered_RemoveOnly(t *testing.T) {
	u := NewUnordered[string](0)
	u.Add("a")
	assert.Equal(t, "a", u.RemoveAt(0))
	assert.Equal(t, 0, u.Len())
}

func TestUnordered_OutOfRange(t *testing.T) {
	u := NewUnordered[int](0)
	assert.Panics(t, func() { u.RemoveAt(0) })
	assert.Panics(t, func() { u.At(0) })
}
