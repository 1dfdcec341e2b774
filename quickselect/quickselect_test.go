package quickselect

import (
	"cmp"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name  string
		items []int
		k     int
		want  int
	}{
		{name: "first of ordered", items: []int{0, 1, 2, 3}, k: 0, want: 0},
		{name: "last of ordered", items: []int{0, 1, 2, 3}, k: 3, want: 3},
		{name: "second of ordered", items: []int{0, 1, 2, 3}, k: 1, want: 1},
		{name: "second of unordered", items: []int{3, 1, 2, 4}, k: 1, want: 2},
		{name: "second of eleven", items: []int{9, 4, 5, 1, 2, 7, 6, 8, 10, 11, 3}, k: 1, want: 2},
		{name: "third of thirteen", items: []int{9, 4, 13, 12, 5, 1, 2, 7, 6, 8, 10, 11, 3}, k: 2, want: 3},
		{name: "single", items: []int{42}, k: 0, want: 42},
		{name: "duplicates", items: []int{5, 1, 5, 1, 5, 1, 5}, k: 3, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := Select(tt.items, tt.k, cmp.Compare[int])
			assert.Equal(t, tt.want, tt.items[idx])
		})
	}
}

func TestSelect_ShuffledRange(t *testing.T) {
	const n = 1000

	rng := rand.New(rand.NewSource(0))
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	rng.Shuffle(n, func(i, j int) { items[i], items[j] = items[j], items[i] })

	for k := 0; k < n; k++ {
		idx := Select(items, k, cmp.Compare[int])
		require.Equal(t, k, items[idx], "rank %d", k)
	}
}

func TestSelect_PartitionsAroundRank(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(200)
		items := make([]float64, n)
		for i := range items {
			items[i] = float64(rng.Intn(20))
		}
		sorted := slices.Clone(items)
		slices.Sort(sorted)

		k := rng.Intn(n)
		idx := Select(items, k, cmp.Compare[float64])

		require.Equal(t, sorted[k], items[idx])
		for i := 0; i < idx; i++ {
			require.LessOrEqual(t, items[i], items[idx])
		}
		for i := idx + 1; i < n; i++ {
			require.GreaterOrEqual(t, items[i], items[idx])
		}

		// Selection only reorders.
		after := slices.Clone(items)
		slices.Sort(after)
		require.Equal(t, sorted, after)
	}
}

func TestSelect_OutOfRange(t *testing.T) {
	assert.Panics(t, func() { Select([]int{1, 2, 3}, 3, cmp.Compare[int]) })
	assert.Panics(t, func() { Select([]int{1, 2, 3}, -1, cmp.Compare[int]) })
	assert.Panics(t, func() { Select([]int{}, 0, cmp.Compare[int]) })
}
