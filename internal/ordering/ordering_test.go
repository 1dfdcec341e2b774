package ordering

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/optics/internal/arena"
	"github.com/hupe1980/optics/progress"
	"github.com/hupe1980/optics/quickselect"
)

func axis(xs ...float64) DistanceFunc {
	return func(i, j int) float64 {
		d := xs[i] - xs[j]
		return d * d
	}
}

func TestRun_TwoPairs(t *testing.T) {
	res, err := Run(4, axis(0, 20, 200, 255), Config{MaxDistance: 4000, MinPoints: 2})
	require.NoError(t, err)

	want := []Entry{
		{Index: 0, CoreDistance: 400, Reachability: arena.Undefined},
		{Index: 1, CoreDistance: 400, Reachability: 400},
		{Index: 2, CoreDistance: 3025, Reachability: arena.Undefined},
		{Index: 3, CoreDistance: 3025, Reachability: 3025},
	}
	assert.Equal(t, want, res.Entries)
	assert.Equal(t, int64(12), res.Stats.DistanceCalls)
	assert.Equal(t, 4, res.Stats.Expansions)
}

func TestRun_ThreeRuns(t *testing.T) {
	xs := []float64{0, 10, 15, 18, 22, 50, 55, 56, 60, 80, 85, 90}
	res, err := Run(len(xs), axis(xs...), Config{MaxDistance: 3900, MinPoints: 2})
	require.NoError(t, err)

	want := []Entry{
		{0, 225, -1}, {1, 64, 225}, {2, 25, 64}, {3, 16, 25}, {4, 49, 16},
		{5, 36, 784}, {7, 16, 36}, {8, 25, 16}, {6, 25, 16},
		{9, 100, 400}, {11, 100, 100}, {10, 25, 100},
	}
	assert.Equal(t, want, res.Entries)
}

func matrix(m [][]float64) DistanceFunc {
	return func(i, j int) float64 { return m[i][j] }
}

// stableSelect picks the k-th smallest without reordering items, so seeds
// enter the pool in input order.
func stableSelect(items []int, k int, cmp func(a, b int) int) int {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return cmp(items[idx[a]], items[idx[b]]) < 0 })
	return idx[k]
}

func TestRun_SeedTieBreak(t *testing.T) {
	// Element 0 is the hub; the leaves only reach the hub, all at the same
	// distance, so every seed carries the same reachability.
	const far = 10
	m := [][]float64{
		{0, 1, 1, 1, 1},
		{1, 0, far, far, far},
		{1, far, 0, far, far},
		{1, far, far, 0, far},
		{1, far, far, far, 0},
	}

	res, err := Run(5, matrix(m), Config{MaxDistance: 5, MinPoints: 2, Select: stableSelect})
	require.NoError(t, err)

	// The earliest pool slot wins each tie; removal moves the last seed
	// into the freed slot.
	want := []Entry{
		{0, 1, arena.Undefined}, {1, 1, 1}, {4, 1, 1}, {3, 1, 1}, {2, 1, 1},
	}
	assert.Equal(t, want, res.Entries)
}

func TestRun_LowersPooledSeed(t *testing.T) {
	// Expanding 0 pools 1, 2 and 3 with reachability 5, 5 and 6. Expanding
	// 1 then lowers 3 to 2, so 3 is picked before 2.
	m := [][]float64{
		{0, 1, 5, 6},
		{1, 0, 200, 2},
		{5, 200, 0, 200},
		{6, 2, 200, 0},
	}

	res, err := Run(4, matrix(m), Config{MaxDistance: 100, MinPoints: 2, Select: stableSelect})
	require.NoError(t, err)

	want := []Entry{
		{0, 5, arena.Undefined}, {1, 2, 5}, {3, 6, 2}, {2, 5, 5},
	}
	assert.Equal(t, want, res.Entries)
}

func TestRun_NoNeighbors(t *testing.T) {
	res, err := Run(3, axis(0, 255, 600), Config{MaxDistance: 128, MinPoints: 2})
	require.NoError(t, err)

	for i, e := range res.Entries {
		assert.Equal(t, i, e.Index)
		assert.False(t, arena.Defined(e.CoreDistance))
		assert.False(t, arena.Defined(e.Reachability))
	}
	assert.Equal(t, int64(0), res.Stats.SelectorCalls)
	assert.Equal(t, 0, res.Stats.Expansions)
}

func TestRun_SinglePointMinPointsOne(t *testing.T) {
	res, err := Run(1, axis(1), Config{MaxDistance: 10, MinPoints: 1})
	require.NoError(t, err)

	require.Len(t, res.Entries, 1)
	assert.Equal(t, 0.0, res.Entries[0].CoreDistance)
	assert.Equal(t, arena.Undefined, res.Entries[0].Reachability)
	assert.Equal(t, int64(0), res.Stats.DistanceCalls)
}

func TestRun_MinPointsOneUsesNearestNeighbor(t *testing.T) {
	res, err := Run(3, axis(0, 3, 10), Config{MaxDistance: 50, MinPoints: 1})
	require.NoError(t, err)

	assert.Equal(t, 9.0, res.Entries[0].CoreDistance)
}

func TestRun_Empty(t *testing.T) {
	selects := 0
	sel := func(items []int, k int, cmp func(a, b int) int) int {
		selects++
		return quickselect.Select(items, k, cmp)
	}

	res, err := Run(0, axis(), Config{MaxDistance: 1, MinPoints: 2, Select: sel})
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.Equal(t, 0, selects)
}

func TestRun_SelectorRankInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	xs := make([]float64, 60)
	for i := range xs {
		xs[i] = rng.Float64() * 100
	}

	for mp := 1; mp <= 8; mp++ {
		sel := func(items []int, k int, cmp func(a, b int) int) int {
			require.GreaterOrEqual(t, k, 0)
			require.Less(t, k, len(items))
			return quickselect.Select(items, k, cmp)
		}
		_, err := Run(len(xs), axis(xs...), Config{MaxDistance: 40, MinPoints: mp, Select: sel})
		require.NoError(t, err)
	}
}

func TestRun_Permutation(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for trial := 0; trial < 30; trial++ {
		n := rng.Intn(50)
		xs := make([]float64, n)
		for i := range xs {
			xs[i] = rng.Float64() * 100
		}

		res, err := Run(n, axis(xs...), Config{MaxDistance: 1 + rng.Float64()*500, MinPoints: 1 + rng.Intn(5)})
		require.NoError(t, err)

		idx := make([]int, len(res.Entries))
		for i, e := range res.Entries {
			idx[i] = e.Index
		}
		sort.Ints(idx)
		for i := range idx {
			require.Equal(t, i, idx[i])
		}
		assert.Equal(t, int64(n*(n-1)), res.Stats.DistanceCalls)
	}
}

func TestRun_ReachabilityColumn(t *testing.T) {
	res, err := Run(4, axis(0, 20, 200, 255), Config{MaxDistance: 4000, MinPoints: 2})
	require.NoError(t, err)

	assert.Equal(t, []float64{-1, 400, -1, 3025}, res.Reachability())
}

func TestRun_InvalidDistance(t *testing.T) {
	tests := []struct {
		name  string
		value float64
	}{
		{"NaN", math.NaN()},
		{"negative", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist := func(i, j int) float64 {
				if i == 1 && j == 2 {
					return tt.value
				}
				return 1
			}

			res, err := Run(3, dist, Config{MaxDistance: 10, MinPoints: 2})
			assert.Nil(t, res)

			var ide *ErrInvalidDistance
			require.ErrorAs(t, err, &ide)
			assert.Equal(t, 1, ide.A)
			assert.Equal(t, 2, ide.B)
		})
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"zero radius", Config{MaxDistance: 0, MinPoints: 2}, ErrInvalidMaxDistance},
		{"negative radius", Config{MaxDistance: -1, MinPoints: 2}, ErrInvalidMaxDistance},
		{"NaN radius", Config{MaxDistance: math.NaN(), MinPoints: 2}, ErrInvalidMaxDistance},
		{"min points", Config{MaxDistance: 1, MinPoints: 0}, ErrInvalidMinPoints},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(2, axis(0, 1), tt.cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Run(2, nil, Config{MaxDistance: 1, MinPoints: 1})
	assert.ErrorIs(t, err, ErrNilDistance)
}

func TestRun_Progress(t *testing.T) {
	var got []float64
	root := progress.NewTracker("order", func(f float64) { got = append(got, f) })

	_, err := Run(4, axis(0, 20, 200, 255), Config{MaxDistance: 4000, MinPoints: 2, Progress: root})
	require.NoError(t, err)

	assert.Equal(t, []float64{0.25, 0.5, 0.75, 1}, got)
	assert.True(t, root.Finished())
}

func TestRun_NeverComparesElementWithItself(t *testing.T) {
	dist := func(i, j int) float64 {
		require.NotEqual(t, i, j)
		return float64((i - j) * (i - j))
	}

	_, err := Run(10, dist, Config{MaxDistance: 5, MinPoints: 2})
	require.NoError(t, err)
}
