package testutil

import (
	"fmt"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0,1).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformVectors generates random vectors with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num, dimensions int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dimensions)
	vectors := make([][]float64, num)

	for i := 0; i < num; i++ {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float64()
		}
		vectors[i] = vec
	}

	return vectors
}

// GaussianBlobs generates perCenter points around every center with
// standard deviation spread per coordinate. The returned labels give the
// center index of each point. Points are grouped by center, in center order.
func (r *RNG) GaussianBlobs(centers [][]float64, perCenter int, spread float64) ([][]float64, []int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	vectors := make([][]float64, 0, len(centers)*perCenter)
	labels := make([]int, 0, len(centers)*perCenter)

	for c, center := range centers {
		for n := 0; n < perCenter; n++ {
			vec := make([]float64, len(center))
			for j := range vec {
				vec[j] = center[j] + r.rand.NormFloat64()*spread
			}
			vectors = append(vectors, vec)
			labels = append(labels, c)
		}
	}

	return vectors, labels
}

// Shuffle permutes points and labels together.
func (r *RNG) Shuffle(points [][]float64, labels []int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rand.Shuffle(len(points), func(i, j int) {
		points[i], points[j] = points[j], points[i]
		if labels != nil {
			labels[i], labels[j] = labels[j], labels[i]
		}
	})
}

// CheckPartition verifies that clusters and noise together contain every
// index in [0, n) exactly once.
func CheckPartition(n int, clusters [][]int, noise []int) error {
	seen := make([]int, n)

	mark := func(i int) error {
		if i < 0 || i >= n {
			return fmt.Errorf("index %d out of range [0, %d)", i, n)
		}
		seen[i]++
		return nil
	}

	for _, c := range clusters {
		for _, i := range c {
			if err := mark(i); err != nil {
				return err
			}
		}
	}
	for _, i := range noise {
		if err := mark(i); err != nil {
			return err
		}
	}

	for i, count := range seen {
		if count != 1 {
			return fmt.Errorf("index %d assigned %d times", i, count)
		}
	}

	return nil
}

// Grid returns cols*rows points of a regular 2-D lattice starting at
// (x0, y0). Points are ordered column by column.
func Grid(x0, y0 float64, cols, rows int, step float64) [][]float64 {
	pts := make([][]float64, 0, cols*rows)
	for i := 0; i < cols; i++ {
		for j := 0; j < rows; j++ {
			pts = append(pts, []float64{x0 + float64(i)*step, y0 + float64(j)*step})
		}
	}
	return pts
}
