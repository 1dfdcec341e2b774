// Package ordering computes the OPTICS reachability ordering of a dataset.
//
// The engine only sees element indices. Distances are supplied by a
// callback so the package stays independent of the element type.
//
// # Algorithm
//
// Elements are visited in input order. Each unprocessed element starts a new
// expansion: it is finalized, its neighborhood (all other elements strictly
// closer than MaxDistance) is collected, and if it is a core point its
// neighbors enter a seed pool keyed by reachability. The seed with the
// smallest reachability is expanded next until the pool drains.
//
// Neighborhood queries are brute force, so a run performs n*(n-1) distance
// evaluations.
package ordering

import (
	"cmp"
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/optics/internal/arena"
	"github.com/hupe1980/optics/internal/container"
	"github.com/hupe1980/optics/progress"
	"github.com/hupe1980/optics/quickselect"
)

var (
	// ErrInvalidMaxDistance is returned when MaxDistance is not a positive number.
	ErrInvalidMaxDistance = errors.New("ordering: max distance must be positive")
	// ErrInvalidMinPoints is returned when MinPoints is less than one.
	ErrInvalidMinPoints = errors.New("ordering: min points must be at least 1")
	// ErrNilDistance is returned when no distance callback is supplied.
	ErrNilDistance = errors.New("ordering: distance function is nil")
)

// ErrInvalidDistance reports a distance callback result that is NaN or negative.
type ErrInvalidDistance struct {
	A, B  int
	Value float64
}

func (e *ErrInvalidDistance) Error() string {
	return fmt.Sprintf("ordering: invalid distance %v between elements %d and %d", e.Value, e.A, e.B)
}

// DistanceFunc returns the distance between elements i and j.
type DistanceFunc func(i, j int) float64

// Config controls a run.
type Config struct {
	// MaxDistance is the exclusive neighborhood radius.
	MaxDistance float64
	// MinPoints is the neighborhood size, including the element itself,
	// that makes an element a core point.
	MinPoints int
	// Select picks the k-th nearest neighbor. Defaults to quickselect.Select.
	Select quickselect.Func[int]
	// Progress receives the fraction of finalized elements.
	Progress progress.Sink
}

// Validate checks the numeric parameters.
func (c Config) Validate() error {
	if math.IsNaN(c.MaxDistance) || c.MaxDistance <= 0 {
		return ErrInvalidMaxDistance
	}
	if c.MinPoints < 1 {
		return ErrInvalidMinPoints
	}
	return nil
}

// Entry is one position of the ordering.
type Entry struct {
	// Index is the element's position in the input.
	Index int
	// CoreDistance is arena.Undefined when the element is not a core point.
	CoreDistance float64
	// Reachability is arena.Undefined for the first element of each
	// expansion.
	Reachability float64
}

// Stats describes the work a run performed.
type Stats struct {
	DistanceCalls int64
	SelectorCalls int64
	MaxSeedPool   int
	Expansions    int
}

// Result is the output of Run.
type Result struct {
	Entries []Entry
	Stats   Stats
}

// Reachability returns the reachability column of the ordering.
func (r *Result) Reachability() []float64 {
	out := make([]float64, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Reachability
	}
	return out
}

// Run orders n elements.
//
// Every element appears exactly once in the result. An error from the
// distance callback aborts the run; no partial result is returned.
func Run(n int, dist DistanceFunc, cfg Config) (*Result, error) {
	if dist == nil {
		return nil, ErrNilDistance
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := newEngine(n, dist, cfg)
	if err := e.run(); err != nil {
		return nil, err
	}

	return e.result(), nil
}

type engine struct {
	n        int
	dist     DistanceFunc
	maxDist  float64
	need     int
	selectFn quickselect.Func[int]
	sink     progress.Sink

	items     *arena.Arena
	neighbors *container.Unordered[int]
	seeds     *container.Unordered[int]
	order     []int
	stats     Stats
}

func newEngine(n int, dist DistanceFunc, cfg Config) *engine {
	selectFn := cfg.Select
	if selectFn == nil {
		selectFn = quickselect.Select[int]
	}

	return &engine{
		n:         n,
		dist:      dist,
		maxDist:   cfg.MaxDistance,
		need:      cfg.MinPoints - 1,
		selectFn:  selectFn,
		sink:      progress.OrNoop(cfg.Progress),
		items:     arena.New(n),
		neighbors: container.NewUnordered[int](min(n, 64)),
		seeds:     container.NewUnordered[int](min(n, 64)),
		order:     make([]int, 0, n),
	}
}

func (e *engine) run() error {
	for p := 0; p < e.n; p++ {
		if e.items.Processed(p) {
			continue
		}

		if err := e.expand(p); err != nil {
			return err
		}

		for e.seeds.Len() > 0 {
			q := e.seeds.RemoveAt(e.nextSeed())
			if err := e.expand(q); err != nil {
				return err
			}
		}
	}

	e.sink.Finish()

	return nil
}

// expand finalizes p and, when p is a core point, offers its unprocessed
// neighbors to the seed pool.
func (e *engine) expand(p int) error {
	if err := e.collectNeighbors(p); err != nil {
		return err
	}

	e.items.MarkProcessed(p)
	e.order = append(e.order, p)

	it := e.items.Item(p)
	it.CoreDistance = e.coreDistance()

	e.sink.Report(float64(len(e.order)) / float64(e.n))

	if arena.Defined(it.CoreDistance) {
		e.stats.Expansions++
		e.update(it.CoreDistance)
	}

	return nil
}

// collectNeighbors fills e.neighbors with every element strictly closer to p
// than the radius and caches each distance on the neighbor's item.
func (e *engine) collectNeighbors(p int) error {
	e.neighbors.Clear()

	for q := 0; q < e.n; q++ {
		if q == p {
			continue
		}

		d := e.dist(p, q)
		e.stats.DistanceCalls++

		if math.IsNaN(d) || d < 0 {
			return &ErrInvalidDistance{A: p, B: q, Value: d}
		}

		if d < e.maxDist {
			e.items.Item(q).DistanceToCurrent = d
			e.neighbors.Add(q)
		}
	}

	return nil
}

// coreDistance derives the core distance of the element whose neighborhood
// is in e.neighbors.
func (e *engine) coreDistance() float64 {
	size := e.neighbors.Len()
	if size < e.need {
		return arena.Undefined
	}
	if size == 0 {
		// MinPoints == 1 and the element is alone.
		return 0
	}

	k := min(e.need, size-1)
	buf := e.neighbors.Items()

	e.stats.SelectorCalls++
	idx := e.selectFn(buf, k, e.compareDistance)

	return e.items.Item(buf[idx]).DistanceToCurrent
}

func (e *engine) compareDistance(a, b int) int {
	return cmp.Compare(e.items.Item(a).DistanceToCurrent, e.items.Item(b).DistanceToCurrent)
}

// update lowers the reachability of every unprocessed neighbor to
// max(core, distance) and adds first-time neighbors to the seed pool.
func (e *engine) update(core float64) {
	for _, o := range e.neighbors.Items() {
		if e.items.Processed(o) {
			continue
		}

		it := e.items.Item(o)
		candidate := max(core, it.DistanceToCurrent)

		switch {
		case !arena.Defined(it.Reachability):
			it.Reachability = candidate
			e.seeds.Add(o)
		case candidate < it.Reachability:
			it.Reachability = candidate
		}
	}

	e.stats.MaxSeedPool = max(e.stats.MaxSeedPool, e.seeds.Len())
}

// nextSeed returns the pool position of the seed with the smallest
// reachability. The earliest position wins ties.
func (e *engine) nextSeed() int {
	seeds := e.seeds.Items()

	best := 0
	bestReach := e.items.Item(seeds[0]).Reachability
	for i := 1; i < len(seeds); i++ {
		if r := e.items.Item(seeds[i]).Reachability; r < bestReach {
			best, bestReach = i, r
		}
	}

	return best
}

func (e *engine) result() *Result {
	entries := make([]Entry, len(e.order))
	for i, idx := range e.order {
		it := e.items.Item(idx)
		entries[i] = Entry{
			Index:        idx,
			CoreDistance: it.CoreDistance,
			Reachability: it.Reachability,
		}
	}

	return &Result{Entries: entries, Stats: e.stats}
}
