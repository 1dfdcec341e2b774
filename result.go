package optics

import (
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/optics/internal/ordering"
	"github.com/hupe1980/optics/internal/xi"
)

// Undefined is the CoreDistance of a non-core item and the Reachability of
// the first item of every expansion.
const Undefined = -1.0

// Entry is one position of the cluster ordering.
type Entry struct {
	// Index is the item's position in the input slice.
	Index int `json:"index"`
	// CoreDistance is Undefined unless the item is a core point.
	CoreDistance float64 `json:"core_distance"`
	// Reachability is Undefined when the item started a new expansion.
	Reachability float64 `json:"reachability"`
}

// IsCore reports whether the item had enough neighbors to be a core point.
func (e Entry) IsCore() bool { return e.CoreDistance >= 0 }

// Reachable reports whether the item was reached from an earlier item.
func (e Entry) Reachable() bool { return e.Reachability >= 0 }

// Stats describes the work a run performed.
type Stats struct {
	Items              int           `json:"items"`
	DistanceCalls      int64         `json:"distance_calls"`
	SelectorCalls      int64         `json:"selector_calls"`
	MaxSeedPool        int           `json:"max_seed_pool"`
	Expansions         int           `json:"expansions"`
	OrderingDuration   time.Duration `json:"ordering_duration"`
	ExtractionDuration time.Duration `json:"extraction_duration"`
}

// Ordering is the reachability plot of a dataset.
type Ordering struct {
	RunID   string
	Entries []Entry
	Stats   Stats
}

// Reachability returns the reachability column in cluster order.
func (o *Ordering) Reachability() []float64 {
	out := make([]float64, len(o.Entries))
	for i, e := range o.Entries {
		out[i] = e.Reachability
	}
	return out
}

// Result is the outcome of a clustering run.
//
// Clusters and NotClustered together contain every input item exactly once.
// Items inside a cluster, and the not-clustered items, appear in cluster
// order.
type Result[T any] struct {
	RunID        string
	Params       Params
	Clusters     [][]T
	NotClustered []T
	Ordering     []Entry
	Stats        Stats

	clusterIdx [][]int
	noiseIdx   []int
}

// ClusterIndices returns the input indices of each cluster.
func (r *Result[T]) ClusterIndices() [][]int {
	out := make([][]int, len(r.clusterIdx))
	for i, idx := range r.clusterIdx {
		out[i] = append([]int(nil), idx...)
	}
	return out
}

// NoiseIndices returns the input indices of the not-clustered items.
func (r *Result[T]) NoiseIndices() []int {
	return append([]int(nil), r.noiseIdx...)
}

// Labels returns the cluster number of every input item, or -1 for items
// that are not clustered.
func (r *Result[T]) Labels() []int {
	labels := make([]int, len(r.Ordering))
	for i := range labels {
		labels[i] = -1
	}
	for c, idx := range r.clusterIdx {
		for _, i := range idx {
			labels[i] = c
		}
	}
	return labels
}

// ClusteredCount returns how many items belong to some cluster.
func (r *Result[T]) ClusteredCount() int {
	return len(r.Ordering) - len(r.noiseIdx)
}

// ClusterBitmaps returns one bitmap of input indices per cluster.
func (r *Result[T]) ClusterBitmaps() []*roaring.Bitmap {
	out := make([]*roaring.Bitmap, len(r.clusterIdx))
	for i, idx := range r.clusterIdx {
		out[i] = bitmapOf(idx)
	}
	return out
}

// NoiseBitmap returns the input indices of the not-clustered items.
func (r *Result[T]) NoiseBitmap() *roaring.Bitmap {
	return bitmapOf(r.noiseIdx)
}

func bitmapOf(idx []int) *roaring.Bitmap {
	bm := roaring.New()
	for _, i := range idx {
		bm.Add(uint32(i))
	}
	return bm
}

func toEntries(src []ordering.Entry) []Entry {
	out := make([]Entry, len(src))
	for i, e := range src {
		out[i] = Entry{Index: e.Index, CoreDistance: e.CoreDistance, Reachability: e.Reachability}
	}
	return out
}

func newResult[T any](items []T, p Params, runID string, ord *ordering.Result, part *xi.Partition) *Result[T] {
	res := &Result[T]{
		RunID:        runID,
		Params:       p,
		Clusters:     make([][]T, 0, len(part.Clusters)),
		NotClustered: make([]T, 0, part.NoiseCount()),
		Ordering:     toEntries(ord.Entries),
		clusterIdx:   make([][]int, 0, len(part.Clusters)),
		noiseIdx:     make([]int, 0, part.NoiseCount()),
	}

	for _, span := range part.Clusters {
		idx := make([]int, 0, span.Len())
		members := make([]T, 0, span.Len())
		for pos := span.Start; pos < span.End; pos++ {
			i := ord.Entries[pos].Index
			idx = append(idx, i)
			members = append(members, items[i])
		}
		res.clusterIdx = append(res.clusterIdx, idx)
		res.Clusters = append(res.Clusters, members)
	}

	for _, span := range part.Noise {
		for pos := span.Start; pos < span.End; pos++ {
			i := ord.Entries[pos].Index
			res.noiseIdx = append(res.noiseIdx, i)
			res.NotClustered = append(res.NotClustered, items[i])
		}
	}

	return res
}
