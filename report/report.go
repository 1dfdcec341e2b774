// Package report serializes clustering runs.
//
// A Report names items by their dataset ids rather than input positions, so
// it can be read without the dataset. Reports are written through a
// codec.Codec into any blobstore.BlobStore.
package report

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/hupe1980/optics"
	"github.com/hupe1980/optics/blobstore"
	"github.com/hupe1980/optics/codec"
)

// Version is the report layout version.
const Version = 1

// ErrVersion is returned when reading a report with an unknown layout.
var ErrVersion = errors.New("report: unsupported version")

// Entry is one position of the reachability plot.
type Entry struct {
	ID           string  `json:"id"`
	CoreDistance float64 `json:"core_distance"`
	Reachability float64 `json:"reachability"`
	// Cluster is the cluster number, or -1 for not-clustered items.
	Cluster int `json:"cluster"`
}

// Report is the serializable outcome of one run.
type Report struct {
	Version   int           `json:"version"`
	RunID     string        `json:"run_id"`
	Name      string        `json:"name,omitempty"`
	Dataset   string        `json:"dataset,omitempty"`
	Metric    string        `json:"metric,omitempty"`
	Codec     string        `json:"codec"`
	CreatedAt time.Time     `json:"created_at"`
	Params    optics.Params `json:"params"`
	Clusters  [][]string    `json:"clusters"`
	Noise     []string      `json:"noise"`
	Ordering  []Entry       `json:"ordering"`
	Stats     optics.Stats  `json:"stats"`
}

// Summary is a compact view of a report.
type Summary struct {
	Items     int   `json:"items"`
	Clusters  int   `json:"clusters"`
	Sizes     []int `json:"sizes"`
	Noise     int   `json:"noise"`
	Clustered int   `json:"clustered"`
}

// New builds a report from a result. ids[i] names input item i.
func New[T any](res *optics.Result[T], ids []string) (*Report, error) {
	if len(ids) != len(res.Ordering) {
		return nil, fmt.Errorf("report: %d ids for %d items", len(ids), len(res.Ordering))
	}

	labels := res.Labels()

	r := &Report{
		Version:   Version,
		RunID:     res.RunID,
		CreatedAt: time.Now().UTC(),
		Params:    res.Params,
		Clusters:  make([][]string, 0, len(res.Clusters)),
		Noise:     make([]string, 0, len(res.NotClustered)),
		Ordering:  make([]Entry, len(res.Ordering)),
		Stats:     res.Stats,
	}

	for _, idx := range res.ClusterIndices() {
		members := make([]string, len(idx))
		for k, i := range idx {
			members[k] = ids[i]
		}
		r.Clusters = append(r.Clusters, members)
	}
	for _, i := range res.NoiseIndices() {
		r.Noise = append(r.Noise, ids[i])
	}
	for k, e := range res.Ordering {
		r.Ordering[k] = Entry{
			ID:           ids[e.Index],
			CoreDistance: e.CoreDistance,
			Reachability: e.Reachability,
			Cluster:      labels[e.Index],
		}
	}
	return r, nil
}

// Summary returns cluster counts and sizes.
func (r *Report) Summary() Summary {
	s := Summary{
		Items:    len(r.Ordering),
		Clusters: len(r.Clusters),
		Sizes:    make([]int, len(r.Clusters)),
		Noise:    len(r.Noise),
	}
	for i, c := range r.Clusters {
		s.Sizes[i] = len(c)
		s.Clustered += len(c)
	}
	return s
}

// Reachability returns the reachability column in cluster order.
func (r *Report) Reachability() []float64 {
	out := make([]float64, len(r.Ordering))
	for i, e := range r.Ordering {
		out[i] = e.Reachability
	}
	return out
}

// Path returns the conventional blob name of a run report below prefix.
func Path(prefix, runID string) string {
	return path.Join(prefix, runID+".json")
}

// Write encodes r with c and stores it under name.
func Write(ctx context.Context, store blobstore.BlobStore, name string, r *Report, c codec.Codec) error {
	c = codec.OrDefault(c)
	r.Codec = c.Name()

	data, err := c.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report %s: %w", r.RunID, err)
	}
	if err := store.Put(ctx, name, data); err != nil {
		return fmt.Errorf("store report %s: %w", name, err)
	}
	return nil
}

// Read loads the report stored under name. A nil codec decodes with
// codec.Default.
func Read(ctx context.Context, store blobstore.BlobStore, name string, c codec.Codec) (*Report, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, err
	}

	var r Report
	if err := codec.OrDefault(c).Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", name, err)
	}
	if r.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, r.Version)
	}
	return &r, nil
}
