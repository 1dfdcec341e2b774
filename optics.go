package optics

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/optics/internal/arena"
	"github.com/hupe1980/optics/internal/ordering"
	"github.com/hupe1980/optics/internal/resource"
	"github.com/hupe1980/optics/internal/xi"
	"github.com/hupe1980/optics/progress"
)

// DistanceFunc returns the dissimilarity of two items.
//
// It must be symmetric and return a non-negative number. It is never called
// with an item and itself.
type DistanceFunc[T any] func(a, b T) float64

// Params are the clustering parameters.
type Params struct {
	// MaxDistance is the exclusive neighborhood radius, in the units of the
	// distance function.
	MaxDistance float64 `json:"max_distance" yaml:"max_distance"`
	// MinPoints is the neighborhood size that makes an item a core point
	// and the smallest cluster size.
	MinPoints int `json:"min_points" yaml:"min_points"`
	// Xi is the relative reachability drop or rise that delimits a cluster.
	Xi float64 `json:"xi" yaml:"xi"`
}

// Validate reports the first invalid field as an *ErrInvalidParams.
func (p Params) Validate() error {
	if err := validateOrdering(p.MaxDistance, p.MinPoints); err != nil {
		return err
	}
	if math.IsNaN(p.Xi) || p.Xi <= 0 || p.Xi >= 1 {
		return &ErrInvalidParams{Field: "Xi", Value: p.Xi, cause: ErrInvalidXi}
	}
	return nil
}

func validateOrdering(maxDistance float64, minPoints int) error {
	if math.IsNaN(maxDistance) || maxDistance <= 0 {
		return &ErrInvalidParams{Field: "MaxDistance", Value: maxDistance, cause: ErrInvalidMaxDistance}
	}
	if minPoints < 1 {
		return &ErrInvalidParams{Field: "MinPoints", Value: minPoints, cause: ErrInvalidMinPoints}
	}
	return nil
}

// Clusterer runs OPTICS over slices of T.
//
// A Clusterer holds no per-run state and is safe for concurrent use.
type Clusterer[T any] struct {
	dist      DistanceFunc[T]
	opts      options
	resources *resource.Controller

	// admissionMu orders RecordAdmission calls so the last report matches
	// the controller state.
	admissionMu sync.Mutex
}

// New creates a Clusterer for the given distance function.
func New[T any](dist DistanceFunc[T], optFns ...Option) (*Clusterer[T], error) {
	if dist == nil {
		return nil, &ErrInvalidParams{Field: "Distance", Value: nil, cause: ErrNilDistance}
	}

	opts := applyOptions(optFns)

	return &Clusterer[T]{
		dist: dist,
		opts: opts,
		resources: resource.NewController(resource.Config{
			MemoryLimitBytes:  opts.memoryLimit,
			MaxConcurrentRuns: int64(opts.concurrency),
		}),
	}, nil
}

// Cluster is a convenience wrapper that creates a Clusterer and runs it once.
func Cluster[T any](ctx context.Context, items []T, dist DistanceFunc[T], p Params, optFns ...Option) (*Result[T], error) {
	c, err := New(dist, optFns...)
	if err != nil {
		return nil, err
	}
	return c.Cluster(ctx, items, p)
}

// Cluster orders items by reachability and extracts clusters from the
// ordering.
//
// Parameters are validated and ctx is checked before any work starts. Once
// started, a run is not interrupted by ctx.
func (c *Clusterer[T]) Cluster(ctx context.Context, items []T, p Params) (*Result[T], error) {
	return c.run(ctx, items, p, c.opts.progress)
}

// Order computes only the reachability ordering, for callers that want to
// inspect the reachability plot or apply their own extraction.
func (c *Clusterer[T]) Order(ctx context.Context, items []T, maxDistance float64, minPoints int) (*Ordering, error) {
	runID := uuid.NewString()
	logger := c.opts.logger.WithRunID(runID)

	if err := validateOrdering(maxDistance, minPoints); err != nil {
		logger.LogOrdering(ctx, len(items), Stats{}, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	release, err := c.admit(ctx, len(items))
	if err != nil {
		return nil, err
	}
	defer release()

	ord, stats, err := c.order(ctx, items, maxDistance, minPoints, c.opts.progress, logger)
	if err != nil {
		return nil, err
	}

	return &Ordering{
		RunID:   runID,
		Entries: toEntries(ord.Entries),
		Stats:   stats,
	}, nil
}

// ClusterBatch clusters the same items once per parameter set, running up to
// the configured concurrency in parallel. Results are returned in the order
// of params.
//
// All parameter sets are validated before any run starts. The first failing
// run cancels the batch; no partial results are returned.
func (c *Clusterer[T]) ClusterBatch(ctx context.Context, items []T, params []Params) ([]*Result[T], error) {
	start := time.Now()
	logger := c.opts.logger.WithCount(len(params))

	for i, p := range params {
		if err := p.Validate(); err != nil {
			err = fmt.Errorf("params[%d]: %w", i, err)
			c.opts.metricsCollector.RecordBatch(len(params), len(params), time.Since(start))
			logger.LogBatch(ctx, len(params), len(params), time.Since(start))
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]*Result[T], len(params))

	tracker := progress.NewTracker("batch", c.opts.progress.Report)
	runs := make([]*progress.Tracker, len(params))
	for i := range params {
		runs[i] = tracker.Child(fmt.Sprintf("run %d", i), 1)
	}

	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.concurrency)

	for i, p := range params {
		if gctx.Err() != nil {
			break
		}
		i, p := i, p
		g.Go(func() error {
			res, err := c.run(gctx, items, p, runs[i])
			if err != nil {
				failed.Add(1)
				return fmt.Errorf("batch run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	duration := time.Since(start)
	c.opts.metricsCollector.RecordBatch(len(params), int(failed.Load()), duration)
	logger.LogBatch(ctx, len(params), int(failed.Load()), duration)

	if err != nil {
		return nil, err
	}

	c.opts.progress.Finish()

	return results, nil
}

func (c *Clusterer[T]) run(ctx context.Context, items []T, p Params, sink progress.Sink) (*Result[T], error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := c.opts.logger.WithRunID(runID).WithParams(p)

	res, err := c.cluster(ctx, items, p, runID, sink, logger)

	duration := time.Since(start)
	c.opts.metricsCollector.RecordRun(len(items), duration, err)

	if err != nil {
		logger.LogRun(ctx, len(items), 0, 0, duration, err)
		return nil, err
	}

	logger.LogRun(ctx, len(items), len(res.Clusters), len(res.NotClustered), duration, nil)
	sink.Finish()

	return res, nil
}

func (c *Clusterer[T]) cluster(ctx context.Context, items []T, p Params, runID string, sink progress.Sink, logger *Logger) (*Result[T], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	release, err := c.admit(ctx, len(items))
	if err != nil {
		return nil, err
	}
	defer release()

	tracker := progress.NewTracker("cluster", sink.Report)
	orderTask := tracker.Child("order by reachability", 5)
	extractTask := tracker.Child("detect clusters", 5)

	ord, stats, err := c.order(ctx, items, p.MaxDistance, p.MinPoints, orderTask, logger)
	if err != nil {
		return nil, err
	}

	extractStart := time.Now()
	part, err := xi.Extract(ord.Reachability(), xi.Config{
		Xi:        p.Xi,
		MinPoints: p.MinPoints,
		Progress:  extractTask,
	})
	if err != nil {
		return nil, translateError(err)
	}
	stats.ExtractionDuration = time.Since(extractStart)

	c.opts.metricsCollector.RecordExtraction(len(part.Clusters), part.NoiseCount(), stats.ExtractionDuration)
	logger.LogExtraction(ctx, len(part.Clusters), part.NoiseCount(), stats.ExtractionDuration)

	res := newResult(items, p, runID, ord, part)
	res.Stats = stats

	return res, nil
}

func (c *Clusterer[T]) order(ctx context.Context, items []T, maxDistance float64, minPoints int, sink progress.Sink, logger *Logger) (*ordering.Result, Stats, error) {
	start := time.Now()

	ord, err := ordering.Run(len(items), func(i, j int) float64 {
		return c.dist(items[i], items[j])
	}, ordering.Config{
		MaxDistance: maxDistance,
		MinPoints:   minPoints,
		Select:      c.opts.selectFn,
		Progress:    sink,
	})

	stats := Stats{Items: len(items), OrderingDuration: time.Since(start)}
	if ord != nil {
		stats.DistanceCalls = ord.Stats.DistanceCalls
		stats.SelectorCalls = ord.Stats.SelectorCalls
		stats.MaxSeedPool = ord.Stats.MaxSeedPool
		stats.Expansions = ord.Stats.Expansions
	}

	err = translateError(err)
	c.opts.metricsCollector.RecordOrdering(len(items), stats.DistanceCalls, stats.OrderingDuration, err)
	logger.LogOrdering(ctx, len(items), stats, err)

	if err != nil {
		return nil, stats, err
	}

	return ord, stats, nil
}

// admit takes a run slot and reserves the working set for n items, waiting
// while the Clusterer is at its concurrency or memory limit.
func (c *Clusterer[T]) admit(ctx context.Context, n int) (func(), error) {
	release, err := c.resources.Admit(ctx, workingSetBytes(n))
	if err != nil {
		return nil, translateError(err)
	}

	c.admissionMu.Lock()
	c.recordAdmission()
	c.admissionMu.Unlock()

	return func() {
		c.admissionMu.Lock()
		defer c.admissionMu.Unlock()

		release()
		c.recordAdmission()
	}, nil
}

func (c *Clusterer[T]) recordAdmission() {
	c.opts.metricsCollector.RecordAdmission(int(c.resources.Running()), c.resources.MemoryUsage())
}

// workingSetBytes estimates the peak allocation of one run over n items:
// the arena plus the ordering, reachability copy and result slices.
func workingSetBytes(n int) int64 {
	const perItem = 24 + 24 + 8 + 8 + 8 + 8
	return arena.SizeOf(n) + int64(n)*perItem
}
