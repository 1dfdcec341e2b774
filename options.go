package optics

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/optics/progress"
	"github.com/hupe1980/optics/quickselect"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	progress         progress.Sink
	selectFn         quickselect.Func[int]
	concurrency      int
	memoryLimit      int64
}

// Option configures a Clusterer.
type Option func(*options)

// WithLogger configures structured logging for runs.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := optics.NewJSONLogger(slog.LevelInfo)
//	c, _ := optics.New(dist, optics.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring runs.
//
// Example:
//
//	metrics := &optics.BasicMetricsCollector{}
//	c, _ := optics.New(dist, optics.WithMetricsCollector(metrics))
//	// ... cluster ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithProgress sets the sink that receives the overall completion fraction
// of Cluster, Order and ClusterBatch. Reports of a single call never
// decrease. Concurrent calls on one Clusterer each report their own
// fraction to the same sink, so the sink then sees their reports
// interleaved; give each concurrent caller its own Clusterer when a single
// monotonic stream is needed.
func WithProgress(sink progress.Sink) Option {
	return func(o *options) {
		o.progress = sink
	}
}

// WithSelector replaces the order-statistic selection used to compute core
// distances. The default is quickselect.Select.
func WithSelector(fn quickselect.Func[int]) Option {
	return func(o *options) {
		o.selectFn = fn
	}
}

// WithConcurrency caps how many runs of a Clusterer execute at once, across
// Cluster, Order and ClusterBatch calls. Further runs wait for a slot.
// Values below one fall back to GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithMemoryLimit caps the estimated working set of all concurrently
// executing runs of a Clusterer. Runs wait for memory to become available;
// a run that can never fit fails. Zero disables the limit.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		progress:         progress.Noop{},
		selectFn:         quickselect.Select[int],
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	o.progress = progress.OrNoop(o.progress)
	if o.selectFn == nil {
		o.selectFn = quickselect.Select[int]
	}
	if o.concurrency < 1 {
		o.concurrency = runtime.GOMAXPROCS(0)
	}
	if o.memoryLimit < 0 {
		o.memoryLimit = 0
	}

	return o
}
