// Package promcollector exports clustering metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	c := promcollector.New(reg)
//	clusterer, _ := optics.New(dist, optics.WithMetricsCollector(c))
package promcollector

import (
	"time"

	"github.com/hupe1980/optics"
	"github.com/hupe1980/optics/progress"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "optics"

// Collector implements optics.MetricsCollector.
type Collector struct {
	opLatency     *prometheus.HistogramVec
	items         *prometheus.CounterVec
	distanceCalls prometheus.Counter
	clusters      prometheus.Histogram
	noise         prometheus.Counter
	batchRuns     *prometheus.CounterVec
	inFlight      prometheus.Gauge
	reserved      prometheus.Gauge
	progress      *prometheus.GaugeVec
}

var _ optics.MetricsCollector = (*Collector)(nil)

// New creates a collector and registers it with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of clustering operations",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"op", "status"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Items processed",
		}, []string{"op"}),
		distanceCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "distance_calls_total",
			Help:      "Distance function evaluations",
		}),
		clusters: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "clusters_per_run",
			Help:      "Clusters found per extraction",
			Buckets:   prometheus.LinearBuckets(0, 5, 10),
		}),
		noise: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "noise_items_total",
			Help:      "Items left unclustered",
		}),
		batchRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_runs_total",
			Help:      "Runs scheduled by batches",
		}, []string{"status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_in_flight",
			Help:      "Runs currently admitted",
		}),
		reserved: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reserved_memory_bytes",
			Help:      "Estimated working set reserved by admitted runs",
		}),
		progress: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "progress_ratio",
			Help:      "Completion of running tasks (0.0-1.0)",
		}, []string{"task"}),
	}

	reg.MustRegister(c.opLatency, c.items, c.distanceCalls, c.clusters, c.noise, c.batchRuns, c.inFlight, c.reserved, c.progress)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordOrdering implements optics.MetricsCollector.
func (c *Collector) RecordOrdering(items int, distanceCalls int64, d time.Duration, err error) {
	c.opLatency.WithLabelValues("order", status(err)).Observe(d.Seconds())
	c.items.WithLabelValues("order").Add(float64(items))
	c.distanceCalls.Add(float64(distanceCalls))
}

// RecordExtraction implements optics.MetricsCollector.
func (c *Collector) RecordExtraction(clusters, noise int, d time.Duration) {
	c.opLatency.WithLabelValues("extract", "success").Observe(d.Seconds())
	c.clusters.Observe(float64(clusters))
	c.noise.Add(float64(noise))
}

// RecordRun implements optics.MetricsCollector.
func (c *Collector) RecordRun(items int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("cluster", status(err)).Observe(d.Seconds())
	c.items.WithLabelValues("cluster").Add(float64(items))
}

// RecordBatch implements optics.MetricsCollector.
func (c *Collector) RecordBatch(count, failed int, d time.Duration) {
	st := "success"
	if failed > 0 {
		st = "error"
	}
	c.opLatency.WithLabelValues("batch", st).Observe(d.Seconds())
	c.batchRuns.WithLabelValues("success").Add(float64(count - failed))
	c.batchRuns.WithLabelValues("error").Add(float64(failed))
}

// RecordAdmission implements optics.MetricsCollector.
func (c *Collector) RecordAdmission(running int, reservedBytes int64) {
	c.inFlight.Set(float64(running))
	c.reserved.Set(float64(reservedBytes))
}

// Progress returns a sink that publishes the completion of task as a gauge.
func (c *Collector) Progress(task string) progress.Sink {
	return gaugeSink{g: c.progress.WithLabelValues(task)}
}

type gaugeSink struct {
	g prometheus.Gauge
}

func (s gaugeSink) Report(fraction float64) { s.g.Set(fraction) }

func (s gaugeSink) Finish() { s.g.Set(1) }
