package optics

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus;
// the promcollector package ships such an implementation.
type MetricsCollector interface {
	// RecordOrdering is called after each reachability ordering.
	// items is the input size, distanceCalls the number of oracle
	// evaluations, err is nil if successful.
	RecordOrdering(items int, distanceCalls int64, duration time.Duration, err error)

	// RecordExtraction is called after each cluster extraction.
	RecordExtraction(clusters, noise int, duration time.Duration)

	// RecordRun is called after each Cluster call, including rejected ones.
	RecordRun(items int, duration time.Duration, err error)

	// RecordBatch is called after each ClusterBatch call.
	// count is the number of parameter sets, failed the number that failed.
	RecordBatch(count, failed int, duration time.Duration)

	// RecordAdmission is called whenever a run is admitted or releases its
	// slot. running is the number of runs in flight, reservedBytes their
	// summed working-set estimate.
	RecordAdmission(running int, reservedBytes int64)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOrdering(int, int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordExtraction(int, int, time.Duration)        {}
func (NoopMetricsCollector) RecordRun(int, time.Duration, error)             {}
func (NoopMetricsCollector) RecordBatch(int, int, time.Duration)             {}
func (NoopMetricsCollector) RecordAdmission(int, int64)                      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	OrderingCount      atomic.Int64
	OrderingErrors     atomic.Int64
	OrderingTotalNanos atomic.Int64
	DistanceCalls      atomic.Int64
	ExtractionCount    atomic.Int64
	ClustersFound      atomic.Int64
	NoiseItems         atomic.Int64
	RunCount           atomic.Int64
	RunErrors          atomic.Int64
	RunItems           atomic.Int64
	RunTotalNanos      atomic.Int64
	BatchCount         atomic.Int64
	BatchRuns          atomic.Int64
	BatchFailed        atomic.Int64
	RunsInFlight       atomic.Int64
	PeakRunsInFlight   atomic.Int64
	ReservedBytes      atomic.Int64
}

// RecordOrdering implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOrdering(items int, distanceCalls int64, duration time.Duration, err error) {
	b.OrderingCount.Add(1)
	b.OrderingTotalNanos.Add(duration.Nanoseconds())
	b.DistanceCalls.Add(distanceCalls)
	if err != nil {
		b.OrderingErrors.Add(1)
	}
}

// RecordExtraction implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExtraction(clusters, noise int, _ time.Duration) {
	b.ExtractionCount.Add(1)
	b.ClustersFound.Add(int64(clusters))
	b.NoiseItems.Add(int64(noise))
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(items int, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunItems.Add(int64(items))
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(count, failed int, _ time.Duration) {
	b.BatchCount.Add(1)
	b.BatchRuns.Add(int64(count))
	b.BatchFailed.Add(int64(failed))
}

// RecordAdmission implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdmission(running int, reservedBytes int64) {
	n := int64(running)
	b.RunsInFlight.Store(n)
	b.ReservedBytes.Store(reservedBytes)
	for {
		peak := b.PeakRunsInFlight.Load()
		if n <= peak || b.PeakRunsInFlight.CompareAndSwap(peak, n) {
			return
		}
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		OrderingCount:    b.OrderingCount.Load(),
		OrderingErrors:   b.OrderingErrors.Load(),
		OrderingAvgNanos: avg(b.OrderingTotalNanos.Load(), b.OrderingCount.Load()),
		DistanceCalls:    b.DistanceCalls.Load(),
		ExtractionCount:  b.ExtractionCount.Load(),
		ClustersFound:    b.ClustersFound.Load(),
		NoiseItems:       b.NoiseItems.Load(),
		RunCount:         b.RunCount.Load(),
		RunErrors:        b.RunErrors.Load(),
		RunItems:         b.RunItems.Load(),
		RunAvgNanos:      avg(b.RunTotalNanos.Load(), b.RunCount.Load()),
		BatchCount:       b.BatchCount.Load(),
		BatchRuns:        b.BatchRuns.Load(),
		BatchFailed:      b.BatchFailed.Load(),
		RunsInFlight:     b.RunsInFlight.Load(),
		PeakRunsInFlight: b.PeakRunsInFlight.Load(),
		ReservedBytes:    b.ReservedBytes.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector counters.
type BasicMetricsStats struct {
	OrderingCount    int64
	OrderingErrors   int64
	OrderingAvgNanos int64
	DistanceCalls    int64
	ExtractionCount  int64
	ClustersFound    int64
	NoiseItems       int64
	RunCount         int64
	RunErrors        int64
	RunItems         int64
	RunAvgNanos      int64
	BatchCount       int64
	BatchRuns        int64
	BatchFailed      int64
	RunsInFlight     int64
	PeakRunsInFlight int64
	ReservedBytes    int64
}
