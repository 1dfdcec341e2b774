package promcollector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/optics"
	"github.com/hupe1980/optics/distance"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Cluster(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	clusterer, err := optics.New(distance.SquaredL2, optics.WithMetricsCollector(c))
	require.NoError(t, err)

	res, err := clusterer.Cluster(context.Background(), [][]float64{{0}, {20}, {200}, {255}}, optics.Params{
		MaxDistance: 4000,
		MinPoints:   2,
		Xi:          0.1,
	})
	require.NoError(t, err)
	require.Len(t, res.Clusters, 2)

	assert.Equal(t, 12.0, testutil.ToFloat64(c.distanceCalls))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.items.WithLabelValues("order")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.items.WithLabelValues("cluster")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.noise))
	assert.Equal(t, 1, testutil.CollectAndCount(c.clusters))

	_, err = clusterer.Cluster(context.Background(), [][]float64{{0}}, optics.Params{MaxDistance: -1, MinPoints: 2, Xi: 0.1})
	require.Error(t, err)

	// order, extract, cluster/success, cluster/error
	assert.Equal(t, 4, testutil.CollectAndCount(c.opLatency))
}

func TestCollector_RecordBatch(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.RecordBatch(3, 1, time.Millisecond)
	c.RecordBatch(2, 0, time.Millisecond)

	assert.Equal(t, 4.0, testutil.ToFloat64(c.batchRuns.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.batchRuns.WithLabelValues("error")))
}

func TestCollector_RecordOrderingError(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.RecordOrdering(10, 5, time.Millisecond, errors.New("bad distance"))

	assert.Equal(t, 5.0, testutil.ToFloat64(c.distanceCalls))
	assert.Equal(t, 1, testutil.CollectAndCount(c.opLatency))
}

func TestCollector_Admission(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.RecordAdmission(2, 1024)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.inFlight))
	assert.Equal(t, 1024.0, testutil.ToFloat64(c.reserved))

	clusterer, err := optics.New(distance.SquaredL2,
		optics.WithMetricsCollector(c),
		optics.WithMemoryLimit(1<<20),
	)
	require.NoError(t, err)

	_, err = clusterer.Cluster(context.Background(), [][]float64{{0}, {20}, {200}, {255}}, optics.Params{
		MaxDistance: 4000,
		MinPoints:   2,
		Xi:          0.1,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, testutil.ToFloat64(c.inFlight))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.reserved))
}

func TestCollector_Progress(t *testing.T) {
	c := New(prometheus.NewRegistry())

	sink := c.Progress("points.csv")
	sink.Report(0.25)
	assert.Equal(t, 0.25, testutil.ToFloat64(c.progress.WithLabelValues("points.csv")))

	sink.Finish()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.progress.WithLabelValues("points.csv")))
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
