package progress

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_Leaf(t *testing.T) {
	var got []float64
	root := NewTracker("leaf", func(f float64) { got = append(got, f) })

	root.Report(0.25)
	root.Report(0.5)
	root.Report(2)

	assert.Equal(t, 1.0, root.Progress())
	assert.Equal(t, []float64{0.25, 0.5, 1}, got)
	assert.Equal(t, "leaf", root.Name())
}

func TestTracker_WeightedChildren(t *testing.T) {
	var got []float64
	root := NewTracker("cluster", func(f float64) { got = append(got, f) })
	order := root.Child("order by reachability", 5)
	extract := root.Child("detect clusters", 5)

	order.Report(0.5)
	assert.InDelta(t, 0.25, root.Progress(), 1e-12)

	order.Finish()
	assert.InDelta(t, 0.5, root.Progress(), 1e-12)
	assert.True(t, order.Finished())
	assert.False(t, root.Finished())

	extract.Report(0.5)
	assert.InDelta(t, 0.75, root.Progress(), 1e-12)

	extract.Finish()
	assert.InDelta(t, 1, root.Progress(), 1e-12)

	require.Len(t, got, 4)
	assert.InDeltaSlice(t, []float64{0.25, 0.5, 0.75, 1}, got, 1e-12)
}

func TestTracker_UnevenWeights(t *testing.T) {
	root := NewTracker("root", nil)
	a := root.Child("a", 1)
	b := root.Child("b", 3)

	b.Finish()
	assert.InDelta(t, 0.75, root.Progress(), 1e-12)

	a.Report(0.5)
	assert.InDelta(t, 0.875, root.Progress(), 1e-12)
}

func TestTracker_NeverDecreases(t *testing.T) {
	var got []float64
	root := NewTracker("root", func(f float64) { got = append(got, f) })

	root.Report(0.6)
	root.Report(0.3)
	root.Report(0.6)
	root.Report(0.7)

	assert.Equal(t, []float64{0.6, 0.7}, got)
}

func TestTracker_FinishCascades(t *testing.T) {
	root := NewTracker("root", nil)
	c := root.Child("c", 1)
	gc := c.Child("gc", 1)

	root.Finish()
	assert.True(t, gc.Finished())

	gc.Report(0.1)
	assert.Equal(t, 1.0, gc.Progress())
}

func TestTracker_Concurrent(t *testing.T) {
	var (
		mu   sync.Mutex
		last float64
		ok   = true
	)
	root := NewTracker("root", func(f float64) {
		mu.Lock()
		defer mu.Unlock()
		if f < last {
			ok = false
		}
		last = f
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		c := root.Child("worker", 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 1; j <= 100; j++ {
				c.Report(float64(j) / 100)
			}
			c.Finish()
		}()
	}
	wg.Wait()

	assert.True(t, ok)
	assert.InDelta(t, 1, root.Progress(), 1e-12)
}

func TestFunc(t *testing.T) {
	var got []float64
	s := Func(func(f float64) { got = append(got, f) })

	s.Report(0.5)
	s.Finish()

	assert.Equal(t, []float64{0.5, 1}, got)
}

func TestOrNoop(t *testing.T) {
	assert.Equal(t, Noop{}, OrNoop(nil))

	var s Sink = Func(func(float64) {})
	assert.NotNil(t, OrNoop(s))
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	s := NewLogSink(logger, "cluster", time.Hour)
	s.Report(0.1)
	s.Report(0.2) // throttled
	s.Finish()

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "msg=progress"))
	assert.Contains(t, out, "percent=10")
	assert.Contains(t, out, "task finished")
	assert.Equal(t, 1.0, s.Last())
}

func TestLogSink_Unthrottled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	s := NewLogSink(logger, "x", 0)
	s.Report(0.1)
	s.Report(0.2)
	s.Report(0.3)

	assert.Equal(t, 3, strings.Count(buf.String(), "msg=progress"))
}

func TestMulti(t *testing.T) {
	var a, b []float64
	s := Multi(Func(func(f float64) { a = append(a, f) }), nil, Func(func(f float64) { b = append(b, f) }))

	s.Report(0.5)
	s.Finish()

	assert.Equal(t, []float64{0.5, 1}, a)
	assert.Equal(t, []float64{0.5, 1}, b)

	assert.NotPanics(t, func() { Multi().Report(0.3) })
}
