// Package optics provides density-based clustering for Go.
//
// It implements OPTICS (Ordering Points To Identify the Clustering
// Structure) followed by ξ-extraction. OPTICS visits every item once and
// produces a reachability plot; valleys in that plot are clusters. Unlike
// DBSCAN, a single run finds clusters of different densities.
//
// Items can be of any type. The caller supplies the distance function; the
// distance package has stock metrics for float64 vectors.
//
// # Quick Start
//
//	points := [][]float64{{0, 0}, {0, 1}, {10, 10}, {10, 11}}
//	res, err := optics.Cluster(ctx, points, distance.SquaredL2, optics.Params{
//	    MaxDistance: 25,
//	    MinPoints:   2,
//	    Xi:          0.1,
//	})
//	for i, c := range res.Clusters {
//	    fmt.Println(i, c)
//	}
//	fmt.Println("noise:", res.NotClustered)
//
// # Parameters
//
//   - MaxDistance: neighborhood radius. Only pairs strictly closer than this
//     are neighbors. Larger values cost nothing extra (the neighbor search is
//     brute force) but merge more items into the plot.
//   - MinPoints: neighborhood size, counting the item itself, for an item to
//     be a core point. Also the smallest cluster size.
//   - Xi: relative reachability change, in (0, 1), that counts as a steep
//     edge of a cluster. Small values find more, shallower clusters.
//
// # Reusable Clusterers
//
// A Clusterer binds a distance function and options. It is safe for
// concurrent use and can run several parameter sets over the same items:
//
//	c, _ := optics.New(distance.L2,
//	    optics.WithLogger(optics.NewJSONLogger(slog.LevelInfo)),
//	    optics.WithConcurrency(4),
//	)
//	results, err := c.ClusterBatch(ctx, points, []optics.Params{p1, p2, p3})
//
// # Observability
//
// Runs log through *Logger (slog), report counters through a
// MetricsCollector (see the promcollector package for Prometheus) and report
// completion through a progress.Sink.
//
// # Complexity
//
// A run evaluates the distance function n*(n-1) times and keeps O(n) state.
// Every run allocates its own state; nothing is cached between runs.
package optics
