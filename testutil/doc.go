// Package testutil provides testing utilities for optics.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Points
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.UniformVectors(100, 2)                 // uniform [0, 1)
//	pts, labels := rng.GaussianBlobs(centers, 50, 0.5) // labelled blobs
//
// # Partition Checks
//
//	err := testutil.CheckPartition(n, res.ClusterIndices(), res.NoiseIndices())
package testutil
