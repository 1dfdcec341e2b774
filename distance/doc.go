// Package distance provides stock dissimilarity functions for float64 points.
//
// Every function here returns a non-negative value and zero for identical
// inputs, which is what the clustering engine expects from a distance oracle.
//
// # Supported Metrics
//
//   - MetricSquaredL2: squared Euclidean distance (default)
//   - MetricL2: Euclidean distance
//   - MetricManhattan: sum of absolute coordinate differences
//   - MetricChebyshev: largest absolute coordinate difference
//   - MetricCosine: one minus cosine similarity
//   - MetricHaversine: great-circle distance in kilometers between
//     [latitude, longitude] pairs given in degrees
//   - MetricHamming: number of differing coordinates
//
// # Usage
//
//	fn, err := distance.Provider(distance.MetricL2)
//	d := fn([]float64{0, 0}, []float64{3, 4}) // 5
//
// Vectors are assumed to have equal length; that is the caller's
// responsibility.
package distance
