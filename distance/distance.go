package distance

import (
	"fmt"
	"math"
	"strings"
)

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0088

// SquaredL2 calculates the squared Euclidean distance between two vectors.
func SquaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// L2 calculates the Euclidean distance between two vectors.
func L2(a, b []float64) float64 {
	return math.Sqrt(SquaredL2(a, b))
}

// Manhattan calculates the L1 distance between two vectors.
func Manhattan(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

// Chebyshev calculates the L-infinity distance between two vectors.
func Chebyshev(a, b []float64) float64 {
	var m float64
	for i := range a {
		m = max(m, math.Abs(a[i]-b[i]))
	}
	return m
}

// Cosine returns 1 - cos(a, b), clamped to [0, 2].
// Two zero vectors are at distance 0; a zero and a non-zero vector at 1.
func Cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}

	switch {
	case na == 0 && nb == 0:
		return 0
	case na == 0 || nb == 0:
		return 1
	}

	d := 1 - dot/math.Sqrt(na*nb)
	return min(max(d, 0), 2)
}

// Haversine returns the great-circle distance in kilometers between two
// points given as [latitude, longitude] in degrees.
func Haversine(a, b []float64) float64 {
	lat1, lat2 := radians(a[0]), radians(b[0])
	dLat := lat2 - lat1
	dLon := radians(b[1] - a[1])

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	h = min(max(h, 0), 1)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// Hamming returns the number of coordinates in which a and b differ.
func Hamming(a, b []float64) float64 {
	var n int
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	return float64(n)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// Metric identifies a stock distance function.
type Metric int

const (
	MetricSquaredL2 Metric = iota
	MetricL2
	MetricManhattan
	MetricChebyshev
	MetricCosine
	MetricHaversine
	MetricHamming
)

var metricNames = map[Metric]string{
	MetricSquaredL2: "squared-l2",
	MetricL2:        "l2",
	MetricManhattan: "manhattan",
	MetricChebyshev: "chebyshev",
	MetricCosine:    "cosine",
	MetricHaversine: "haversine",
	MetricHamming:   "hamming",
}

func (m Metric) String() string {
	if name, ok := metricNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", m)
}

// ParseMetric resolves a metric by name. Matching is case-insensitive and
// accepts a few common aliases ("euclidean", "l1", "linf").
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "squared-l2", "sql2", "l2sq", "":
		return MetricSquaredL2, nil
	case "l2", "euclidean":
		return MetricL2, nil
	case "manhattan", "l1", "cityblock":
		return MetricManhattan, nil
	case "chebyshev", "linf":
		return MetricChebyshev, nil
	case "cosine":
		return MetricCosine, nil
	case "haversine":
		return MetricHaversine, nil
	case "hamming":
		return MetricHamming, nil
	default:
		return 0, fmt.Errorf("unknown distance metric %q", name)
	}
}

// Func is a function type for distance calculation.
type Func func(a, b []float64) float64

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricSquaredL2:
		return SquaredL2, nil
	case MetricL2:
		return L2, nil
	case MetricManhattan:
		return Manhattan, nil
	case MetricChebyshev:
		return Chebyshev, nil
	case MetricCosine:
		return Cosine, nil
	case MetricHaversine:
		return Haversine, nil
	case MetricHamming:
		return Hamming, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

// MinDimension returns the smallest vector length the metric accepts.
func (m Metric) MinDimension() int {
	if m == MetricHaversine {
		return 2
	}
	return 1
}
