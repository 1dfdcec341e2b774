// Package xi extracts clusters from a reachability plot.
//
// A cluster is a valley in the plot: a steep drop in reachability followed,
// after the dense region, by a steep rise. The sweep is a single pass over
// the ordering; each valley yields at most one cluster. Among start/end
// pairings holding at least MinPoints elements the first found is kept until
// a later one is at least two positions wider.
package xi

import (
	"errors"
	"math"

	"github.com/hupe1980/optics/progress"
)

var (
	// ErrInvalidXi is returned when Xi is outside (0, 1).
	ErrInvalidXi = errors.New("xi: steepness must be in (0, 1)")
	// ErrInvalidMinPoints is returned when MinPoints is less than one.
	ErrInvalidMinPoints = errors.New("xi: min points must be at least 1")
)

// Config controls an extraction.
type Config struct {
	// Xi is the relative drop or rise that makes a step steep.
	Xi float64
	// MinPoints is the smallest cluster size.
	MinPoints int
	// Progress receives the fraction of the ordering swept.
	Progress progress.Sink
}

// Validate checks the numeric parameters.
func (c Config) Validate() error {
	if math.IsNaN(c.Xi) || c.Xi <= 0 || c.Xi >= 1 {
		return ErrInvalidXi
	}
	if c.MinPoints < 1 {
		return ErrInvalidMinPoints
	}
	return nil
}

// Span is the half-open range [Start, End) of ordering positions.
type Span struct {
	Start, End int
}

// Len returns the number of positions covered.
func (s Span) Len() int { return s.End - s.Start }

// Partition is the outcome of an extraction. Clusters and Noise together
// cover every position of the ordering exactly once.
type Partition struct {
	Clusters []Span
	Noise    []Span
}

// NoiseCount returns the number of positions outside any cluster.
func (p *Partition) NoiseCount() int {
	var n int
	for _, s := range p.Noise {
		n += s.Len()
	}
	return n
}

func (p *Partition) addNoise(start, end int) {
	if end > start {
		p.Noise = append(p.Noise, Span{Start: start, End: end})
	}
}

// Extract partitions an ordering given its reachability values.
// Negative values mean undefined. reach is not modified.
func Extract(reach []float64, cfg Config) (*Partition, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sink := progress.OrNoop(cfg.Progress)
	defer sink.Finish()

	n := len(reach)
	part := &Partition{}

	plot, ok := fill(reach, cfg.Xi)
	if !ok {
		part.addNoise(0, n)
		return part, nil
	}

	s := sweep{
		plot:      plot,
		end:       n,
		keep:      1 - cfg.Xi,
		minPoints: cfg.MinPoints,
	}

	for index := 0; index < n; {
		sink.Report(float64(index) / float64(n))
		index = s.valley(index, part)
	}

	return part, nil
}

// fill copies reach, replaces undefined values with a ceiling derived from
// the largest defined value, and appends the ceiling as a terminal entry.
// It reports false when no value is defined.
func fill(reach []float64, xi float64) ([]float64, bool) {
	top, found := 0.0, false
	for _, v := range reach {
		if v >= 0 && !math.IsInf(v, 1) && (!found || v > top) {
			top, found = v, true
		}
	}
	if !found {
		return nil, false
	}

	ceiling := math.Inf(1)
	if d := 0.999 - xi; d > 0 {
		ceiling = top / d
	}

	plot := make([]float64, len(reach)+1)
	for i, v := range reach {
		if v < 0 {
			v = ceiling
		}
		plot[i] = v
	}
	plot[len(reach)] = ceiling

	return plot, true
}

type sweep struct {
	plot      []float64
	end       int
	keep      float64
	minPoints int
	starts    []int
}

func (s *sweep) steepDown(i int) bool { return s.plot[i]*s.keep >= s.plot[i+1] }
func (s *sweep) steepUp(i int) bool   { return s.plot[i] <= s.plot[i+1]*s.keep }
func (s *sweep) upward(i int) bool    { return s.plot[i] < s.plot[i+1] }
func (s *sweep) downward(i int) bool  { return s.plot[i] > s.plot[i+1] }

// valley handles the region starting at index and returns where the next
// region starts.
func (s *sweep) valley(index int, part *Partition) int {
	first := index
	for first < s.end && !s.steepDown(first) {
		first++
	}
	if first >= s.end {
		part.addNoise(index, s.end)
		return s.end
	}

	// Downward run: every steep step is a candidate start.
	s.starts = append(s.starts[:0], first)
	pos := first + 1
	for ; pos < s.end && !s.upward(pos); pos++ {
		if s.steepDown(pos) {
			s.starts = append(s.starts, pos)
		}
	}

	// Upward run: every steep step is a candidate end. A later pairing
	// replaces the best one only when pos-start exceeds the best length,
	// that is when it is at least two positions wider.
	best := Span{Start: -1}
	for ; pos < s.end && !s.downward(pos); pos++ {
		if !s.steepUp(pos) {
			continue
		}
		for _, start := range s.starts {
			if pos-start+1 < s.minPoints {
				continue
			}
			if best.Start < 0 || pos-start > best.Len() {
				best = Span{Start: start, End: pos + 1}
			}
		}
	}

	if best.Start < 0 {
		part.addNoise(index, pos)
		return pos
	}

	part.addNoise(index, best.Start)
	part.Clusters = append(part.Clusters, best)
	part.addNoise(best.End, pos)

	return pos
}
