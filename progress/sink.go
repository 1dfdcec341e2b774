package progress

// Sink receives progress reports.
//
// Report is called with a completion fraction in [0, 1]. Finish is called
// once when the work is done. Implementations used across goroutines must be
// safe for concurrent use.
type Sink interface {
	Report(fraction float64)
	Finish()
}

// Noop discards all reports.
type Noop struct{}

// Report implements Sink.
func (Noop) Report(float64) {}

// Finish implements Sink.
func (Noop) Finish() {}

// OrNoop returns s, or Noop when s is nil.
func OrNoop(s Sink) Sink {
	if s == nil {
		return Noop{}
	}
	return s
}

// Func adapts a plain callback to a Sink. Finish reports 1.
type Func func(fraction float64)

// Report implements Sink.
func (f Func) Report(fraction float64) { f(fraction) }

// Finish implements Sink.
func (f Func) Finish() { f(1) }

func clamp(f float64) float64 {
	switch {
	case f != f || f < 0: // NaN
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// Multi fans reports out to every non-nil sink.
func Multi(sinks ...Sink) Sink {
	var m multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

type multi []Sink

func (m multi) Report(fraction float64) {
	for _, s := range m {
		s.Report(fraction)
	}
}

func (m multi) Finish() {
	for _, s := range m {
		s.Finish()
	}
}
