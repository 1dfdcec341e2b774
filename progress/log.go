package progress

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LogSink writes progress as structured log records, at most one per
// interval. The final record written by Finish is never throttled.
type LogSink struct {
	logger  *slog.Logger
	task    string
	limiter *rate.Limiter

	mu   sync.Mutex
	last float64
}

// NewLogSink creates a LogSink for task. A non-positive interval logs every
// report.
func NewLogSink(logger *slog.Logger, task string, interval time.Duration) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	return &LogSink{
		logger:  logger,
		task:    task,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Report implements Sink.
func (s *LogSink) Report(fraction float64) {
	s.mu.Lock()
	s.last = clamp(fraction)
	f := s.last
	s.mu.Unlock()

	if !s.limiter.Allow() {
		return
	}

	s.logger.Info("progress",
		"task", s.task,
		"percent", percent(f),
	)
}

// Finish implements Sink.
func (s *LogSink) Finish() {
	s.mu.Lock()
	s.last = 1
	s.mu.Unlock()

	s.logger.Info("task finished",
		"task", s.task,
	)
}

// Last returns the most recently reported fraction.
func (s *LogSink) Last() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.last
}

func percent(f float64) float64 {
	return float64(int(f*1000+0.5)) / 10
}
