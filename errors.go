package optics

import (
	"errors"
	"fmt"

	"github.com/hupe1980/optics/internal/ordering"
	"github.com/hupe1980/optics/internal/resource"
	"github.com/hupe1980/optics/internal/xi"
)

var (
	// ErrInvalidMaxDistance is returned when MaxDistance is not a positive number.
	ErrInvalidMaxDistance = errors.New("max distance must be a positive number")

	// ErrInvalidMinPoints is returned when MinPoints is less than one.
	ErrInvalidMinPoints = errors.New("min points must be at least 1")

	// ErrInvalidXi is returned when Xi is outside (0, 1).
	ErrInvalidXi = errors.New("xi must be in (0, 1)")

	// ErrNilDistance is returned when no distance function is supplied.
	ErrNilDistance = errors.New("distance function is nil")

	// ErrMemoryLimitExceeded is returned when a run's estimated working set
	// exceeds the configured memory limit.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")
)

// ErrInvalidParams indicates a rejected configuration value.
//
// The matching sentinel (ErrInvalidMaxDistance, ErrInvalidMinPoints,
// ErrInvalidXi or ErrNilDistance) can be tested with errors.Is.
type ErrInvalidParams struct {
	Field string
	Value any
	cause error
}

func (e *ErrInvalidParams) Error() string {
	return fmt.Sprintf("invalid %s %v: %v", e.Field, e.Value, e.cause)
}

func (e *ErrInvalidParams) Unwrap() error { return e.cause }

// ErrInvalidDistance indicates that the distance function returned NaN or a
// negative value. A and B are input indices.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidDistance struct {
	A, B  int
	Value float64
	cause error
}

func (e *ErrInvalidDistance) Error() string {
	return fmt.Sprintf("invalid distance %v between items %d and %d", e.Value, e.A, e.B)
}

func (e *ErrInvalidDistance) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ide *ordering.ErrInvalidDistance
	if errors.As(err, &ide) {
		return &ErrInvalidDistance{A: ide.A, B: ide.B, Value: ide.Value, cause: err}
	}

	// Argument normalization.
	switch {
	case errors.Is(err, ordering.ErrInvalidMaxDistance):
		return fmt.Errorf("%w: %w", ErrInvalidMaxDistance, err)
	case errors.Is(err, ordering.ErrInvalidMinPoints), errors.Is(err, xi.ErrInvalidMinPoints):
		return fmt.Errorf("%w: %w", ErrInvalidMinPoints, err)
	case errors.Is(err, xi.ErrInvalidXi):
		return fmt.Errorf("%w: %w", ErrInvalidXi, err)
	case errors.Is(err, ordering.ErrNilDistance):
		return fmt.Errorf("%w: %w", ErrNilDistance, err)
	case errors.Is(err, resource.ErrMemoryLimitExceeded):
		return fmt.Errorf("%w: %w", ErrMemoryLimitExceeded, err)
	}

	return err
}
