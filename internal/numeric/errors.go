package numeric

import (
	"errors"
	"fmt"
)

// Domain errors for kernel operations.
var (
	// ErrInvalidArgument indicates malformed input: bad shapes, degenerate steps,
	// non-positive dimensions or out of range parameters.
	ErrInvalidArgument = errors.New("numeric: invalid argument")

	// ErrNonConvergence indicates an iterative solver exceeded its iteration cap.
	ErrNonConvergence = errors.New("numeric: iteration did not converge")
)

// InvalidArgument returns an error wrapping ErrInvalidArgument.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// ConvergenceError wraps ErrNonConvergence with the state of the solver when
// it gave up.
type ConvergenceError struct {
	Method     string
	Iterations int
	Iterate    float64
	Residual   float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s: no convergence after %d iterations (x=%g, residual=%g)",
		e.Method, e.Iterations, e.Iterate, e.Residual)
}

func (e *ConvergenceError) Unwrap() error {
	return ErrNonConvergence
}
