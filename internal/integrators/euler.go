package integrators

import (
	"math"

	"github.com/san-kum/rode/internal/numeric"
	"gonum.org/v1/gonum/floats"
)

// Drive selects which quantity is handed to the derivative function.
type Drive int

const (
	// TimeDriven integrates y' = f(t): f receives t[i-1].
	TimeDriven Drive = iota
	// StateDriven integrates the autonomous y' = f(y): f receives y[i-1].
	StateDriven
)

func (d Drive) String() string {
	switch d {
	case TimeDriven:
		return "time"
	case StateDriven:
		return "state"
	default:
		return "unknown"
	}
}

// ParseDrive maps "time" and "state" to a Drive.
func ParseDrive(s string) (Drive, error) {
	switch s {
	case "", "time":
		return TimeDriven, nil
	case "state":
		return StateDriven, nil
	default:
		return 0, numeric.InvalidArgument("unknown drive %q", s)
	}
}

// Euler is a fixed-step explicit Euler integrator. The zero value is
// time driven.
type Euler struct {
	Drive Drive
}

func NewEuler() *Euler {
	return &Euler{}
}

// Uniform integrates over numPoints evenly spaced samples of [tStart, tEnd].
func (e *Euler) Uniform(f numeric.Func, y0, tStart, tEnd float64, numPoints int) (numeric.Trajectory, error) {
	if numPoints < 2 {
		return numeric.Trajectory{}, numeric.InvalidArgument("num_points must be >= 2, got %d", numPoints)
	}
	if !numeric.Finite(tStart, tEnd) {
		return numeric.Trajectory{}, numeric.InvalidArgument("non-finite interval [%g, %g]", tStart, tEnd)
	}

	h := (tEnd - tStart) / float64(numPoints-1)
	t := make([]float64, numPoints)
	floats.Span(t, tStart, tEnd)

	return e.WithGrid(f, y0, t, h)
}

// WithGrid integrates over a caller supplied time sequence with step h. The
// grid is copied into the returned Trajectory.
func (e *Euler) WithGrid(f numeric.Func, y0 float64, t []float64, h float64) (numeric.Trajectory, error) {
	if f == nil {
		return numeric.Trajectory{}, numeric.InvalidArgument("nil derivative function")
	}
	if len(t) < 2 {
		return numeric.Trajectory{}, numeric.InvalidArgument("time grid needs >= 2 points, got %d", len(t))
	}
	if h == 0 || math.IsNaN(h) || math.IsInf(h, 0) {
		return numeric.Trajectory{}, numeric.InvalidArgument("step h must be finite and non-zero, got %g", h)
	}

	times := make([]float64, len(t))
	copy(times, t)

	y := make([]float64, len(t))
	y[0] = y0
	for i := 1; i < len(y); i++ {
		arg := times[i-1]
		if e.Drive == StateDriven {
			arg = y[i-1]
		}
		y[i] = y[i-1] + h*f.Eval(arg)
	}

	return numeric.Trajectory{Times: times, Values: y}, nil
}

// IntegrateUniform solves y' = f(t) on numPoints evenly spaced samples of
// [tStart, tEnd] with h = (tEnd - tStart) / (numPoints - 1).
func IntegrateUniform(f numeric.Func, y0, tStart, tEnd float64, numPoints int) (numeric.Trajectory, error) {
	return NewEuler().Uniform(f, y0, tStart, tEnd, numPoints)
}

// IntegrateWithGrid solves y' = f(t) on the supplied grid with step h.
func IntegrateWithGrid(f numeric.Func, y0 float64, t []float64, h float64) (numeric.Trajectory, error) {
	return NewEuler().WithGrid(f, y0, t, h)
}
