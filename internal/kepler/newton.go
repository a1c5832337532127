package kepler

import (
	"math"

	"github.com/san-kum/rode/internal/numeric"
)

const (
	newtonTolerance = 1e-12
	seriesTolerance = 1e-16
	seriesMaxTerms  = 1000
)

// Iteration caps of the Newton solvers.
var (
	ellipticMaxIter   = 50
	hyperbolicMaxIter = 100
	nearParabolicIter = 50
)

// newton runs Newton-Raphson from x0 until the step falls below
// newtonTolerance.
func newton(method string, f, df func(float64) float64, x0 float64, maxIter int) (float64, error) {
	x := x0
	for i := 0; i < maxIter; i++ {
		next := x - f(x)/df(x)
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return 0, &numeric.ConvergenceError{Method: method, Iterations: i + 1, Iterate: x, Residual: f(x)}
		}
		if math.Abs(next-x) < newtonTolerance {
			return next, nil
		}
		x = next
	}
	return 0, &numeric.ConvergenceError{Method: method, Iterations: maxIter, Iterate: x, Residual: f(x)}
}
