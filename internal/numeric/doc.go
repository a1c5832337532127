// Package numeric provides the primitives shared by the rode kernels.
//
// The package defines the small vocabulary every kernel speaks:
//
//   - [Func]: a caller supplied scalar function y = f(x)
//   - [Trajectory]: the (t, y) samples produced by an integration
//   - [ErrInvalidArgument], [ErrNonConvergence]: the error taxonomy
//   - [ParallelFor]: chunked fan-out over independent index ranges
//
// # Errors
//
// Every kernel fails fast on malformed input with an error that matches
// [ErrInvalidArgument]. Iterative solvers that hit their iteration cap
// return a [*ConvergenceError] carrying the last iterate and residual:
//
//	nu, err := kepler.Propagate(el, tof)
//	var cerr *numeric.ConvergenceError
//	if errors.As(err, &cerr) {
//	    // decide whether cerr.Iterate is good enough
//	}
package numeric
