// Package kepler propagates the true anomaly of a two-body orbit over a time
// of flight.
//
// The propagator works on classical orbital elements and handles every conic:
//
//   - elliptic orbits through Kepler's equation E - e sin E = M
//   - hyperbolic orbits through e sinh F - F = M
//   - parabolic orbits through Barker's equation, solved in closed form
//
// Orbits whose eccentricity lies within [NearParabolicBand] of one use the
// near-parabolic series of Farnocchia et al. (2013) whenever the body is close
// to periapsis, where the elliptic and hyperbolic forms lose precision. This
// keeps the result continuous as the eccentricity crosses one.
//
// # Example
//
//	el := kepler.Elements{K: 398600.4418, P: 6780.85, Ecc: 0.0013, Nu: 0.81}
//	nu, err := kepler.Propagate(el, 20000)
//
// All functions are pure and safe for concurrent use.
package kepler
