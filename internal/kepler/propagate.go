package kepler

import (
	"context"
	"math"
	"runtime"

	"github.com/san-kum/rode/internal/numeric"
	"golang.org/x/sync/errgroup"
)

// Elements are classical orbital elements. Angles are in radians. Inc, Raan
// and Argp are carried through propagation unchanged.
type Elements struct {
	K    float64 // gravitational parameter
	P    float64 // semi-latus rectum
	Ecc  float64
	Inc  float64
	Raan float64
	Argp float64
	Nu   float64 // true anomaly
}

func (el Elements) Validate() error {
	if !numeric.Finite(el.K, el.P, el.Ecc, el.Inc, el.Raan, el.Argp, el.Nu) {
		return numeric.InvalidArgument("non-finite orbital element in %+v", el)
	}
	if el.K <= 0 {
		return numeric.InvalidArgument("gravitational parameter must be positive, got %g", el.K)
	}
	if el.P <= 0 {
		return numeric.InvalidArgument("semi-latus rectum must be positive, got %g", el.P)
	}
	if el.Ecc < 0 {
		return numeric.InvalidArgument("eccentricity must be >= 0, got %g", el.Ecc)
	}
	if el.Shape() != Elliptic && 1+el.Ecc*math.Cos(el.Nu) <= 0 {
		return numeric.InvalidArgument("true anomaly %g is unreachable on a %s orbit with ecc %g", el.Nu, el.Shape(), el.Ecc)
	}
	return nil
}

func (el Elements) Shape() Shape {
	return Classify(el.Ecc)
}

// Period returns the orbital period of a closed orbit.
func (el Elements) Period() (float64, error) {
	if err := el.Validate(); err != nil {
		return 0, err
	}
	if el.Shape() != Elliptic {
		return 0, numeric.InvalidArgument("%s orbit has no period", el.Shape())
	}
	a := el.P / (1 - el.Ecc*el.Ecc)
	return 2 * math.Pi * math.Sqrt(a*a*a/el.K), nil
}

// Propagate returns the true anomaly, in (-pi, pi], reached after tof.
// Negative tof propagates backwards.
func Propagate(el Elements, tof float64) (float64, error) {
	if err := el.Validate(); err != nil {
		return 0, err
	}
	if !numeric.Finite(tof) {
		return 0, numeric.InvalidArgument("non-finite time of flight %g", tof)
	}

	nu := NormalizeAngle(el.Nu)
	t0, err := timeSincePeriapsis(nu, el.Ecc, el.K, el.P)
	if err != nil {
		return 0, err
	}

	nu, err = trueAnomalyAt(t0+tof, el.Ecc, el.K, el.P)
	if err != nil {
		return 0, err
	}
	return NormalizeAngle(nu), nil
}

// Propagated returns a copy of el advanced by tof.
func Propagated(el Elements, tof float64) (Elements, error) {
	nu, err := Propagate(el, tof)
	if err != nil {
		return Elements{}, err
	}
	el.Nu = nu
	return el, nil
}

// PropagateTrueAnomaly is Propagate over a flat argument list.
func PropagateTrueAnomaly(k, p, ecc, inc, raan, argp, nu, tof float64) (float64, error) {
	return Propagate(Elements{K: k, P: p, Ecc: ecc, Inc: inc, Raan: raan, Argp: argp, Nu: nu}, tof)
}

// PropagateMany propagates independent element sets concurrently. The first
// error cancels the remaining work.
func PropagateMany(ctx context.Context, els []Elements, tof float64) ([]float64, error) {
	out := make([]float64, len(els))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range els {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			nu, err := Propagate(els[i], tof)
			if err != nil {
				return err
			}
			out[i] = nu
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func ellipticMeanMotion(k, p, ecc float64) float64 {
	a := p / (1 - ecc*ecc)
	return math.Sqrt(k / (a * a * a))
}

func hyperbolicMeanMotion(k, p, ecc float64) float64 {
	a := p / (ecc*ecc - 1)
	return math.Sqrt(k / (a * a * a))
}

// parabolicMeanMotion scales Barker's equation; q is the periapsis radius.
func parabolicMeanMotion(k, p, ecc float64) float64 {
	q := p / (1 + ecc)
	return math.Sqrt(k / (2 * q * q * q))
}

// timeSincePeriapsis returns the signed time from periapsis to nu, which must
// lie in (-pi, pi].
func timeSincePeriapsis(nu, ecc, k, p float64) (float64, error) {
	switch Classify(ecc) {
	case Parabolic:
		return parabolicToMean(math.Tan(nu/2)) / parabolicMeanMotion(k, p, ecc), nil
	case Elliptic:
		E := trueToEccentric(nu, ecc)
		if !nearParabolic(ecc) || 1-ecc*math.Cos(E) >= NearParabolicBand {
			return eccentricToMean(E, ecc) / ellipticMeanMotion(k, p, ecc), nil
		}
	case Hyperbolic:
		F := trueToHyperbolic(nu, ecc)
		if !nearParabolic(ecc) || ecc*math.Cosh(F)-1 >= NearParabolicBand {
			return hyperbolicToMean(F, ecc) / hyperbolicMeanMotion(k, p, ecc), nil
		}
	}

	M, err := nearParabolicMean(math.Tan(nu/2), ecc)
	if err != nil {
		return 0, err
	}
	return M / parabolicMeanMotion(k, p, ecc), nil
}

// trueAnomalyAt returns the true anomaly reached dt after periapsis passage.
func trueAnomalyAt(dt, ecc, k, p float64) (float64, error) {
	switch Classify(ecc) {
	case Parabolic:
		return 2 * math.Atan(meanToParabolic(parabolicMeanMotion(k, p, ecc)*dt)), nil
	case Elliptic:
		M := ellipticMeanMotion(k, p, ecc) * dt
		if !nearParabolic(ecc) || math.Abs(eccentricToMean(math.Acos((1-NearParabolicBand)/ecc), ecc)) <= math.Abs(M) {
			E, err := meanToEccentric(NormalizeAngle(M), ecc)
			if err != nil {
				return 0, err
			}
			return eccentricToTrue(E, ecc), nil
		}
	case Hyperbolic:
		M := hyperbolicMeanMotion(k, p, ecc) * dt
		if !nearParabolic(ecc) || math.Abs(hyperbolicToMean(math.Acosh((1+NearParabolicBand)/ecc), ecc)) <= math.Abs(M) {
			F, err := meanToHyperbolic(M, ecc)
			if err != nil {
				return 0, err
			}
			return hyperbolicToTrue(F, ecc), nil
		}
	}

	D, err := meanToNearParabolic(parabolicMeanMotion(k, p, ecc)*dt, ecc)
	if err != nil {
		return 0, err
	}
	return 2 * math.Atan(D), nil
}
