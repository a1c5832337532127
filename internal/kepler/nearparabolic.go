package kepler

import (
	"math"

	"github.com/san-kum/rode/internal/numeric"
)

// nearParabolicSeries sums S(x) = sum_k (ecc - 1/(2k+3)) x^k, or its
// derivative companion sum_k (ecc - 1/(2k+3)) (2k+3) x^k when deriv is set.
func nearParabolicSeries(ecc, x float64, deriv bool) (float64, error) {
	if math.Abs(x) >= 1 {
		return 0, numeric.InvalidArgument("near-parabolic series outside its radius of convergence (x=%g)", x)
	}

	sum, xk := 0.0, 1.0
	for k := 0; k < seriesMaxTerms; k++ {
		odd := float64(2*k + 3)
		term := (ecc - 1/odd) * xk
		if deriv {
			term *= odd
		}
		sum += term
		if math.Abs(term) < seriesTolerance {
			return sum, nil
		}
		xk *= x
	}
	return 0, &numeric.ConvergenceError{Method: "near-parabolic series", Iterations: seriesMaxTerms, Iterate: sum, Residual: xk}
}

// nearParabolicMean maps D = tan(nu/2) to the parabolic-scaled mean anomaly
// of an orbit with eccentricity close to one.
func nearParabolicMean(D, ecc float64) (float64, error) {
	x := (ecc - 1) / (ecc + 1) * D * D
	S, err := nearParabolicSeries(ecc, x, false)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(2/(1+ecc))*D + math.Sqrt(2/math.Pow(1+ecc, 3))*D*D*D*S, nil
}

func nearParabolicMeanPrime(D, ecc float64) (float64, error) {
	x := (ecc - 1) / (ecc + 1) * D * D
	S, err := nearParabolicSeries(ecc, x, true)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(2/(1+ecc)) + math.Sqrt(2/math.Pow(1+ecc, 3))*D*D*S, nil
}

// meanToNearParabolic inverts nearParabolicMean by Newton iteration seeded
// with the exact parabolic solution.
func meanToNearParabolic(M, ecc float64) (float64, error) {
	var seriesErr error
	f := func(D float64) float64 {
		m, err := nearParabolicMean(D, ecc)
		if err != nil {
			seriesErr = err
			return math.NaN()
		}
		return m - M
	}
	df := func(D float64) float64 {
		d, err := nearParabolicMeanPrime(D, ecc)
		if err != nil {
			seriesErr = err
			return math.NaN()
		}
		return d
	}

	D, err := newton("kepler near-parabolic", f, df, meanToParabolic(M), nearParabolicIter)
	if seriesErr != nil {
		return 0, seriesErr
	}
	return D, err
}
