package kepler

import "math"

// NormalizeAngle maps an angle into (-pi, pi].
func NormalizeAngle(angle float64) float64 {
	r := math.Mod(angle+math.Pi, 2*math.Pi)
	if r <= 0 {
		r += 2 * math.Pi
	}
	return r - math.Pi
}

func trueToEccentric(nu, ecc float64) float64 {
	return 2 * math.Atan(math.Sqrt((1-ecc)/(1+ecc))*math.Tan(nu/2))
}

func eccentricToTrue(E, ecc float64) float64 {
	return 2 * math.Atan(math.Sqrt((1+ecc)/(1-ecc))*math.Tan(E/2))
}

func trueToHyperbolic(nu, ecc float64) float64 {
	return 2 * math.Atanh(math.Sqrt((ecc-1)/(ecc+1))*math.Tan(nu/2))
}

func hyperbolicToTrue(F, ecc float64) float64 {
	return 2 * math.Atan(math.Sqrt((ecc+1)/(ecc-1))*math.Tanh(F/2))
}

func eccentricToMean(E, ecc float64) float64 {
	return E - ecc*math.Sin(E)
}

func hyperbolicToMean(F, ecc float64) float64 {
	return ecc*math.Sinh(F) - F
}

// parabolicToMean is Barker's equation in D = tan(nu/2).
func parabolicToMean(D float64) float64 {
	return D + D*D*D/3
}

// meanToParabolic inverts Barker's equation in closed form. The inverse is
// odd, and evaluating it for M >= 0 only avoids cancellation in
// B + sqrt(1+B^2).
func meanToParabolic(M float64) float64 {
	if M < 0 {
		return -meanToParabolic(-M)
	}
	B := 1.5 * M
	A := math.Pow(B+math.Sqrt(1+B*B), 2.0/3)
	return 2 * A * B / (1 + A + A*A)
}

// meanToEccentric solves Kepler's equation. M is expected in (-pi, pi]; the
// seed is pushed toward pi so high eccentricities do not stall.
func meanToEccentric(M, ecc float64) (float64, error) {
	E0 := M + ecc
	if -math.Pi < M && M < 0 || M > math.Pi {
		E0 = M - ecc
	}
	return newton("kepler elliptic",
		func(E float64) float64 { return eccentricToMean(E, ecc) - M },
		func(E float64) float64 { return 1 - ecc*math.Cos(E) },
		E0, ellipticMaxIter)
}

// meanToHyperbolic solves the hyperbolic Kepler equation seeded inside the
// region where sinh does not overflow.
func meanToHyperbolic(M, ecc float64) (float64, error) {
	return newton("kepler hyperbolic",
		func(F float64) float64 { return hyperbolicToMean(F, ecc) - M },
		func(F float64) float64 { return ecc*math.Cosh(F) - 1 },
		math.Asinh(M/ecc), hyperbolicMaxIter)
}
