package kepler

const (
	// ParabolicTolerance is the half width of the band around ecc = 1 that is
	// dispatched to the closed-form Barker solution.
	ParabolicTolerance = 1e-10

	// NearParabolicBand is the half width of the band around ecc = 1 inside
	// which small anomalies use the near-parabolic series.
	NearParabolicBand = 1e-2
)

// Shape is the conic section an orbit follows.
type Shape int

const (
	Elliptic Shape = iota
	Parabolic
	Hyperbolic
)

func (s Shape) String() string {
	switch s {
	case Elliptic:
		return "elliptic"
	case Parabolic:
		return "parabolic"
	case Hyperbolic:
		return "hyperbolic"
	default:
		return "unknown"
	}
}

// Classify returns the shape of an orbit with eccentricity ecc.
func Classify(ecc float64) Shape {
	switch {
	case ecc >= 1-ParabolicTolerance && ecc <= 1+ParabolicTolerance:
		return Parabolic
	case ecc < 1:
		return Elliptic
	default:
		return Hyperbolic
	}
}

// nearParabolic reports whether ecc lies inside the near-parabolic band.
func nearParabolic(ecc float64) bool {
	return ecc > 1-NearParabolicBand && ecc < 1+NearParabolicBand
}
