package plate

import "github.com/san-kum/rode/internal/numeric"

// Geometry describes an isotropic plate.
type Geometry struct {
	Lx float64 `yaml:"lx" json:"lx"`
	Ly float64 `yaml:"ly" json:"ly"`
	H  float64 `yaml:"h" json:"h"`   // thickness
	E  float64 `yaml:"e" json:"e"`   // Young's modulus
	Nu float64 `yaml:"nu" json:"nu"` // Poisson ratio
}

func (g Geometry) Validate() error {
	if !numeric.Finite(g.Lx, g.Ly, g.H, g.E, g.Nu) {
		return numeric.InvalidArgument("non-finite plate geometry %+v", g)
	}
	if g.Lx <= 0 || g.Ly <= 0 {
		return numeric.InvalidArgument("plate dimensions must be positive, got %gx%g", g.Lx, g.Ly)
	}
	if g.H <= 0 {
		return numeric.InvalidArgument("plate thickness must be positive, got %g", g.H)
	}
	if g.E <= 0 {
		return numeric.InvalidArgument("Young's modulus must be positive, got %g", g.E)
	}
	if g.Nu <= -1 || g.Nu >= 0.5 {
		return numeric.InvalidArgument("Poisson ratio must lie in (-1, 0.5), got %g", g.Nu)
	}
	return nil
}

// Rigidity returns the flexural rigidity D = h^3 E / (12 (1 - nu^2)).
func (g Geometry) Rigidity() float64 {
	return g.H * g.H * g.H * g.E / (12 * (1 - g.Nu*g.Nu))
}

// Plate returns the solver view of the geometry.
func (g Geometry) Plate() Plate {
	return Plate{Lx: g.Lx, Ly: g.Ly, D: g.Rigidity()}
}
